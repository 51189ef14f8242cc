package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/as-electrica/storefront-backend/pkg/config"
	"github.com/as-electrica/storefront-backend/pkg/enums"
	"github.com/as-electrica/storefront-backend/pkg/logger"
	"github.com/as-electrica/storefront-backend/pkg/mailer"
	"github.com/as-electrica/storefront-backend/pkg/outbox"
	"github.com/as-electrica/storefront-backend/pkg/outbox/payloads"
)

// consumerName keys the idempotency markers in Redis.
const consumerName = "notifier"

// AttrEventType is the message attribute carrying the outbox event type.
const AttrEventType = "event_type"

type dedup interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
}

type subscriber interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

// Consumer turns published domain events into transactional email.
// Processing is at-least-once with Redis dedup on the envelope event id;
// send failures are logged and acked so one broken mailbox cannot wedge
// the subscription.
type Consumer struct {
	sub    subscriber
	mail   mailer.Mailer
	dedup  dedup
	store  config.StoreConfig
	logger *logger.Logger
}

// NewConsumer builds the notification consumer.
func NewConsumer(sub subscriber, mail mailer.Mailer, guard dedup, store config.StoreConfig, logg *logger.Logger) (*Consumer, error) {
	if sub == nil {
		return nil, fmt.Errorf("subscription required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if guard == nil {
		return nil, fmt.Errorf("idempotency guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		sub:    sub,
		mail:   mail,
		dedup:  guard,
		store:  store,
		logger: logg,
	}, nil
}

// Run blocks receiving messages until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info(ctx, "notifier consumer started")
	return c.sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		c.Handle(ctx, msg.Attributes[AttrEventType], msg.Data)
		msg.Ack()
	})
}

// Handle processes one published envelope. Every outcome acks: malformed
// payloads and failed sends are logged, duplicates are skipped.
func (c *Consumer) Handle(ctx context.Context, eventType string, data []byte) {
	logCtx := c.logger.WithField(ctx, "event_type", eventType)

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logger.Error(logCtx, "dropping unreadable event payload", err)
		return
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logger.Error(logCtx, "dropping event without a valid id", err)
		return
	}
	logCtx = c.logger.WithField(logCtx, "event_id", envelope.EventID)

	seen, err := c.dedup.CheckAndMarkProcessed(ctx, consumerName, eventID)
	if err != nil {
		c.logger.Error(logCtx, "idempotency check failed; processing anyway", err)
	} else if seen {
		c.logger.Info(logCtx, "skipping already processed event")
		return
	}

	messages, err := c.buildMessages(enums.OutboxEventType(eventType), envelope.Data)
	if err != nil {
		c.logger.Error(logCtx, "dropping undeliverable event", err)
		return
	}
	for _, msg := range messages {
		if err := c.mail.Send(ctx, msg); err != nil {
			c.logger.Error(c.logger.WithField(logCtx, "to", msg.ToAddress), "email send failed", err)
			continue
		}
		c.logger.Info(c.logger.WithField(logCtx, "to", msg.ToAddress), "notification sent")
	}
}

func (c *Consumer) buildMessages(eventType enums.OutboxEventType, data json.RawMessage) ([]mailer.Message, error) {
	switch eventType {
	case enums.EventCustomerRegistered:
		var payload payloads.CustomerRegisteredData
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return []mailer.Message{confirmationEmail(c.store, payload)}, nil

	case enums.EventOrderPlaced:
		var payload payloads.OrderPlacedData
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return []mailer.Message{
			orderPlacedEmail(payload),
			orderPlacedStaffEmail(c.store, payload),
		}, nil

	case enums.EventOrderReady:
		var payload payloads.OrderReadyData
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return []mailer.Message{orderReadyEmail(payload)}, nil

	default:
		return nil, fmt.Errorf("no handler for event type %q", eventType)
	}
}
