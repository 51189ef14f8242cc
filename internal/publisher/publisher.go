package publisher

import (
	"context"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/as-electrica/storefront-backend/pkg/db/models"
	"github.com/as-electrica/storefront-backend/pkg/logger"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = 5 * time.Second

	attrEventType     = "event_type"
	attrAggregateType = "aggregate_type"
	attrAggregateID   = "aggregate_id"
)

type outboxStore interface {
	FetchUnpublished(limit int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, err error) error
}

// PublishFunc delivers one event payload with attributes to the broker.
type PublishFunc func(ctx context.Context, data []byte, attrs map[string]string) error

// NewPubSubPublishFunc adapts a Pub/Sub publisher handle to PublishFunc,
// blocking until the broker confirms the message.
func NewPubSubPublishFunc(topic *pubsub.Publisher) PublishFunc {
	return func(ctx context.Context, data []byte, attrs map[string]string) error {
		result := topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
		_, err := result.Get(ctx)
		return err
	}
}

// Params configures the outbox publisher loop.
type Params struct {
	Store        outboxStore
	Publish      PublishFunc
	Logger       *logger.Logger
	BatchSize    int
	PollInterval time.Duration
}

// Service drains the transactional outbox: unpublished rows are pushed to the
// domain topic in insertion order and marked published only after the broker
// confirms. Failed rows keep their attempt counter and come back on the next
// poll.
type Service struct {
	store        outboxStore
	publish      PublishFunc
	logger       *logger.Logger
	batchSize    int
	pollInterval time.Duration
}

// NewService builds the outbox publisher.
func NewService(params Params) (*Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("outbox store required")
	}
	if params.Publish == nil {
		return nil, fmt.Errorf("publish function required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.BatchSize <= 0 {
		params.BatchSize = defaultBatchSize
	}
	if params.PollInterval <= 0 {
		params.PollInterval = defaultPollInterval
	}
	return &Service{
		store:        params.Store,
		publish:      params.Publish,
		logger:       params.Logger,
		batchSize:    params.BatchSize,
		pollInterval: params.PollInterval,
	}, nil
}

// Run polls the outbox until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info(ctx, "outbox publisher started")

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		if _, err := s.Drain(ctx); err != nil {
			s.logger.Error(ctx, "outbox drain failed", err)
		}
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "outbox publisher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Drain publishes one batch of unpublished events and reports how many made
// it to the broker.
func (s *Service) Drain(ctx context.Context) (int, error) {
	rows, err := s.store.FetchUnpublished(s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetching unpublished events: %w", err)
	}

	published := 0
	for _, row := range rows {
		attrs := map[string]string{
			attrEventType:     string(row.EventType),
			attrAggregateType: string(row.AggregateType),
			attrAggregateID:   row.AggregateID.String(),
		}
		rowCtx := s.logger.WithFields(ctx, map[string]any{
			"outbox_id":  row.ID.String(),
			"event_type": row.EventType,
		})

		if err := s.publish(ctx, row.Payload, attrs); err != nil {
			s.logger.Error(rowCtx, "publishing outbox event failed", err)
			if markErr := s.store.MarkFailed(row.ID, err); markErr != nil {
				s.logger.Error(rowCtx, "recording publish failure failed", markErr)
			}
			continue
		}
		if err := s.store.MarkPublished(row.ID); err != nil {
			// The broker has the message; redelivery is covered by consumer dedup.
			s.logger.Error(rowCtx, "marking event published failed", err)
			continue
		}
		published++
	}

	if published > 0 {
		s.logger.Info(s.logger.WithField(ctx, "published", published), "outbox batch published")
	}
	return published, nil
}
