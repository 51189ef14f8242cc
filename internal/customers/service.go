package customers

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/as-electrica/storefront-backend/pkg/auth"
	"github.com/as-electrica/storefront-backend/pkg/auth/session"
	"github.com/as-electrica/storefront-backend/pkg/config"
	"github.com/as-electrica/storefront-backend/pkg/db"
	"github.com/as-electrica/storefront-backend/pkg/db/models"
	"github.com/as-electrica/storefront-backend/pkg/enums"
	pkgerrors "github.com/as-electrica/storefront-backend/pkg/errors"
	"github.com/as-electrica/storefront-backend/pkg/logger"
	"github.com/as-electrica/storefront-backend/pkg/outbox"
	"github.com/as-electrica/storefront-backend/pkg/outbox/payloads"
	"github.com/as-electrica/storefront-backend/pkg/security"
)

const (
	confirmationCodeLength = 36
	minPasswordLength      = 8
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type sessionOpener interface {
	Open(ctx context.Context, accessID string, customerID uuid.UUID) error
	Revoke(ctx context.Context, accessID string) error
}

// RegisterInput carries the sign-up form fields.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// LoginResult bundles the signed access token with the authenticated account.
type LoginResult struct {
	AccessToken string
	Customer    *models.Customer
}

// Service manages customer accounts: registration, email confirmation and
// credential-based login.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Customer, error)
	Confirm(ctx context.Context, code string) (*models.Customer, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, accessID string) error
	Get(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

type service struct {
	repo     CustomerRepository
	tx       txRunner
	events   eventEmitter
	sessions sessionOpener
	jwtCfg   config.JWTConfig
	passCfg  config.PasswordConfig
	logger   *logger.Logger
	now      func() time.Time
}

// NewService builds the customer account service.
func NewService(repo CustomerRepository, tx txRunner, events eventEmitter, sessions sessionOpener, jwtCfg config.JWTConfig, passCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		events:   events,
		sessions: sessions,
		jwtCfg:   jwtCfg,
		passCfg:  passCfg,
		logger:   logg,
		now:      time.Now,
	}, nil
}

// Register creates an unconfirmed account and queues the confirmation email.
// The account row and the outbox event commit together.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Customer, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking email")
	}

	hash, err := security.HashPassword(input.Password, s.passCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}
	code, err := security.GenerateToken(confirmationCodeLength)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating confirmation code")
	}

	customer := &models.Customer{
		Email:            email,
		PasswordHash:     hash,
		FirstName:        strings.TrimSpace(input.FirstName),
		LastName:         strings.TrimSpace(input.LastName),
		Phone:            strings.TrimSpace(input.Phone),
		ConfirmationCode: &code,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, customer); err != nil {
			if db.IsUniqueViolation(err, "ux_customers_email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email is already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating customer")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventCustomerRegistered,
			AggregateType: enums.AggregateCustomer,
			AggregateID:   customer.ID,
			Actor:         &outbox.ActorRef{CustomerID: customer.ID, Role: "customer"},
			Data: payloads.CustomerRegisteredData{
				CustomerID:       customer.ID,
				Email:            customer.Email,
				FirstName:        customer.FirstName,
				ConfirmationCode: code,
			},
			Version: 1,
		}
		if err := s.events.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queueing registration event")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logger.WithCustomerID(ctx, customer.ID.String())
	s.logger.Info(logCtx, "customer registered")
	return customer, nil
}

// Confirm burns a single-use confirmation code and activates the account.
// A second visit with the same code gets not found.
func (s *service) Confirm(ctx context.Context, code string) (*models.Customer, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "confirmation code is required")
	}

	var confirmed *models.Customer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		customer, err := repo.FindByConfirmationCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "confirmation code is invalid or already used")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading confirmation code")
		}

		if err := repo.MarkConfirmed(ctx, customer.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirming customer")
		}
		customer.IsConfirmed = true
		customer.ConfirmationCode = nil
		confirmed = customer
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logger.WithCustomerID(ctx, confirmed.ID.String())
	s.logger.Info(logCtx, "customer email confirmed")
	return confirmed, nil
}

// Login verifies credentials and opens a revocable server-side session keyed
// by the token's jti. Unknown email and wrong password are indistinguishable.
func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	customer, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading customer")
	}

	ok, err := security.VerifyPassword(password, customer.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
	}

	accessID := session.NewAccessID()
	token, err := auth.MintAccessToken(s.jwtCfg, s.now(), auth.AccessTokenPayload{
		CustomerID:  customer.ID,
		Email:       customer.Email,
		IsConfirmed: customer.IsConfirmed,
		Role:        customer.Role(),
		JTI:         accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	if err := s.sessions.Open(ctx, accessID, customer.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "opening session")
	}

	logCtx := s.logger.WithCustomerID(ctx, customer.ID.String())
	s.logger.Info(logCtx, "customer logged in")
	return &LoginResult{AccessToken: token, Customer: customer}, nil
}

// Logout revokes the server-side session for the given access ID.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id is required")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoking session")
	}
	return nil
}

// Get loads a customer profile by id.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading customer")
	}
	return customer, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email is not valid")
	}
	return email, nil
}
