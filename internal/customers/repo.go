package customers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/as-electrica/storefront-backend/pkg/db/models"
)

// CustomerRepository defines the persistence surface for customer accounts.
type CustomerRepository interface {
	WithTx(tx *gorm.DB) CustomerRepository
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindByEmail(ctx context.Context, email string) (*models.Customer, error)
	FindByConfirmationCode(ctx context.Context, code string) (*models.Customer, error)
	MarkConfirmed(ctx context.Context, id uuid.UUID) error
	UpdateContact(ctx context.Context, id uuid.UUID, contact Contact) error
}

// Contact carries the fields synced from the latest checkout.
type Contact struct {
	FirstName string
	LastName  string
	Phone     string
	Address   string
}

// Repository persists customer accounts.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a customer repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CustomerRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new customer.
func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// FindByID loads a customer by id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var row models.Customer
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByEmail loads a customer by their unique email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var row models.Customer
	err := r.db.WithContext(ctx).First(&row, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByConfirmationCode loads a customer holding the one-shot code.
func (r *Repository) FindByConfirmationCode(ctx context.Context, code string) (*models.Customer, error) {
	var row models.Customer
	err := r.db.WithContext(ctx).First(&row, "confirmation_code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MarkConfirmed flips the confirmation flag and burns the code.
func (r *Repository) MarkConfirmed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_confirmed":      true,
			"confirmation_code": nil,
		}).Error
}

// UpdateContact rewrites the contact snapshot fields.
func (r *Repository) UpdateContact(ctx context.Context, id uuid.UUID, contact Contact) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"first_name": contact.FirstName,
			"last_name":  contact.LastName,
			"phone":      contact.Phone,
			"address":    contact.Address,
		}).Error
}
