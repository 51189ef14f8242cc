package payloads

import (
	"github.com/google/uuid"
)

// CustomerRegisteredData rides customer_registered events so the notifier can
// send the confirmation email without touching the database.
type CustomerRegisteredData struct {
	CustomerID       uuid.UUID `json:"customerId"`
	Email            string    `json:"email"`
	FirstName        string    `json:"firstName,omitempty"`
	ConfirmationCode string    `json:"confirmationCode"`
}

// OrderLineData snapshots one line for order notifications.
type OrderLineData struct {
	ProductID int64  `json:"productId"`
	Title     string `json:"title"`
	Article   string `json:"article"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

// OrderPlacedData rides order_placed events.
type OrderPlacedData struct {
	OrderID    uuid.UUID       `json:"orderId"`
	CustomerID uuid.UUID       `json:"customerId"`
	Email      string          `json:"email"`
	FirstName  string          `json:"firstName,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	Total      string          `json:"total"`
	Lines      []OrderLineData `json:"lines"`
}

// OrderReadyData rides order_ready events.
type OrderReadyData struct {
	OrderID    uuid.UUID `json:"orderId"`
	CustomerID uuid.UUID `json:"customerId"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName,omitempty"`
}
