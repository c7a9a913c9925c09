package payments

import (
	"time"

	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest opens a balance for a client. PaymentsMade may seed
// an initial collection and must not exceed the estimated total; PaymentDate
// backfills the collection date for money taken before the record existed.
type CreatePaymentRequest struct {
	ClientID       int64               `json:"client_id" validate:"required,gt=0"`
	Method         enums.PaymentMethod `json:"method" validate:"required,oneof=cash card"`
	EstimatedTotal decimal.Decimal     `json:"estimated_total" validate:"required"`
	PaymentsMade   decimal.Decimal     `json:"payments_made"`
	PaymentDate    *time.Time          `json:"payment_date,omitempty"`
}

// RecordPaymentRequest adds a collected amount to an open balance.
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// UpdatePaymentRequest edits the balance; nil fields are untouched. Whichever
// side changes, payments made must stay within the estimated total.
type UpdatePaymentRequest struct {
	Method         *enums.PaymentMethod `json:"method,omitempty" validate:"omitempty,oneof=cash card"`
	EstimatedTotal *decimal.Decimal     `json:"estimated_total,omitempty"`
	PaymentsMade   *decimal.Decimal     `json:"payments_made,omitempty"`
}

// PaymentResponse is the API shape of a client balance.
type PaymentResponse struct {
	ID             int64               `json:"id"`
	ClientID       int64               `json:"client_id"`
	Method         enums.PaymentMethod `json:"method"`
	EstimatedTotal decimal.Decimal     `json:"estimated_total"`
	PaymentsMade   decimal.Decimal     `json:"payments_made"`
	PaymentDate    *time.Time          `json:"payment_date,omitempty"`
	Status         enums.PaymentStatus `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// ListPaymentsResponse wraps a client's balances.
type ListPaymentsResponse struct {
	Payments []PaymentResponse `json:"payments"`
}
