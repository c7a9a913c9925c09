package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateServiceRequest adds an offering to the business catalog.
type CreateServiceRequest struct {
	Name        string          `json:"name" validate:"required,min=2,max=255"`
	Description *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price       decimal.Decimal `json:"price" validate:"required"`
}

// UpdateServiceRequest applies a partial update; nil fields are untouched.
type UpdateServiceRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

// ServiceResponse is the API shape of a catalog offering.
type ServiceResponse struct {
	ID          int64           `json:"id"`
	BusinessID  int64           `json:"business_id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ListServicesResponse wraps a business catalog.
type ListServicesResponse struct {
	Services []ServiceResponse `json:"services"`
}
