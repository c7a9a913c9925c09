package businesses

import "time"

// CreateBusinessRequest registers a new tenant.
type CreateBusinessRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=255"`
	TaxID      string  `json:"tax_id" validate:"required,min=3,max=64"`
	PostalCode *string `json:"postal_code,omitempty" validate:"omitempty,min=3,max=16"`
}

// UpdateBusinessRequest applies a partial update; nil fields are untouched.
type UpdateBusinessRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	PostalCode *string `json:"postal_code,omitempty" validate:"omitempty,min=3,max=16"`
}

// BusinessResponse is the API shape of a tenant.
type BusinessResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	TaxID      string    `json:"tax_id"`
	PostalCode *string   `json:"postal_code,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ListBusinessesResponse pages through tenants.
type ListBusinessesResponse struct {
	Businesses []BusinessResponse `json:"businesses"`
	NextCursor string             `json:"next_cursor,omitempty"`
}
