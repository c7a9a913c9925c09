package clients

import "time"

// CreateClientRequest registers a customer. The display code is assigned
// server-side from the per-business sequence.
type CreateClientRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=255"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,min=7,max=32"`
	NationalID *string `json:"national_id,omitempty" validate:"omitempty,min=3,max=32"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

// UpdateClientRequest applies a partial update; nil fields are untouched.
type UpdateClientRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,min=7,max=32"`
	NationalID *string `json:"national_id,omitempty" validate:"omitempty,min=3,max=32"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

// ClientResponse is the API shape of a customer record.
type ClientResponse struct {
	ID          int64     `json:"id"`
	BusinessID  int64     `json:"business_id"`
	DisplayCode string    `json:"display_code"`
	Name        string    `json:"name"`
	Phone       *string   `json:"phone,omitempty"`
	NationalID  *string   `json:"national_id,omitempty"`
	Email       *string   `json:"email,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListClientsRequest filters and pages the client roster.
type ListClientsRequest struct {
	Search string
	Limit  int
	Cursor string
}

// ListClientsResponse pages through customers.
type ListClientsResponse struct {
	Clients    []ClientResponse `json:"clients"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// AddNoteRequest attaches free-form text to a client.
type AddNoteRequest struct {
	Description string `json:"description" validate:"required,min=1,max=2000"`
}

// NoteResponse is the API shape of a client note.
type NoteResponse struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"client_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListNotesResponse wraps a client's notes.
type ListNotesResponse struct {
	Notes []NoteResponse `json:"notes"`
}
