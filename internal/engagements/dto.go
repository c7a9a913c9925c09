package engagements

import "time"

// AssignServiceRequest links a catalog service to a client.
type AssignServiceRequest struct {
	ServiceID int64 `json:"service_id" validate:"required,gt=0"`
}

// AssignmentResponse is the API shape of a client-service assignment.
type AssignmentResponse struct {
	ID            int64      `json:"id"`
	ClientID      int64      `json:"client_id"`
	ServiceID     int64      `json:"service_id"`
	Completed     bool       `json:"completed"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ListAssignmentsResponse wraps a client's assigned services.
type ListAssignmentsResponse struct {
	Assignments []AssignmentResponse `json:"assignments"`
}

// HistoryEntryResponse is one row of the client's append-only trail.
type HistoryEntryResponse struct {
	ID            int64     `json:"id"`
	ClientID      int64     `json:"client_id"`
	AppointmentID *int64    `json:"appointment_id,omitempty"`
	NoteID        *int64    `json:"note_id,omitempty"`
	Summary       string    `json:"summary"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListHistoryResponse wraps a client's service history.
type ListHistoryResponse struct {
	History []HistoryEntryResponse `json:"history"`
}
