package calendar

import "time"

// CreateEventRequest attaches an event to an appointment that does not have
// one yet, such as a record imported from the provider. An external id may be
// carried over when the remote copy already exists.
type CreateEventRequest struct {
	AppointmentID   int64     `json:"appointment_id" validate:"required,gt=0"`
	Title           string    `json:"title" validate:"required,min=1,max=255"`
	Description     *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	StartTime       time.Time `json:"start_date_time" validate:"required"`
	EndTime         time.Time `json:"end_date_time" validate:"required"`
	ExternalEventID *string   `json:"external_event_id,omitempty" validate:"omitempty,min=1,max=255"`
}

// UpdateEventRequest edits the mirrored event copy; nil fields are untouched.
// Setting ExternalEventID relinks the event to a remote copy and stamps the
// sync time.
type UpdateEventRequest struct {
	Title           *string    `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description     *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	StartTime       *time.Time `json:"start_date_time,omitempty"`
	EndTime         *time.Time `json:"end_date_time,omitempty"`
	ExternalEventID *string    `json:"external_event_id,omitempty" validate:"omitempty,min=1,max=255"`
}

// EventResponse is the API shape of a calendar event.
type EventResponse struct {
	ID              int64      `json:"id"`
	BusinessID      int64      `json:"business_id"`
	AppointmentID   int64      `json:"appointment_id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description,omitempty"`
	StartDateTime   time.Time  `json:"start_date_time"`
	EndDateTime     time.Time  `json:"end_date_time"`
	ExternalEventID *string    `json:"external_event_id,omitempty"`
	LastSync        *time.Time `json:"last_sync,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ListEventsRequest bounds the calendar window. Synced narrows to events
// that have (or have not) reached the provider.
type ListEventsRequest struct {
	From   *time.Time
	To     *time.Time
	Synced *bool
}

// ListEventsResponse wraps a business calendar window.
type ListEventsResponse struct {
	Events []EventResponse `json:"events"`
}

// SyncSummary reports a batch sync outcome.
type SyncSummary struct {
	Attempted int `json:"attempted"`
	Synced    int `json:"synced"`
	Failed    int `json:"failed"`
}

// SyncStatsResponse reports how much of the calendar made it to the provider.
type SyncStatsResponse struct {
	TotalEvents    int64   `json:"total_events"`
	SyncedEvents   int64   `json:"synced_events"`
	SyncPercentage float64 `json:"sync_percentage"`
}
