package scheduler

import (
	"time"

	"github.com/angelmondragon/salonflow-backend/internal/calendar"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
)

// BookAppointmentRequest books a slot. Client, Employee, and Service accept
// either a numeric id or a name; names resolve to the oldest active match
// within the caller's business. Status defaults to pending and DurationHours
// to the configured event duration when omitted.
type BookAppointmentRequest struct {
	Client        string                   `json:"client" validate:"required,min=1,max=255"`
	Employee      string                   `json:"employee" validate:"required,min=1,max=255"`
	Service       string                   `json:"service" validate:"required,min=1,max=255"`
	DateTime      time.Time                `json:"date_time" validate:"required"`
	Status        *enums.AppointmentStatus `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled completed"`
	DurationHours *int                     `json:"duration_hours,omitempty" validate:"omitempty,gte=1,lte=24"`
}

// UpdateAppointmentRequest reschedules or progresses a booking; nil fields
// are untouched. A cancelled status routes through the cancel path so the
// paired event is retired with the booking.
type UpdateAppointmentRequest struct {
	DateTime  *time.Time               `json:"date_time,omitempty"`
	ServiceID *int64                   `json:"service_id,omitempty" validate:"omitempty,gt=0"`
	Status    *enums.AppointmentStatus `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled completed"`
}

// AppointmentResponse is the API shape of a booking. Booking returns the
// paired calendar event inline; reads keep the lighter id reference.
type AppointmentResponse struct {
	ID              int64                   `json:"id"`
	BusinessID      int64                   `json:"business_id"`
	EmployeeID      int64                   `json:"employee_id"`
	ClientID        int64                   `json:"client_id"`
	ServiceID       int64                   `json:"service_id"`
	DateTime        time.Time               `json:"date_time"`
	Status          enums.AppointmentStatus `json:"status"`
	CalendarEventID *int64                  `json:"calendar_event_id,omitempty"`
	CalendarEvent   *calendar.EventResponse `json:"calendar_event,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// ListAppointmentsRequest filters and pages the booking list. UpcomingDays
// expands to a [now, now+days) window over the same query.
type ListAppointmentsRequest struct {
	EmployeeID   *int64
	ClientID     *int64
	Status       *enums.AppointmentStatus
	From         *time.Time
	To           *time.Time
	UpcomingDays *int
	Limit        int
	Cursor       string
}

// ListAppointmentsResponse pages through bookings.
type ListAppointmentsResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	NextCursor   string                `json:"next_cursor,omitempty"`
}

// StatsResponse summarizes bookings: business-scoped for employees, across
// every business for admins. CompletionRate is a percentage rounded to two
// decimals, 0 when there are no bookings.
type StatsResponse struct {
	Total          int64   `json:"total"`
	Pending        int64   `json:"pending"`
	Confirmed      int64   `json:"confirmed"`
	Completed      int64   `json:"completed"`
	Cancelled      int64   `json:"cancelled"`
	CompletionRate float64 `json:"completion_rate"`
}
