package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/salonflow-backend/api/middleware"
	"github.com/angelmondragon/salonflow-backend/internal/calendar"
	"github.com/angelmondragon/salonflow-backend/pkg/config"
	"github.com/angelmondragon/salonflow-backend/pkg/db"
	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"github.com/angelmondragon/salonflow-backend/pkg/pagination"
	"gorm.io/gorm"
)

const slotTakenMessage = "the time slot is already booked for this employee"

// Service is the booking engine. An appointment and its calendar event are
// created in one transaction; the exact-timestamp conflict rule is enforced
// both by a pre-check and by the store's partial unique index, so the racing
// loser always gets a conflict instead of a double booking.
type Service interface {
	Book(ctx context.Context, identity middleware.Identity, req BookAppointmentRequest) (*AppointmentResponse, error)
	Get(ctx context.Context, identity middleware.Identity, id int64) (*AppointmentResponse, error)
	List(ctx context.Context, identity middleware.Identity, req ListAppointmentsRequest) (*ListAppointmentsResponse, error)
	Update(ctx context.Context, identity middleware.Identity, id int64, req UpdateAppointmentRequest) (*AppointmentResponse, error)
	Cancel(ctx context.Context, identity middleware.Identity, id int64) (*AppointmentResponse, error)
	Stats(ctx context.Context, identity middleware.Identity) (*StatsResponse, error)
}

type service struct {
	tx           txRunner
	appointments appointmentStore
	events       calendar.Repository
	history      historyRecorder
	clients      clientResolver
	employees    employeeResolver
	services     serviceResolver
	calendarCfg  config.CalendarConfig
	now          func() time.Time
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type appointmentStore interface {
	WithTx(tx *gorm.DB) appointmentStore
	Create(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error)
	FindByID(ctx context.Context, id int64) (*models.Appointment, error)
	FindActiveByEmployeeAt(ctx context.Context, employeeID int64, at time.Time, excludeID int64) (*models.Appointment, error)
	List(ctx context.Context, businessID int64, req ListAppointmentsRequest, limit int, cursor *pagination.Cursor) ([]models.Appointment, error)
	Update(ctx context.Context, appointment *models.Appointment) error
	CountByStatus(ctx context.Context, businessID int64) (map[enums.AppointmentStatus]int64, error)
}

type historyRecorder interface {
	RecordTx(ctx context.Context, tx *gorm.DB, entry *models.ServiceHistory) error
}

type clientResolver interface {
	FindByID(ctx context.Context, id int64) (*models.Client, error)
	FindFirstByName(ctx context.Context, businessID int64, name string) (*models.Client, error)
}

type employeeResolver interface {
	FindByID(ctx context.Context, id int64) (*models.Employee, error)
	FindFirstByName(ctx context.Context, businessID int64, name string) (*models.Employee, error)
}

type serviceResolver interface {
	FindByID(ctx context.Context, id int64) (*models.Service, error)
	FindFirstByName(ctx context.Context, businessID int64, name string) (*models.Service, error)
}

// ServiceParams bundles the dependencies required to build the scheduler.
type ServiceParams struct {
	TxRunner        txRunner
	AppointmentRepo appointmentStore
	EventRepo       calendar.Repository
	History         historyRecorder
	ClientRepo      clientResolver
	EmployeeRepo    employeeResolver
	ServiceRepo     serviceResolver
	CalendarConfig  config.CalendarConfig
	Now             func() time.Time
}

// NewService constructs the scheduler with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.AppointmentRepo == nil {
		return nil, fmt.Errorf("appointment repository is required")
	}
	if params.EventRepo == nil {
		return nil, fmt.Errorf("event repository is required")
	}
	if params.History == nil {
		return nil, fmt.Errorf("history recorder is required")
	}
	if params.ClientRepo == nil {
		return nil, fmt.Errorf("client repository is required")
	}
	if params.EmployeeRepo == nil {
		return nil, fmt.Errorf("employee repository is required")
	}
	if params.ServiceRepo == nil {
		return nil, fmt.Errorf("service repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:           params.TxRunner,
		appointments: params.AppointmentRepo,
		events:       params.EventRepo,
		history:      params.History,
		clients:      params.ClientRepo,
		employees:    params.EmployeeRepo,
		services:     params.ServiceRepo,
		calendarCfg:  params.CalendarConfig,
		now:          now,
	}, nil
}

func (s *service) Book(ctx context.Context, identity middleware.Identity, req BookAppointmentRequest) (*AppointmentResponse, error) {
	businessID := identity.BusinessID
	if businessID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope required")
	}

	client, err := s.resolveClient(ctx, businessID, req.Client)
	if err != nil {
		return nil, err
	}
	employee, err := s.resolveEmployee(ctx, businessID, req.Employee)
	if err != nil {
		return nil, err
	}
	offering, err := s.resolveService(ctx, businessID, req.Service)
	if err != nil {
		return nil, err
	}

	slot := req.DateTime.UTC()
	if !slot.After(s.now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "appointments can only be booked in the future")
	}

	if err := s.checkSlotFree(ctx, employee.ID, slot, 0); err != nil {
		return nil, err
	}

	status := enums.AppointmentStatusPending
	if req.Status != nil {
		status = *req.Status
	}

	appointment := &models.Appointment{
		BusinessID: businessID,
		EmployeeID: employee.ID,
		ClientID:   client.ID,
		ServiceID:  offering.ID,
		DateTime:   slot,
		Status:     status,
	}

	duration := s.eventDuration()
	if req.DurationHours != nil {
		duration = time.Duration(*req.DurationHours) * time.Hour
	}

	var event *models.CalendarEvent
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.appointments.WithTx(tx).Create(ctx, appointment)
		if err != nil {
			return err
		}

		event = s.buildEvent(created, offering.Name, client.Name, duration)
		if _, err := s.events.WithTx(tx).Create(ctx, event); err != nil {
			return err
		}

		appointmentID := created.ID
		return s.history.RecordTx(ctx, tx, &models.ServiceHistory{
			ClientID:      client.ID,
			AppointmentID: &appointmentID,
			Summary:       fmt.Sprintf("appointment booked: %s with %s %s", offering.Name, employee.FirstName, employee.LastName),
		})
	})
	if err != nil {
		if db.IsUniqueViolation(err, "uq_appointments_employee_slot") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, slotTakenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "book appointment")
	}

	resp := toAppointmentResponse(appointment)
	if event != nil {
		eventID := event.ID
		resp.CalendarEventID = &eventID
		resp.CalendarEvent = calendar.NewEventResponse(event)
	}
	return resp, nil
}

func (s *service) Get(ctx context.Context, identity middleware.Identity, id int64) (*AppointmentResponse, error) {
	appointment, err := s.findScoped(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	resp := toAppointmentResponse(appointment)
	s.attachEventID(ctx, resp)
	return resp, nil
}

func (s *service) List(ctx context.Context, identity middleware.Identity, req ListAppointmentsRequest) (*ListAppointmentsResponse, error) {
	if identity.BusinessID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope required")
	}

	if req.UpcomingDays != nil {
		if *req.UpcomingDays < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "days must be at least 1")
		}
		from := s.now().UTC()
		to := from.AddDate(0, 0, *req.UpcomingDays)
		req.From = &from
		req.To = &to
	}

	cursor, err := pagination.ParseCursor(req.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(req.Limit)

	rows, err := s.appointments.List(ctx, identity.BusinessID, req, pagination.LimitWithBuffer(req.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list appointments")
	}

	nextCursor := ""
	if len(rows) > limit {
		last := rows[limit-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}

	out := make([]AppointmentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toAppointmentResponse(&rows[i]))
	}
	return &ListAppointmentsResponse{Appointments: out, NextCursor: nextCursor}, nil
}

func (s *service) Update(ctx context.Context, identity middleware.Identity, id int64, req UpdateAppointmentRequest) (*AppointmentResponse, error) {
	// Cancellation through update takes the cancel path so the paired event
	// is retired and the history entry recorded; other fields are ignored.
	if req.Status != nil && *req.Status == enums.AppointmentStatusCancelled {
		return s.Cancel(ctx, identity, id)
	}

	appointment, err := s.findScoped(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status == enums.AppointmentStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled appointments cannot be updated")
	}

	serviceName := ""
	if req.ServiceID != nil {
		offering, err := s.services.FindByID(ctx, *req.ServiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
		}
		if offering.BusinessID != appointment.BusinessID || !offering.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		appointment.ServiceID = offering.ID
		serviceName = offering.Name
	}

	rescheduled := false
	if req.DateTime != nil {
		slot := req.DateTime.UTC()
		if !slot.Equal(appointment.DateTime) {
			if !slot.After(s.now().UTC()) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "appointments can only be rescheduled into the future")
			}
			if err := s.checkSlotFree(ctx, appointment.EmployeeID, slot, appointment.ID); err != nil {
				return nil, err
			}
			appointment.DateTime = slot
			rescheduled = true
		}
	}

	if req.Status != nil {
		appointment.Status = *req.Status
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.appointments.WithTx(tx).Update(ctx, appointment); err != nil {
			return err
		}
		if !rescheduled && serviceName == "" {
			return nil
		}

		events := s.events.WithTx(tx)
		event, err := events.FindByAppointment(ctx, appointment.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if rescheduled {
			event.StartDateTime = appointment.DateTime
			event.EndDateTime = appointment.DateTime.Add(s.eventDuration())
		}
		if serviceName != "" {
			event.Title = rebuildEventTitle(event.Title, serviceName)
		}
		return events.Update(ctx, event)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "uq_appointments_employee_slot") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, slotTakenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update appointment")
	}

	resp := toAppointmentResponse(appointment)
	s.attachEventID(ctx, resp)
	return resp, nil
}

// Cancel is idempotent: cancelling an already-cancelled appointment returns
// it unchanged. The paired calendar event is removed in the same transaction.
func (s *service) Cancel(ctx context.Context, identity middleware.Identity, id int64) (*AppointmentResponse, error) {
	appointment, err := s.findScoped(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status == enums.AppointmentStatusCancelled {
		return toAppointmentResponse(appointment), nil
	}

	appointment.Status = enums.AppointmentStatusCancelled
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.appointments.WithTx(tx).Update(ctx, appointment); err != nil {
			return err
		}
		if err := s.events.WithTx(tx).DeleteByAppointment(ctx, appointment.ID); err != nil {
			return err
		}
		appointmentID := appointment.ID
		return s.history.RecordTx(ctx, tx, &models.ServiceHistory{
			ClientID:      appointment.ClientID,
			AppointmentID: &appointmentID,
			Summary:       "appointment cancelled",
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel appointment")
	}

	return toAppointmentResponse(appointment), nil
}

// Stats reports counts per status. Admins see every business; employees are
// scoped to their own.
func (s *service) Stats(ctx context.Context, identity middleware.Identity) (*StatsResponse, error) {
	businessID := identity.BusinessID
	if identity.IsAdmin() {
		businessID = 0
	} else if businessID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope required")
	}

	counts, err := s.appointments.CountByStatus(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count appointments")
	}

	stats := &StatsResponse{
		Pending:   counts[enums.AppointmentStatusPending],
		Confirmed: counts[enums.AppointmentStatusConfirmed],
		Completed: counts[enums.AppointmentStatusCompleted],
		Cancelled: counts[enums.AppointmentStatusCancelled],
	}
	stats.Total = stats.Pending + stats.Confirmed + stats.Completed + stats.Cancelled
	if stats.Total > 0 {
		stats.CompletionRate = math.Round(float64(stats.Completed)/float64(stats.Total)*100*100) / 100
	}
	return stats, nil
}

func (s *service) checkSlotFree(ctx context.Context, employeeID int64, at time.Time, excludeID int64) error {
	existing, err := s.appointments.FindActiveByEmployeeAt(ctx, employeeID, at, excludeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slot")
	}
	if existing != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, slotTakenMessage)
	}
	return nil
}

func (s *service) buildEvent(appointment *models.Appointment, serviceName, clientName string, duration time.Duration) *models.CalendarEvent {
	return &models.CalendarEvent{
		BusinessID:    appointment.BusinessID,
		AppointmentID: appointment.ID,
		Title:         fmt.Sprintf("%s - %s", serviceName, clientName),
		StartDateTime: appointment.DateTime,
		EndDateTime:   appointment.DateTime.Add(duration),
	}
}

func (s *service) eventDuration() time.Duration {
	hours := s.calendarCfg.DefaultDurationHours
	if hours <= 0 {
		hours = 1
	}
	return time.Duration(hours) * time.Hour
}

func (s *service) attachEventID(ctx context.Context, resp *AppointmentResponse) {
	event, err := s.events.FindByAppointment(ctx, resp.ID)
	if err != nil {
		return
	}
	eventID := event.ID
	resp.CalendarEventID = &eventID
}

func (s *service) findScoped(ctx context.Context, identity middleware.Identity, id int64) (*models.Appointment, error) {
	appointment, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup appointment")
	}
	if !identity.IsAdmin() && identity.BusinessID != appointment.BusinessID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
	}
	return appointment, nil
}

func (s *service) resolveClient(ctx context.Context, businessID int64, ref string) (*models.Client, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		client, err := s.clients.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup client")
		}
		if client.BusinessID != businessID || !client.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return client, nil
	}

	client, err := s.clients.FindFirstByName(ctx, businessID, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup client")
	}
	return client, nil
}

func (s *service) resolveEmployee(ctx context.Context, businessID int64, ref string) (*models.Employee, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		employee, err := s.employees.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee")
		}
		if employee.BusinessID != businessID || !employee.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return employee, nil
	}

	employee, err := s.employees.FindFirstByName(ctx, businessID, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee")
	}
	return employee, nil
}

func (s *service) resolveService(ctx context.Context, businessID int64, ref string) (*models.Service, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		offering, err := s.services.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
		}
		if offering.BusinessID != businessID || !offering.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return offering, nil
	}

	offering, err := s.services.FindFirstByName(ctx, businessID, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
	}
	return offering, nil
}

func rebuildEventTitle(existing, serviceName string) string {
	parts := strings.SplitN(existing, " - ", 2)
	if len(parts) == 2 {
		return fmt.Sprintf("%s - %s", serviceName, parts[1])
	}
	return serviceName
}

func toAppointmentResponse(appointment *models.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:         appointment.ID,
		BusinessID: appointment.BusinessID,
		EmployeeID: appointment.EmployeeID,
		ClientID:   appointment.ClientID,
		ServiceID:  appointment.ServiceID,
		DateTime:   appointment.DateTime,
		Status:     appointment.Status,
		CreatedAt:  appointment.CreatedAt,
		UpdatedAt:  appointment.UpdatedAt,
	}
}
