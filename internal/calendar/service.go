package calendar

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/angelmondragon/salonflow-backend/api/middleware"
	"github.com/angelmondragon/salonflow-backend/pkg/db"
	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"github.com/angelmondragon/salonflow-backend/pkg/gcal"
	"github.com/angelmondragon/salonflow-backend/pkg/metrics"
	"gorm.io/gorm"
)

const (
	syncOperationCreate = "create"
	syncOperationUpdate = "update"

	eventExistsMessage = "appointment already has a calendar event"
)

// Service manages the mirrored calendar and its push to the external
// provider. Local rows are the source of truth; provider identifiers are
// only stamped after the provider acknowledges the write.
type Service interface {
	Create(ctx context.Context, identity middleware.Identity, req CreateEventRequest) (*EventResponse, error)
	Get(ctx context.Context, identity middleware.Identity, id int64) (*EventResponse, error)
	GetByAppointment(ctx context.Context, identity middleware.Identity, appointmentID int64) (*EventResponse, error)
	List(ctx context.Context, identity middleware.Identity, req ListEventsRequest) (*ListEventsResponse, error)
	Update(ctx context.Context, identity middleware.Identity, id int64, req UpdateEventRequest) (*EventResponse, error)
	Delete(ctx context.Context, identity middleware.Identity, id int64) error
	Sync(ctx context.Context, identity middleware.Identity, id int64) (*EventResponse, error)
	SyncPending(ctx context.Context, identity middleware.Identity) (*SyncSummary, error)
	SyncStats(ctx context.Context, identity middleware.Identity) (*SyncStatsResponse, error)
}

type service struct {
	repo         Repository
	appointments appointmentReader
	provider     providerClient
	syncMetrics  *metrics.SyncMetrics
	now          func() time.Time
}

type providerClient interface {
	CreateEvent(ctx context.Context, ev gcal.Event) (*gcal.EventResult, error)
	UpdateEvent(ctx context.Context, externalEventID string, ev gcal.Event) (*gcal.EventResult, error)
}

type appointmentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Appointment, error)
}

// ServiceParams bundles the dependencies required to build a calendar service.
// Provider may be nil when no provider credentials are configured; sync
// operations then fail with a dependency error while local reads keep working.
type ServiceParams struct {
	Repo         Repository
	Appointments appointmentReader
	Provider     providerClient
	SyncMetrics  *metrics.SyncMetrics
	Now          func() time.Time
}

// NewService constructs a calendar service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("calendar repository is required")
	}
	if params.Appointments == nil {
		return nil, fmt.Errorf("appointment reader is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:         params.Repo,
		appointments: params.Appointments,
		provider:     params.Provider,
		syncMetrics:  params.SyncMetrics,
		now:          now,
	}, nil
}

// Create attaches an event to an appointment that does not have one yet. The
// 1:1 rule is checked up front and backed by the store's unique index, so the
// racing loser gets a conflict. An external id supplied at creation marks the
// event as already synced.
func (s *service) Create(ctx context.Context, identity middleware.Identity, req CreateEventRequest) (*EventResponse, error) {
	appointment, err := s.findScopedAppointment(ctx, identity, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event end must be after event start")
	}

	if _, err := s.repo.FindByAppointment(ctx, appointment.ID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, eventExistsMessage)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup event")
	}

	event := &models.CalendarEvent{
		BusinessID:    appointment.BusinessID,
		AppointmentID: appointment.ID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		StartDateTime: req.StartTime.UTC(),
		EndDateTime:   req.EndTime.UTC(),
	}
	if req.ExternalEventID != nil {
		event.ExternalEventID = req.ExternalEventID
		syncedAt := s.now().UTC()
		event.LastSync = &syncedAt
	}

	created, err := s.repo.Create(ctx, event)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_calendar_events_appointment") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, eventExistsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event")
	}
	return NewEventResponse(created), nil
}

func (s *service) Get(ctx context.Context, identity middleware.Identity, id int64) (*EventResponse, error) {
	event, err := s.findScoped(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	return NewEventResponse(event), nil
}

func (s *service) GetByAppointment(ctx context.Context, identity middleware.Identity, appointmentID int64) (*EventResponse, error) {
	event, err := s.repo.FindByAppointment(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup event")
	}
	if !identity.IsAdmin() && identity.BusinessID != event.BusinessID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	return NewEventResponse(event), nil
}

func (s *service) List(ctx context.Context, identity middleware.Identity, req ListEventsRequest) (*ListEventsResponse, error) {
	if identity.BusinessID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope required")
	}
	if req.From != nil && req.To != nil && !req.To.After(*req.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "window end must be after window start")
	}

	rows, err := s.repo.ListByBusiness(ctx, identity.BusinessID, req.From, req.To, req.Synced)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}

	out := make([]EventResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *NewEventResponse(&rows[i]))
	}
	return &ListEventsResponse{Events: out}, nil
}

func (s *service) Update(ctx context.Context, identity middleware.Identity, id int64, req UpdateEventRequest) (*EventResponse, error) {
	event, err := s.findScoped(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.StartTime != nil {
		event.StartDateTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		event.EndDateTime = req.EndTime.UTC()
	}
	if !event.EndDateTime.After(event.StartDateTime) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event end must be after event start")
	}
	// Relinking to a remote copy counts as a sync.
	if req.ExternalEventID != nil {
		event.ExternalEventID = req.ExternalEventID
		syncedAt := s.now().UTC()
		event.LastSync = &syncedAt
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update event")
	}
	return NewEventResponse(event), nil
}

// Delete removes the local mirror outright. The remote copy, if one exists,
// stays with the provider.
func (s *service) Delete(ctx context.Context, identity middleware.Identity, id int64) error {
	event, err := s.findScoped(ctx, identity, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, event.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete event")
	}
	return nil
}

// Sync pushes one event to the provider. ExternalEventID and LastSync are
// stamped only after a 2xx acknowledgement; a provider failure leaves the
// local row exactly as it was.
func (s *service) Sync(ctx context.Context, identity middleware.Identity, id int64) (*EventResponse, error) {
	event, err := s.findScoped(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if err := s.syncOne(ctx, event); err != nil {
		return nil, err
	}
	return NewEventResponse(event), nil
}

// SyncPending pushes every never-synced event for the business, continuing
// past individual failures.
func (s *service) SyncPending(ctx context.Context, identity middleware.Identity) (*SyncSummary, error) {
	if identity.BusinessID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope required")
	}

	rows, err := s.repo.ListUnsynced(ctx, identity.BusinessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list unsynced events")
	}

	summary := &SyncSummary{Attempted: len(rows)}
	for i := range rows {
		if err := s.syncOne(ctx, &rows[i]); err != nil {
			summary.Failed++
			continue
		}
		summary.Synced++
	}
	return summary, nil
}

func (s *service) SyncStats(ctx context.Context, identity middleware.Identity) (*SyncStatsResponse, error) {
	if identity.BusinessID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope required")
	}

	total, synced, err := s.repo.CountByBusiness(ctx, identity.BusinessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count events")
	}

	percentage := 0.0
	if total > 0 {
		percentage = math.Round(float64(synced)/float64(total)*100*100) / 100
	}
	return &SyncStatsResponse{
		TotalEvents:    total,
		SyncedEvents:   synced,
		SyncPercentage: percentage,
	}, nil
}

func (s *service) syncOne(ctx context.Context, event *models.CalendarEvent) error {
	if s.provider == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "calendar provider is not configured")
	}

	payload := gcal.Event{
		Summary: event.Title,
		Start:   event.StartDateTime,
		End:     event.EndDateTime,
	}
	if event.Description != nil {
		payload.Description = *event.Description
	}

	operation := syncOperationCreate
	if event.ExternalEventID != nil {
		operation = syncOperationUpdate
	}

	started := s.now()
	var result *gcal.EventResult
	var err error
	if operation == syncOperationCreate {
		result, err = s.provider.CreateEvent(ctx, payload)
	} else {
		result, err = s.provider.UpdateEvent(ctx, *event.ExternalEventID, payload)
	}
	s.syncMetrics.ObserveDuration(operation, s.now().Sub(started))

	if err != nil {
		s.syncMetrics.IncFailure(operation)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "push event to provider")
	}
	s.syncMetrics.IncSuccess(operation)

	externalID := result.ID
	if operation == syncOperationUpdate {
		externalID = *event.ExternalEventID
	}
	syncedAt := s.now().UTC()
	if err := s.repo.MarkSynced(ctx, event.ID, externalID, syncedAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sync state")
	}

	event.ExternalEventID = &externalID
	event.LastSync = &syncedAt
	return nil
}

func (s *service) findScoped(ctx context.Context, identity middleware.Identity, id int64) (*models.CalendarEvent, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup event")
	}
	if !identity.IsAdmin() && identity.BusinessID != event.BusinessID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	return event, nil
}

func (s *service) findScopedAppointment(ctx context.Context, identity middleware.Identity, id int64) (*models.Appointment, error) {
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

// NewEventResponse maps a stored event to its API shape.
func NewEventResponse(event *models.CalendarEvent) *EventResponse {
	return &EventResponse{
		ID:              event.ID,
		BusinessID:      event.BusinessID,
		AppointmentID:   event.AppointmentID,
		Title:           event.Title,
		Description:     event.Description,
		StartDateTime:   event.StartDateTime,
		EndDateTime:     event.EndDateTime,
		ExternalEventID: event.ExternalEventID,
		LastSync:        event.LastSync,
		CreatedAt:       event.CreatedAt,
		UpdatedAt:       event.UpdatedAt,
	}
}
