package engagements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/salonflow-backend/api/middleware"
	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service tracks which catalog services a client has signed up for and the
// append-only history of what was done for them.
type Service interface {
	Assign(ctx context.Context, identity middleware.Identity, clientID int64, req AssignServiceRequest) (*AssignmentResponse, error)
	Complete(ctx context.Context, identity middleware.Identity, assignmentID int64) (*AssignmentResponse, error)
	ListByClient(ctx context.Context, identity middleware.Identity, clientID int64) (*ListAssignmentsResponse, error)
	ListHistory(ctx context.Context, identity middleware.Identity, clientID int64) (*ListHistoryResponse, error)
}

type service struct {
	assignments assignmentRepository
	history     historyReader
	clients     clientReader
	services    serviceReader
	now         func() time.Time
}

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.ClientService) (*models.ClientService, error)
	FindByID(ctx context.Context, id int64) (*models.ClientService, error)
	ListByClient(ctx context.Context, clientID int64) ([]models.ClientService, error)
	Update(ctx context.Context, assignment *models.ClientService) error
}

type historyReader interface {
	ListByClient(ctx context.Context, clientID int64) ([]models.ServiceHistory, error)
}

type clientReader interface {
	FindByID(ctx context.Context, id int64) (*models.Client, error)
}

type serviceReader interface {
	FindByID(ctx context.Context, id int64) (*models.Service, error)
}

// ServiceParams bundles the dependencies required to build an engagements service.
type ServiceParams struct {
	AssignmentRepo assignmentRepository
	HistoryRepo    historyReader
	ClientRepo     clientReader
	ServiceRepo    serviceReader
	Now            func() time.Time
}

// NewService constructs an engagements service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.AssignmentRepo == nil {
		return nil, fmt.Errorf("assignment repository is required")
	}
	if params.HistoryRepo == nil {
		return nil, fmt.Errorf("history repository is required")
	}
	if params.ClientRepo == nil {
		return nil, fmt.Errorf("client repository is required")
	}
	if params.ServiceRepo == nil {
		return nil, fmt.Errorf("service repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		assignments: params.AssignmentRepo,
		history:     params.HistoryRepo,
		clients:     params.ClientRepo,
		services:    params.ServiceRepo,
		now:         now,
	}, nil
}

func (s *service) Assign(ctx context.Context, identity middleware.Identity, clientID int64, req AssignServiceRequest) (*AssignmentResponse, error) {
	client, err := s.findScopedClient(ctx, identity, clientID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "client is deactivated")
	}

	offering, err := s.services.FindByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
	}
	if offering.BusinessID != client.BusinessID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	if !offering.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "service is deactivated")
	}

	assignment := &models.ClientService{
		ClientID:  client.ID,
		ServiceID: offering.ID,
	}
	created, err := s.assignments.Create(ctx, assignment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign service")
	}
	return toAssignmentResponse(created), nil
}

// Complete marks an assignment as carried out. Completing twice is a state
// conflict so double submissions surface instead of silently restamping the
// completion date.
func (s *service) Complete(ctx context.Context, identity middleware.Identity, assignmentID int64) (*AssignmentResponse, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup assignment")
	}
	if _, err := s.findScopedClient(ctx, identity, assignment.ClientID); err != nil {
		return nil, err
	}
	if assignment.Completed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "assignment is already completed")
	}

	completedAt := s.now().UTC()
	assignment.Completed = true
	assignment.CompletedDate = &completedAt
	if err := s.assignments.Update(ctx, assignment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete assignment")
	}
	return toAssignmentResponse(assignment), nil
}

func (s *service) ListByClient(ctx context.Context, identity middleware.Identity, clientID int64) (*ListAssignmentsResponse, error) {
	if _, err := s.findScopedClient(ctx, identity, clientID); err != nil {
		return nil, err
	}

	rows, err := s.assignments.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}

	out := make([]AssignmentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toAssignmentResponse(&rows[i]))
	}
	return &ListAssignmentsResponse{Assignments: out}, nil
}

func (s *service) ListHistory(ctx context.Context, identity middleware.Identity, clientID int64) (*ListHistoryResponse, error) {
	if _, err := s.findScopedClient(ctx, identity, clientID); err != nil {
		return nil, err
	}

	rows, err := s.history.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list history")
	}

	out := make([]HistoryEntryResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, HistoryEntryResponse{
			ID:            row.ID,
			ClientID:      row.ClientID,
			AppointmentID: row.AppointmentID,
			NoteID:        row.NoteID,
			Summary:       row.Summary,
			CreatedAt:     row.CreatedAt,
		})
	}
	return &ListHistoryResponse{History: out}, nil
}

func (s *service) findScopedClient(ctx context.Context, identity middleware.Identity, clientID int64) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup client")
	}
	if !identity.IsAdmin() && identity.BusinessID != client.BusinessID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
	}
	return client, nil
}

func toAssignmentResponse(assignment *models.ClientService) *AssignmentResponse {
	return &AssignmentResponse{
		ID:            assignment.ID,
		ClientID:      assignment.ClientID,
		ServiceID:     assignment.ServiceID,
		Completed:     assignment.Completed,
		CompletedDate: assignment.CompletedDate,
		CreatedAt:     assignment.CreatedAt,
	}
}
