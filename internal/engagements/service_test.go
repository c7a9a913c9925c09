package engagements

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/salonflow-backend/api/middleware"
	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubAssignmentRepo struct {
	byID   map[int64]*models.ClientService
	nextID int64
}

func newStubAssignmentRepo() *stubAssignmentRepo {
	return &stubAssignmentRepo{byID: make(map[int64]*models.ClientService)}
}

func (s *stubAssignmentRepo) Create(_ context.Context, assignment *models.ClientService) (*models.ClientService, error) {
	s.nextID++
	assignment.ID = s.nextID
	s.byID[assignment.ID] = assignment
	return assignment, nil
}

func (s *stubAssignmentRepo) FindByID(_ context.Context, id int64) (*models.ClientService, error) {
	if a, ok := s.byID[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubAssignmentRepo) ListByClient(_ context.Context, clientID int64) ([]models.ClientService, error) {
	var rows []models.ClientService
	for _, a := range s.byID {
		if a.ClientID == clientID {
			rows = append(rows, *a)
		}
	}
	return rows, nil
}

func (s *stubAssignmentRepo) Update(_ context.Context, assignment *models.ClientService) error {
	s.byID[assignment.ID] = assignment
	return nil
}

type stubHistoryReader struct {
	entries []models.ServiceHistory
}

func (s *stubHistoryReader) ListByClient(_ context.Context, clientID int64) ([]models.ServiceHistory, error) {
	var rows []models.ServiceHistory
	for _, e := range s.entries {
		if e.ClientID == clientID {
			rows = append(rows, e)
		}
	}
	return rows, nil
}

type stubClientReader struct {
	byID map[int64]*models.Client
}

func (s *stubClientReader) FindByID(_ context.Context, id int64) (*models.Client, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubServiceReader struct {
	byID map[int64]*models.Service
}

func (s *stubServiceReader) FindByID(_ context.Context, id int64) (*models.Service, error) {
	if o, ok := s.byID[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func employeeIdentity(businessID int64) middleware.Identity {
	return middleware.Identity{ActorType: enums.ActorTypeEmployee, ActorID: 5, BusinessID: businessID, Role: enums.EmployeeRoleEmployee}
}

func newTestService(t *testing.T, assignments *stubAssignmentRepo, clients *stubClientReader, services *stubServiceReader, history *stubHistoryReader) Service {
	t.Helper()
	if history == nil {
		history = &stubHistoryReader{}
	}
	svc, err := NewService(ServiceParams{
		AssignmentRepo: assignments,
		HistoryRepo:    history,
		ClientRepo:     clients,
		ServiceRepo:    services,
		Now:            func() time.Time { return time.Date(2026, 8, 10, 16, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestAssignService(t *testing.T) {
	clients := &stubClientReader{byID: map[int64]*models.Client{
		9: {ID: 9, BusinessID: 3, Name: "Maria", IsActive: true},
	}}
	services := &stubServiceReader{byID: map[int64]*models.Service{
		2: {ID: 2, BusinessID: 3, Name: "Balayage", IsActive: true},
	}}
	svc := newTestService(t, newStubAssignmentRepo(), clients, services, nil)

	resp, err := svc.Assign(context.Background(), employeeIdentity(3), 9, AssignServiceRequest{ServiceID: 2})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if resp.Completed {
		t.Fatal("new assignment should not be completed")
	}
}

func TestAssignServiceFromOtherBusiness(t *testing.T) {
	clients := &stubClientReader{byID: map[int64]*models.Client{
		9: {ID: 9, BusinessID: 3, Name: "Maria", IsActive: true},
	}}
	services := &stubServiceReader{byID: map[int64]*models.Service{
		2: {ID: 2, BusinessID: 8, Name: "Balayage", IsActive: true},
	}}
	svc := newTestService(t, newStubAssignmentRepo(), clients, services, nil)

	_, err := svc.Assign(context.Background(), employeeIdentity(3), 9, AssignServiceRequest{ServiceID: 2})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-tenant service should look like not found, got %v", err)
	}
}

func TestCompleteAssignment(t *testing.T) {
	assignments := newStubAssignmentRepo()
	assignments.byID[1] = &models.ClientService{ID: 1, ClientID: 9, ServiceID: 2}
	clients := &stubClientReader{byID: map[int64]*models.Client{
		9: {ID: 9, BusinessID: 3, Name: "Maria", IsActive: true},
	}}
	svc := newTestService(t, assignments, clients, &stubServiceReader{}, nil)

	resp, err := svc.Complete(context.Background(), employeeIdentity(3), 1)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !resp.Completed || resp.CompletedDate == nil {
		t.Fatalf("expected completed with date, got %+v", resp)
	}

	_, err = svc.Complete(context.Background(), employeeIdentity(3), 1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("double completion should be a state conflict, got %v", err)
	}
}

func TestListHistoryScoped(t *testing.T) {
	clients := &stubClientReader{byID: map[int64]*models.Client{
		9: {ID: 9, BusinessID: 3, Name: "Maria", IsActive: true},
	}}
	history := &stubHistoryReader{entries: []models.ServiceHistory{
		{ID: 1, ClientID: 9, Summary: "note added to CLI-001"},
		{ID: 2, ClientID: 44, Summary: "other client"},
	}}
	svc := newTestService(t, newStubAssignmentRepo(), clients, &stubServiceReader{}, history)

	resp, err := svc.ListHistory(context.Background(), employeeIdentity(3), 9)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(resp.History) != 1 || resp.History[0].Summary != "note added to CLI-001" {
		t.Fatalf("unexpected history: %+v", resp.History)
	}

	_, err = svc.ListHistory(context.Background(), employeeIdentity(8), 9)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-tenant history should look like not found, got %v", err)
	}
}
