package catalog

import (
	"context"
	"testing"

	"github.com/angelmondragon/salonflow-backend/api/middleware"
	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubServiceRepo struct {
	byID   map[int64]*models.Service
	nextID int64
}

func newStubServiceRepo() *stubServiceRepo {
	return &stubServiceRepo{byID: make(map[int64]*models.Service)}
}

func (s *stubServiceRepo) Create(_ context.Context, offering *models.Service) (*models.Service, error) {
	s.nextID++
	offering.ID = s.nextID
	s.byID[offering.ID] = offering
	return offering, nil
}

func (s *stubServiceRepo) FindByID(_ context.Context, id int64) (*models.Service, error) {
	if o, ok := s.byID[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubServiceRepo) ListByBusiness(_ context.Context, businessID int64) ([]models.Service, error) {
	var rows []models.Service
	for _, o := range s.byID {
		if o.BusinessID == businessID {
			rows = append(rows, *o)
		}
	}
	return rows, nil
}

func (s *stubServiceRepo) Update(_ context.Context, offering *models.Service) error {
	s.byID[offering.ID] = offering
	return nil
}

func (s *stubServiceRepo) SetActive(_ context.Context, id int64, active bool) error {
	if o, ok := s.byID[id]; ok {
		o.IsActive = active
	}
	return nil
}

func managerIdentity(businessID int64) middleware.Identity {
	return middleware.Identity{ActorType: enums.ActorTypeEmployee, ActorID: 4, BusinessID: businessID, Role: enums.EmployeeRoleManager}
}

func staffIdentity(businessID int64) middleware.Identity {
	return middleware.Identity{ActorType: enums.ActorTypeEmployee, ActorID: 5, BusinessID: businessID, Role: enums.EmployeeRoleEmployee}
}

func TestCreateService(t *testing.T) {
	repo := newStubServiceRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	resp, err := svc.Create(context.Background(), managerIdentity(3), CreateServiceRequest{
		Name:  "Balayage",
		Price: decimal.RequireFromString("85.50"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !resp.Price.Equal(decimal.RequireFromString("85.50")) {
		t.Fatalf("unexpected price %s", resp.Price)
	}
}

func TestCreateServiceRejectsNegativePrice(t *testing.T) {
	svc, _ := NewService(newStubServiceRepo())

	_, err := svc.Create(context.Background(), managerIdentity(3), CreateServiceRequest{
		Name:  "Balayage",
		Price: decimal.RequireFromString("-1"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateServiceRequiresManagement(t *testing.T) {
	svc, _ := NewService(newStubServiceRepo())

	_, err := svc.Create(context.Background(), staffIdentity(3), CreateServiceRequest{
		Name:  "Balayage",
		Price: decimal.RequireFromString("10"),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("staff should not manage the catalog, got %v", err)
	}
}

func TestUpdateServicePrice(t *testing.T) {
	repo := newStubServiceRepo()
	repo.byID[1] = &models.Service{ID: 1, BusinessID: 3, Name: "Balayage", Price: decimal.RequireFromString("85.50"), IsActive: true}
	svc, _ := NewService(repo)

	newPrice := decimal.RequireFromString("92.00")
	resp, err := svc.Update(context.Background(), managerIdentity(3), 1, UpdateServiceRequest{Price: &newPrice})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !resp.Price.Equal(newPrice) {
		t.Fatalf("expected updated price, got %s", resp.Price)
	}
}

func TestGetServiceHidesOtherTenants(t *testing.T) {
	repo := newStubServiceRepo()
	repo.byID[1] = &models.Service{ID: 1, BusinessID: 8, Name: "Balayage", IsActive: true}
	svc, _ := NewService(repo)

	_, err := svc.Get(context.Background(), staffIdentity(3), 1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("cross-tenant read should look like not found, got %v", err)
	}
}

func TestDeactivateService(t *testing.T) {
	repo := newStubServiceRepo()
	repo.byID[1] = &models.Service{ID: 1, BusinessID: 3, Name: "Balayage", IsActive: true}
	svc, _ := NewService(repo)

	if err := svc.Deactivate(context.Background(), managerIdentity(3), 1); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if repo.byID[1].IsActive {
		t.Fatal("expected service to be inactive")
	}
}
