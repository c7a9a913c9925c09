package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/salonflow-backend/api/middleware"
	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"gorm.io/gorm"
)

// Service manages the per-business catalog of offerings.
type Service interface {
	Create(ctx context.Context, identity middleware.Identity, req CreateServiceRequest) (*ServiceResponse, error)
	Get(ctx context.Context, identity middleware.Identity, id int64) (*ServiceResponse, error)
	ListByBusiness(ctx context.Context, identity middleware.Identity) (*ListServicesResponse, error)
	Update(ctx context.Context, identity middleware.Identity, id int64, req UpdateServiceRequest) (*ServiceResponse, error)
	Deactivate(ctx context.Context, identity middleware.Identity, id int64) error
}

type service struct {
	repo serviceRepository
}

type serviceRepository interface {
	Create(ctx context.Context, offering *models.Service) (*models.Service, error)
	FindByID(ctx context.Context, id int64) (*models.Service, error)
	ListByBusiness(ctx context.Context, businessID int64) ([]models.Service, error)
	Update(ctx context.Context, offering *models.Service) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// NewService constructs a catalog service with the provided repository.
func NewService(repo serviceRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("service repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, identity middleware.Identity, req CreateServiceRequest) (*ServiceResponse, error) {
	if identity.BusinessID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope required")
	}
	if !identity.CanManage() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "management role required")
	}
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	offering := &models.Service{
		BusinessID:  identity.BusinessID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		IsActive:    true,
	}

	created, err := s.repo.Create(ctx, offering)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create service")
	}
	return toServiceResponse(created), nil
}

func (s *service) Get(ctx context.Context, identity middleware.Identity, id int64) (*ServiceResponse, error) {
	offering, err := s.findScoped(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	return toServiceResponse(offering), nil
}

func (s *service) ListByBusiness(ctx context.Context, identity middleware.Identity) (*ListServicesResponse, error) {
	if identity.BusinessID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope required")
	}

	rows, err := s.repo.ListByBusiness(ctx, identity.BusinessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list services")
	}

	out := make([]ServiceResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toServiceResponse(&rows[i]))
	}
	return &ListServicesResponse{Services: out}, nil
}

func (s *service) Update(ctx context.Context, identity middleware.Identity, id int64, req UpdateServiceRequest) (*ServiceResponse, error) {
	if !identity.CanManage() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "management role required")
	}

	offering, err := s.findScoped(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if !offering.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "service is deactivated")
	}

	if req.Name != nil {
		offering.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		offering.Description = req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		offering.Price = *req.Price
	}

	if err := s.repo.Update(ctx, offering); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update service")
	}
	return toServiceResponse(offering), nil
}

func (s *service) Deactivate(ctx context.Context, identity middleware.Identity, id int64) error {
	if !identity.CanManage() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "management role required")
	}
	if _, err := s.findScoped(ctx, identity, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate service")
	}
	return nil
}

func (s *service) findScoped(ctx context.Context, identity middleware.Identity, id int64) (*models.Service, error) {
	offering, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup service")
	}
	if !identity.IsAdmin() && identity.BusinessID != offering.BusinessID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "service not found")
	}
	return offering, nil
}

func toServiceResponse(offering *models.Service) *ServiceResponse {
	return &ServiceResponse{
		ID:          offering.ID,
		BusinessID:  offering.BusinessID,
		Name:        offering.Name,
		Description: offering.Description,
		Price:       offering.Price,
		IsActive:    offering.IsActive,
		CreatedAt:   offering.CreatedAt,
		UpdatedAt:   offering.UpdatedAt,
	}
}
