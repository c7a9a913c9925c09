package businesses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/salonflow-backend/api/middleware"
	"github.com/angelmondragon/salonflow-backend/pkg/db"
	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"github.com/angelmondragon/salonflow-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service manages tenant records. Creation and deactivation are admin-only;
// employees may read their own business.
type Service interface {
	Create(ctx context.Context, req CreateBusinessRequest) (*BusinessResponse, error)
	Get(ctx context.Context, identity middleware.Identity, id int64) (*BusinessResponse, error)
	List(ctx context.Context, params pagination.Params) (*ListBusinessesResponse, error)
	Update(ctx context.Context, identity middleware.Identity, id int64, req UpdateBusinessRequest) (*BusinessResponse, error)
	Deactivate(ctx context.Context, id int64) error
}

type service struct {
	repo businessRepository
}

type businessRepository interface {
	Create(ctx context.Context, business *models.Business) (*models.Business, error)
	FindByID(ctx context.Context, id int64) (*models.Business, error)
	List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Business, error)
	Update(ctx context.Context, business *models.Business) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// NewService constructs a businesses service with the provided repository.
func NewService(repo businessRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("business repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, req CreateBusinessRequest) (*BusinessResponse, error) {
	business := &models.Business{
		Name:       strings.TrimSpace(req.Name),
		TaxID:      strings.TrimSpace(req.TaxID),
		PostalCode: req.PostalCode,
		IsActive:   true,
	}

	created, err := s.repo.Create(ctx, business)
	if err != nil {
		if db.IsUniqueViolation(err, "tax_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a business with this tax id already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create business")
	}
	return toBusinessResponse(created), nil
}

func (s *service) Get(ctx context.Context, identity middleware.Identity, id int64) (*BusinessResponse, error) {
	if !identity.IsAdmin() && identity.BusinessID != id {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope mismatch")
	}

	business, err := s.findBusiness(ctx, id)
	if err != nil {
		return nil, err
	}
	return toBusinessResponse(business), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ListBusinessesResponse, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.List(ctx, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list businesses")
	}

	nextCursor := ""
	if len(rows) > limit {
		last := rows[limit-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		rows = rows[:limit]
	}

	out := make([]BusinessResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toBusinessResponse(&rows[i]))
	}
	return &ListBusinessesResponse{Businesses: out, NextCursor: nextCursor}, nil
}

func (s *service) Update(ctx context.Context, identity middleware.Identity, id int64, req UpdateBusinessRequest) (*BusinessResponse, error) {
	if !identity.IsAdmin() {
		if identity.BusinessID != id {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope mismatch")
		}
		if !identity.CanManage() {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "management role required")
		}
	}

	business, err := s.findBusiness(ctx, id)
	if err != nil {
		return nil, err
	}
	if !business.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "business is deactivated")
	}

	if req.Name != nil {
		business.Name = strings.TrimSpace(*req.Name)
	}
	if req.PostalCode != nil {
		business.PostalCode = req.PostalCode
	}

	if err := s.repo.Update(ctx, business); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update business")
	}
	return toBusinessResponse(business), nil
}

// Deactivate soft-deletes a tenant. Already-inactive businesses are left
// as-is so repeated calls stay safe.
func (s *service) Deactivate(ctx context.Context, id int64) error {
	if _, err := s.findBusiness(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate business")
	}
	return nil
}

func (s *service) findBusiness(ctx context.Context, id int64) (*models.Business, error) {
	business, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup business")
	}
	return business, nil
}

func toBusinessResponse(business *models.Business) *BusinessResponse {
	return &BusinessResponse{
		ID:         business.ID,
		Name:       business.Name,
		TaxID:      business.TaxID,
		PostalCode: business.PostalCode,
		IsActive:   business.IsActive,
		CreatedAt:  business.CreatedAt,
		UpdatedAt:  business.UpdatedAt,
	}
}
