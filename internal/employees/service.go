package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/salonflow-backend/api/middleware"
	"github.com/angelmondragon/salonflow-backend/pkg/config"
	"github.com/angelmondragon/salonflow-backend/pkg/db"
	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"github.com/angelmondragon/salonflow-backend/pkg/security"
	"gorm.io/gorm"
)

const tempPasswordLength = 16

// Service manages business staff. Writes require an admin or a management
// role within the same business.
type Service interface {
	Create(ctx context.Context, identity middleware.Identity, req CreateEmployeeRequest) (*EmployeeResponse, error)
	Get(ctx context.Context, identity middleware.Identity, id int64) (*EmployeeResponse, error)
	ListByBusiness(ctx context.Context, identity middleware.Identity, businessID int64) (*ListEmployeesResponse, error)
	Update(ctx context.Context, identity middleware.Identity, id int64, req UpdateEmployeeRequest) (*EmployeeResponse, error)
	ChangePassword(ctx context.Context, identity middleware.Identity, req ChangePasswordRequest) error
	Deactivate(ctx context.Context, identity middleware.Identity, id int64) error
}

type service struct {
	repo        employeeRepository
	businesses  businessReader
	passwordCfg config.PasswordConfig
}

type employeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) (*models.Employee, error)
	FindByID(ctx context.Context, id int64) (*models.Employee, error)
	ListByBusiness(ctx context.Context, businessID int64) ([]models.Employee, error)
	Update(ctx context.Context, employee *models.Employee) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	SetActive(ctx context.Context, id int64, active bool) error
}

type businessReader interface {
	FindByID(ctx context.Context, id int64) (*models.Business, error)
}

// ServiceParams bundles the dependencies required to build an employees service.
type ServiceParams struct {
	EmployeeRepo   employeeRepository
	BusinessRepo   businessReader
	PasswordConfig config.PasswordConfig
}

// NewService constructs an employees service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.EmployeeRepo == nil {
		return nil, fmt.Errorf("employee repository is required")
	}
	if params.BusinessRepo == nil {
		return nil, fmt.Errorf("business repository is required")
	}
	return &service{
		repo:        params.EmployeeRepo,
		businesses:  params.BusinessRepo,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) Create(ctx context.Context, identity middleware.Identity, req CreateEmployeeRequest) (*EmployeeResponse, error) {
	if err := requireManagementScope(identity, req.BusinessID); err != nil {
		return nil, err
	}

	business, err := s.businesses.FindByID(ctx, req.BusinessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "business not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup business")
	}
	if !business.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "business is deactivated")
	}

	password := req.Password
	tempPassword := ""
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
		}
		password = generated
		tempPassword = generated
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	employee := &models.Employee{
		BusinessID:       req.BusinessID,
		Username:         strings.ToLower(strings.TrimSpace(req.Username)),
		PasswordHash:     hash,
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Role:             req.Role,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
		IsActive:         true,
	}

	created, err := s.repo.Create(ctx, employee)
	if err != nil {
		if db.IsUniqueViolation(err, "username") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create employee")
	}

	resp := toEmployeeResponse(created)
	resp.TempPassword = tempPassword
	return resp, nil
}

func (s *service) Get(ctx context.Context, identity middleware.Identity, id int64) (*EmployeeResponse, error) {
	employee, err := s.findEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() && identity.BusinessID != employee.BusinessID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
	}
	return toEmployeeResponse(employee), nil
}

func (s *service) ListByBusiness(ctx context.Context, identity middleware.Identity, businessID int64) (*ListEmployeesResponse, error) {
	if !identity.IsAdmin() && identity.BusinessID != businessID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "business scope mismatch")
	}

	rows, err := s.repo.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list employees")
	}

	out := make([]EmployeeResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toEmployeeResponse(&rows[i]))
	}
	return &ListEmployeesResponse{Employees: out}, nil
}

func (s *service) Update(ctx context.Context, identity middleware.Identity, id int64, req UpdateEmployeeRequest) (*EmployeeResponse, error) {
	employee, err := s.findEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireManagementScope(identity, employee.BusinessID); err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		employee.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		employee.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Role != nil {
		employee.Role = *req.Role
	}
	if req.SecurityQuestion != nil {
		employee.SecurityQuestion = req.SecurityQuestion
	}
	if req.SecurityAnswer != nil {
		employee.SecurityAnswer = req.SecurityAnswer
	}

	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update employee")
	}
	return toEmployeeResponse(employee), nil
}

func (s *service) ChangePassword(ctx context.Context, identity middleware.Identity, req ChangePasswordRequest) error {
	if identity.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "business scope required")
	}

	employee, err := s.findEmployee(ctx, identity.ActorID)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(req.CurrentPassword, employee.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.repo.UpdatePasswordHash(ctx, employee.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	return nil
}

func (s *service) Deactivate(ctx context.Context, identity middleware.Identity, id int64) error {
	employee, err := s.findEmployee(ctx, id)
	if err != nil {
		return err
	}
	if err := requireManagementScope(identity, employee.BusinessID); err != nil {
		return err
	}
	if !identity.IsAdmin() && identity.ActorID == id {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot deactivate your own account")
	}

	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate employee")
	}
	return nil
}

func (s *service) findEmployee(ctx context.Context, id int64) (*models.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee")
	}
	return employee, nil
}

func requireManagementScope(identity middleware.Identity, businessID int64) error {
	if identity.IsAdmin() {
		return nil
	}
	if identity.BusinessID != businessID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "business scope mismatch")
	}
	if !identity.CanManage() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "management role required")
	}
	return nil
}

func toEmployeeResponse(employee *models.Employee) *EmployeeResponse {
	return &EmployeeResponse{
		ID:          employee.ID,
		BusinessID:  employee.BusinessID,
		Username:    employee.Username,
		FirstName:   employee.FirstName,
		LastName:    employee.LastName,
		Role:        employee.Role,
		IsActive:    employee.IsActive,
		LastLoginAt: employee.LastLoginAt,
		CreatedAt:   employee.CreatedAt,
		UpdatedAt:   employee.UpdatedAt,
	}
}
