package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/salonflow-backend/api/middleware"
	pkgAuth "github.com/angelmondragon/salonflow-backend/pkg/auth"
	"github.com/angelmondragon/salonflow-backend/pkg/config"
	"github.com/angelmondragon/salonflow-backend/pkg/db"
	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonflow-backend/pkg/errors"
	"github.com/angelmondragon/salonflow-backend/pkg/security"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

// Service authenticates both caller populations and resolves token claims
// back into a request identity on every call.
type Service interface {
	SetupAdmin(ctx context.Context, req SetupAdminRequest) (*LoginResponse, error)
	LoginEmployee(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	LoginAdmin(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	SecurityQuestion(ctx context.Context, username string) (*SecurityQuestionResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	Resolve(ctx context.Context, claims *pkgAuth.AccessTokenClaims) (*middleware.Identity, error)
}

type service struct {
	admins      adminRepository
	employees   employeeRepository
	businesses  businessRepository
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

type adminRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	FindByID(ctx context.Context, id int64) (*models.Admin, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, admin *models.Admin) error
}

type employeeRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Employee, error)
	FindByID(ctx context.Context, id int64) (*models.Employee, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

type businessRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Business, error)
}

// ServiceParams bundles the dependencies required to build an identity service.
type ServiceParams struct {
	AdminRepo      adminRepository
	EmployeeRepo   employeeRepository
	BusinessRepo   businessRepository
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Now            func() time.Time
}

// NewService constructs an identity service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.AdminRepo == nil {
		return nil, fmt.Errorf("admin repository is required")
	}
	if params.EmployeeRepo == nil {
		return nil, fmt.Errorf("employee repository is required")
	}
	if params.BusinessRepo == nil {
		return nil, fmt.Errorf("business repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		admins:      params.AdminRepo,
		employees:   params.EmployeeRepo,
		businesses:  params.BusinessRepo,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		now:         now,
	}, nil
}

// SetupAdmin creates the first system admin. Once any admin exists the
// endpoint is closed; further accounts are provisioned out of band.
func (s *service) SetupAdmin(ctx context.Context, req SetupAdminRequest) (*LoginResponse, error) {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count admins")
	}
	if count > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin setup already completed")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	admin := &models.Admin{
		Username:     normalizeUsername(req.Username),
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		if db.IsUniqueViolation(err, "uq_admins_username") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin")
	}

	now := s.now().UTC()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		ActorType: enums.ActorTypeAdmin,
		ActorID:   admin.ID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		Actor: ActorSummary{
			ActorType: enums.ActorTypeAdmin,
			ActorID:   admin.ID,
			Username:  admin.Username,
		},
	}, nil
}

func (s *service) LoginEmployee(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	employee, err := s.employees.FindByUsername(ctx, normalizeUsername(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee")
	}
	if !employee.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if err := s.verifyPassword(req.Password, employee.PasswordHash); err != nil {
		return nil, err
	}

	business, err := s.businesses.FindByID(ctx, employee.BusinessID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup business")
	}
	if !business.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := s.now().UTC()
	if err := s.employees.UpdateLastLogin(ctx, employee.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}

	businessID := employee.BusinessID
	role := employee.Role
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		ActorType:  enums.ActorTypeEmployee,
		ActorID:    employee.ID,
		BusinessID: &businessID,
		Role:       &role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		Actor: ActorSummary{
			ActorType:  enums.ActorTypeEmployee,
			ActorID:    employee.ID,
			Username:   employee.Username,
			BusinessID: &businessID,
			Role:       &role,
		},
	}, nil
}

func (s *service) LoginAdmin(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	admin, err := s.admins.FindByUsername(ctx, normalizeUsername(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup admin")
	}
	if !admin.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if err := s.verifyPassword(req.Password, admin.PasswordHash); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		ActorType: enums.ActorTypeAdmin,
		ActorID:   admin.ID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		Actor: ActorSummary{
			ActorType: enums.ActorTypeAdmin,
			ActorID:   admin.ID,
			Username:  admin.Username,
		},
	}, nil
}

func (s *service) SecurityQuestion(ctx context.Context, username string) (*SecurityQuestionResponse, error) {
	employee, err := s.employees.FindByUsername(ctx, normalizeUsername(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "employee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee")
	}
	if !employee.IsActive || employee.SecurityQuestion == nil || strings.TrimSpace(*employee.SecurityQuestion) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no security question on file")
	}
	return &SecurityQuestionResponse{
		Username:         employee.Username,
		SecurityQuestion: *employee.SecurityQuestion,
	}, nil
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	employee, err := s.employees.FindByUsername(ctx, normalizeUsername(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup employee")
	}
	if !employee.IsActive || employee.SecurityAnswer == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if !strings.EqualFold(strings.TrimSpace(*employee.SecurityAnswer), strings.TrimSpace(req.SecurityAnswer)) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.employees.UpdatePasswordHash(ctx, employee.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
	}
	return nil
}

// Resolve maps validated token claims to a live identity. Tokens survive
// deactivation, so active flags are re-checked on every request.
func (s *service) Resolve(ctx context.Context, claims *pkgAuth.AccessTokenClaims) (*middleware.Identity, error) {
	if claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing token claims")
	}

	switch claims.ActorType {
	case enums.ActorTypeAdmin:
		admin, err := s.admins.FindByID(ctx, claims.ActorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve admin")
		}
		if !admin.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account deactivated")
		}
		return &middleware.Identity{
			ActorType: enums.ActorTypeAdmin,
			ActorID:   admin.ID,
		}, nil

	case enums.ActorTypeEmployee:
		if claims.BusinessID == nil || claims.Role == nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed employee token")
		}
		employee, err := s.employees.FindByID(ctx, claims.ActorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve employee")
		}
		if !employee.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account deactivated")
		}
		if employee.BusinessID != *claims.BusinessID {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "token scope mismatch")
		}
		return &middleware.Identity{
			ActorType:  enums.ActorTypeEmployee,
			ActorID:    employee.ID,
			BusinessID: employee.BusinessID,
			Role:       employee.Role,
		}, nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown actor type")
}

func (s *service) verifyPassword(password, hash string) error {
	ok, err := security.VerifyPassword(password, hash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
