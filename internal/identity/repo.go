package identity

import (
	"context"
	"time"

	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"gorm.io/gorm"
)

// AdminRepository looks up system admin accounts.
type AdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository constructs an admin repository tied to the provided GORM DB.
func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) FindByID(ctx context.Context, id int64) (*models.Admin, error) {
	var admin models.Admin
	if err := r.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Admin{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

// EmployeeCredentialRepository covers the credential-side employee lookups
// used for login, token resolution, and password recovery.
type EmployeeCredentialRepository struct {
	db *gorm.DB
}

// NewEmployeeCredentialRepository constructs the repository tied to the provided GORM DB.
func NewEmployeeCredentialRepository(db *gorm.DB) *EmployeeCredentialRepository {
	return &EmployeeCredentialRepository{db: db}
}

func (r *EmployeeCredentialRepository) FindByUsername(ctx context.Context, username string) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeCredentialRepository) FindByID(ctx context.Context, id int64) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).First(&employee, id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *EmployeeCredentialRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

func (r *EmployeeCredentialRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}
