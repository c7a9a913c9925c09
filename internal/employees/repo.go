package employees

import (
	"context"

	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes staff persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an employee repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, employee *models.Employee) (*models.Employee, error) {
	if err := r.db.WithContext(ctx).Create(employee).Error; err != nil {
		return nil, err
	}
	return employee, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).First(&employee, id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

// FindFirstByName resolves an employee reference by username or full name
// within a business. Ambiguity resolves to the oldest matching record.
func (r *Repository) FindFirstByName(ctx context.Context, businessID int64, name string) (*models.Employee, error) {
	var employee models.Employee
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND is_active = ? AND (LOWER(username) = LOWER(?) OR LOWER(first_name || ' ' || last_name) = LOWER(?))",
			businessID, true, name, name).
		Order("id ASC").
		First(&employee).Error
	if err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *Repository) ListByBusiness(ctx context.Context, businessID int64) ([]models.Employee, error) {
	var rows []models.Employee
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("last_name ASC").Order("first_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Update(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Save(employee).Error
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Employee{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}
