package catalog

import (
	"context"

	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes catalog persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, offering *models.Service) (*models.Service, error) {
	if err := r.db.WithContext(ctx).Create(offering).Error; err != nil {
		return nil, err
	}
	return offering, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Service, error) {
	var offering models.Service
	if err := r.db.WithContext(ctx).First(&offering, id).Error; err != nil {
		return nil, err
	}
	return &offering, nil
}

// FindFirstByName resolves a service reference by name within a business.
// Ambiguity resolves to the oldest matching record.
func (r *Repository) FindFirstByName(ctx context.Context, businessID int64, name string) (*models.Service, error) {
	var offering models.Service
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND LOWER(name) = LOWER(?) AND is_active = ?", businessID, name, true).
		Order("id ASC").
		First(&offering).Error
	if err != nil {
		return nil, err
	}
	return &offering, nil
}

func (r *Repository) ListByBusiness(ctx context.Context, businessID int64) ([]models.Service, error) {
	var rows []models.Service
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Update(ctx context.Context, offering *models.Service) error {
	return r.db.WithContext(ctx).Save(offering).Error
}

func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Service{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}
