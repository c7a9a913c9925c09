package businesses

import (
	"context"

	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"github.com/angelmondragon/salonflow-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes tenant persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a business repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, business *models.Business) (*models.Business, error) {
	if err := r.db.WithContext(ctx).Create(business).Error; err != nil {
		return nil, err
	}
	return business, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Business, error) {
	var business models.Business
	if err := r.db.WithContext(ctx).First(&business, id).Error; err != nil {
		return nil, err
	}
	return &business, nil
}

// List returns tenants newest first using cursor pagination.
func (r *Repository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Business, error) {
	query := r.db.WithContext(ctx).Model(&models.Business{})

	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(limit)

	var rows []models.Business
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Update(ctx context.Context, business *models.Business) error {
	return r.db.WithContext(ctx).Save(business).Error
}

func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Business{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}
