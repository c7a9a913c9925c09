package engagements

import (
	"context"

	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"gorm.io/gorm"
)

// AssignmentRepository exposes client-service assignment persistence.
type AssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository constructs an assignment repository tied to the provided GORM DB.
func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.ClientService) (*models.ClientService, error) {
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return nil, err
	}
	return assignment, nil
}

func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*models.ClientService, error) {
	var assignment models.ClientService
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *AssignmentRepository) ListByClient(ctx context.Context, clientID int64) ([]models.ClientService, error) {
	var rows []models.ClientService
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.ClientService) error {
	return r.db.WithContext(ctx).Save(assignment).Error
}

// HistoryRepository persists the append-only client trail. There are no
// update or delete operations on purpose.
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository constructs a history repository tied to the provided GORM DB.
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// RecordTx appends an entry inside the caller's transaction. A nil tx falls
// back to the repository's own connection.
func (r *HistoryRepository) RecordTx(ctx context.Context, tx *gorm.DB, entry *models.ServiceHistory) error {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	return conn.WithContext(ctx).Create(entry).Error
}

func (r *HistoryRepository) ListByClient(ctx context.Context, clientID int64) ([]models.ServiceHistory, error) {
	var rows []models.ServiceHistory
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
