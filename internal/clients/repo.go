package clients

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"github.com/angelmondragon/salonflow-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes customer persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a client repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, client *models.Client) (*models.Client, error) {
	if err := r.db.WithContext(ctx).Create(client).Error; err != nil {
		return nil, err
	}
	return client, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *Repository) FindByDisplayCode(ctx context.Context, businessID int64, code string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND display_code = ?", businessID, code).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// FindFirstByName resolves a client reference by name within a business.
// Ambiguity resolves to the oldest matching record.
func (r *Repository) FindFirstByName(ctx context.Context, businessID int64, name string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND LOWER(name) = LOWER(?) AND is_active = ?", businessID, name, true).
		Order("id ASC").
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// List returns business-scoped clients newest first, optionally filtered by
// a case-insensitive search over name, display code, email, or national id.
func (r *Repository) List(ctx context.Context, businessID int64, search string, limit int, cursor *pagination.Cursor) ([]models.Client, error) {
	query := r.db.WithContext(ctx).Model(&models.Client{}).Where("business_id = ?", businessID)

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(display_code) LIKE ? OR LOWER(email) LIKE ? OR national_id LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(limit)

	var rows []models.Client
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Update(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

// MaxDisplaySequence returns the highest CLI-NNN sequence already assigned
// for the business, 0 when none exist.
func (r *Repository) MaxDisplaySequence(ctx context.Context, businessID int64) (int, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("business_id = ?", businessID).
		Pluck("display_code", &codes).Error
	if err != nil {
		return 0, err
	}

	max := 0
	prefix := fmt.Sprintf("%s-", displayCodePrefix)
	for _, code := range codes {
		seq, err := strconv.Atoi(strings.TrimPrefix(code, prefix))
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max, nil
}

// NoteRepository exposes client note persistence operations.
type NoteRepository struct {
	db *gorm.DB
}

// NewNoteRepository constructs a note repository tied to the provided GORM DB.
func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// WithTx returns a copy bound to the provided transaction.
func (r *NoteRepository) WithTx(tx *gorm.DB) noteRepository {
	return &NoteRepository{db: tx}
}

func (r *NoteRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

func (r *NoteRepository) ListByClient(ctx context.Context, clientID int64) ([]models.Note, error) {
	var rows []models.Note
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
