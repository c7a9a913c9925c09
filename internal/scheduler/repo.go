package scheduler

import (
	"context"
	"time"

	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	"github.com/angelmondragon/salonflow-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes appointment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an appointment repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) appointmentStore {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, appointment *models.Appointment) (*models.Appointment, error) {
	if err := r.db.WithContext(ctx).Create(appointment).Error; err != nil {
		return nil, err
	}
	return appointment, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := r.db.WithContext(ctx).First(&appointment, id).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

// FindActiveByEmployeeAt returns the pending or confirmed appointment
// occupying the exact timestamp for the employee, excluding the given id.
func (r *Repository) FindActiveByEmployeeAt(ctx context.Context, employeeID int64, at time.Time, excludeID int64) (*models.Appointment, error) {
	query := r.db.WithContext(ctx).
		Where("employee_id = ? AND date_time = ? AND status IN ?", employeeID, at, enums.ActiveAppointmentStatuses)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}

	var appointment models.Appointment
	if err := query.First(&appointment).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *Repository) List(ctx context.Context, businessID int64, req ListAppointmentsRequest, limit int, cursor *pagination.Cursor) ([]models.Appointment, error) {
	query := r.db.WithContext(ctx).Model(&models.Appointment{}).Where("business_id = ?", businessID)

	if req.EmployeeID != nil {
		query = query.Where("employee_id = ?", *req.EmployeeID)
	}
	if req.ClientID != nil {
		query = query.Where("client_id = ?", *req.ClientID)
	}
	if req.Status != nil {
		query = query.Where("status = ?", *req.Status)
	}
	if req.From != nil {
		query = query.Where("date_time >= ?", *req.From)
	}
	if req.To != nil {
		query = query.Where("date_time < ?", *req.To)
	}
	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(limit)

	var rows []models.Appointment
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Update(ctx context.Context, appointment *models.Appointment) error {
	return r.db.WithContext(ctx).Save(appointment).Error
}

// CountByStatus groups appointment counts per status. A zero businessID
// counts across every business.
func (r *Repository) CountByStatus(ctx context.Context, businessID int64) (map[enums.AppointmentStatus]int64, error) {
	type statusCount struct {
		Status enums.AppointmentStatus
		Count  int64
	}

	query := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("status, COUNT(*) AS count")
	if businessID > 0 {
		query = query.Where("business_id = ?", businessID)
	}

	var rows []statusCount
	err := query.Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[enums.AppointmentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
