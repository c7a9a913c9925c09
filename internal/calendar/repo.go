package calendar

import (
	"context"
	"time"

	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a calendar event repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, event *models.CalendarEvent) (*models.CalendarEvent, error) {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	if err := r.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) FindByAppointment(ctx context.Context, appointmentID int64) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) ListByBusiness(ctx context.Context, businessID int64, from, to *time.Time, synced *bool) ([]models.CalendarEvent, error) {
	query := r.db.WithContext(ctx).Where("business_id = ?", businessID)
	if from != nil {
		query = query.Where("start_date_time >= ?", *from)
	}
	if to != nil {
		query = query.Where("start_date_time < ?", *to)
	}
	if synced != nil {
		if *synced {
			query = query.Where("external_event_id IS NOT NULL")
		} else {
			query = query.Where("external_event_id IS NULL")
		}
	}

	var rows []models.CalendarEvent
	if err := query.Order("start_date_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListUnsynced(ctx context.Context, businessID int64) ([]models.CalendarEvent, error) {
	var rows []models.CalendarEvent
	err := r.db.WithContext(ctx).
		Where("business_id = ? AND external_event_id IS NULL", businessID).
		Order("start_date_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, event *models.CalendarEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// MarkSynced stamps the provider identifier and sync time in one write so a
// half-applied sync can never be observed.
func (r *repository) MarkSynced(ctx context.Context, id int64, externalEventID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.CalendarEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"external_event_id": externalEventID,
			"last_sync":         at,
		}).Error
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.CalendarEvent{}).Error
}

func (r *repository) DeleteByAppointment(ctx context.Context, appointmentID int64) error {
	return r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Delete(&models.CalendarEvent{}).Error
}

func (r *repository) CountByBusiness(ctx context.Context, businessID int64) (int64, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.CalendarEvent{}).
		Where("business_id = ?", businessID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	var synced int64
	err = r.db.WithContext(ctx).
		Model(&models.CalendarEvent{}).
		Where("business_id = ? AND external_event_id IS NOT NULL", businessID).
		Count(&synced).Error
	if err != nil {
		return 0, 0, err
	}
	return total, synced, nil
}
