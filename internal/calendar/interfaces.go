package calendar

import (
	"context"
	"time"

	"github.com/angelmondragon/salonflow-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for calendar events. The
// scheduler creates and retires events inside booking transactions, so the
// interface is transaction-aware.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.CalendarEvent) (*models.CalendarEvent, error)
	FindByID(ctx context.Context, id int64) (*models.CalendarEvent, error)
	FindByAppointment(ctx context.Context, appointmentID int64) (*models.CalendarEvent, error)
	ListByBusiness(ctx context.Context, businessID int64, from, to *time.Time, synced *bool) ([]models.CalendarEvent, error)
	ListUnsynced(ctx context.Context, businessID int64) ([]models.CalendarEvent, error)
	Update(ctx context.Context, event *models.CalendarEvent) error
	MarkSynced(ctx context.Context, id int64, externalEventID string, at time.Time) error
	Delete(ctx context.Context, id int64) error
	DeleteByAppointment(ctx context.Context, appointmentID int64) error
	CountByBusiness(ctx context.Context, businessID int64) (total int64, synced int64, err error)
}
