package models

import (
	"time"

	"github.com/angelmondragon/salonflow-backend/pkg/enums"
)

// Appointment books an employee for a client at an exact timestamp. The
// migration adds a partial unique index on (employee_id, date_time) for
// pending and confirmed rows so double booking loses the race at the store
// level too.
type Appointment struct {
	ID         int64                   `gorm:"column:id;primaryKey;autoIncrement"`
	BusinessID int64                   `gorm:"column:business_id;not null;index"`
	EmployeeID int64                   `gorm:"column:employee_id;not null;index"`
	ClientID   int64                   `gorm:"column:client_id;not null;index"`
	ServiceID  int64                   `gorm:"column:service_id;not null"`
	DateTime   time.Time               `gorm:"column:date_time;not null"`
	Status     enums.AppointmentStatus `gorm:"column:status;not null;default:'pending'"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
