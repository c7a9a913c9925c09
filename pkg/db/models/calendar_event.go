package models

import "time"

// CalendarEvent mirrors an appointment on the business calendar. The unique
// index on appointment_id enforces the 1:1 pairing; ExternalEventID and
// LastSync are only set after a successful provider sync.
type CalendarEvent struct {
	ID              int64      `gorm:"column:id;primaryKey;autoIncrement"`
	BusinessID      int64      `gorm:"column:business_id;not null;index"`
	AppointmentID   int64      `gorm:"column:appointment_id;not null;uniqueIndex"`
	Title           string     `gorm:"column:title;not null"`
	Description     *string    `gorm:"column:description"`
	StartDateTime   time.Time  `gorm:"column:start_date_time;not null"`
	EndDateTime     time.Time  `gorm:"column:end_date_time;not null"`
	ExternalEventID *string    `gorm:"column:external_event_id"`
	LastSync        *time.Time `gorm:"column:last_sync"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
