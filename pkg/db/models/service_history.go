package models

import "time"

// ServiceHistory is an append-only trail of what happened to a client:
// appointments taken, notes added. Rows are never updated or deleted.
type ServiceHistory struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID      int64     `gorm:"column:client_id;not null;index"`
	AppointmentID *int64    `gorm:"column:appointment_id"`
	NoteID        *int64    `gorm:"column:note_id"`
	Summary       string    `gorm:"column:summary;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}
