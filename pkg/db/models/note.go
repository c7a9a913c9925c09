package models

import "time"

// Note is free-form text attached to a client record.
type Note struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID    int64     `gorm:"column:client_id;not null;index"`
	Description string    `gorm:"column:description;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
