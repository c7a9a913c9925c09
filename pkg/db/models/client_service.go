package models

import "time"

// ClientService assigns a catalog service to a client and tracks whether it
// has been carried out.
type ClientService struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID      int64      `gorm:"column:client_id;not null;index"`
	ServiceID     int64      `gorm:"column:service_id;not null;index"`
	Completed     bool       `gorm:"column:completed;not null;default:false"`
	CompletedDate *time.Time `gorm:"column:completed_date"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
