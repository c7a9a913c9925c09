package models

import "time"

// Client is a customer record scoped to a business. DisplayCode is the
// human-facing CLI-NNN identifier, assigned sequentially per business.
type Client struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	BusinessID  int64     `gorm:"column:business_id;not null;uniqueIndex:uq_clients_business_display_code"`
	DisplayCode string    `gorm:"column:display_code;not null;uniqueIndex:uq_clients_business_display_code"`
	Name        string    `gorm:"column:name;not null"`
	Phone       *string   `gorm:"column:phone"`
	NationalID  *string   `gorm:"column:national_id;uniqueIndex"`
	Email       *string   `gorm:"column:email;uniqueIndex"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
