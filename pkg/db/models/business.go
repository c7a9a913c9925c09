package models

import "time"

// Business represents the canonical tenant model. Every other entity hangs
// off a business and is invisible to the other tenants.
type Business struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name       string    `gorm:"column:name;not null"`
	TaxID      string    `gorm:"column:tax_id;not null;uniqueIndex"`
	PostalCode *string   `gorm:"column:postal_code"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
