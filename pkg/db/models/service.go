package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is an offering in a business catalog.
type Service struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	BusinessID  int64           `gorm:"column:business_id;not null;index"`
	Name        string          `gorm:"column:name;not null"`
	Description *string         `gorm:"column:description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
