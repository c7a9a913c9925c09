package models

import (
	"time"

	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Payment tracks money collected against a client's estimated total.
// PaymentsMade never exceeds EstimatedTotal; Status is derived from the
// two amounts on every write.
type Payment struct {
	ID             int64               `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID       int64               `gorm:"column:client_id;not null;index"`
	Method         enums.PaymentMethod `gorm:"column:method;not null;default:'cash'"`
	EstimatedTotal decimal.Decimal     `gorm:"column:estimated_total;type:numeric(12,2);not null"`
	PaymentsMade   decimal.Decimal     `gorm:"column:payments_made;type:numeric(12,2);not null"`
	PaymentDate    *time.Time          `gorm:"column:payment_date"`
	Status         enums.PaymentStatus `gorm:"column:status;not null;default:'pending'"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
