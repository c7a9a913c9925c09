package models

import (
	"time"

	"github.com/angelmondragon/salonflow-backend/pkg/enums"
)

// Employee is a staff member scoped to a single business. Owners and
// managers are employees with elevated roles.
type Employee struct {
	ID               int64              `gorm:"column:id;primaryKey;autoIncrement"`
	BusinessID       int64              `gorm:"column:business_id;not null;index"`
	Username         string             `gorm:"column:username;not null;uniqueIndex"`
	PasswordHash     string             `gorm:"column:password_hash;not null"`
	FirstName        string             `gorm:"column:first_name;not null"`
	LastName         string             `gorm:"column:last_name;not null"`
	Role             enums.EmployeeRole `gorm:"column:role;not null;default:'employee'"`
	SecurityQuestion *string            `gorm:"column:security_question"`
	SecurityAnswer   *string            `gorm:"column:security_answer"`
	IsActive         bool               `gorm:"column:is_active;not null;default:true"`
	LastLoginAt      *time.Time         `gorm:"column:last_login_at"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
