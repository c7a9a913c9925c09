package employees

import (
	"time"

	"github.com/angelmondragon/salonflow-backend/pkg/enums"
)

// CreateEmployeeRequest onboards a staff member. When Password is empty a
// temporary one is generated and returned once in the response.
type CreateEmployeeRequest struct {
	BusinessID       int64              `json:"business_id" validate:"required,gt=0"`
	Username         string             `json:"username" validate:"required,min=3,max=120"`
	Password         string             `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
	FirstName        string             `json:"first_name" validate:"required,min=1,max=120"`
	LastName         string             `json:"last_name" validate:"required,min=1,max=120"`
	Role             enums.EmployeeRole `json:"role" validate:"required,oneof=owner manager employee"`
	SecurityQuestion *string            `json:"security_question,omitempty" validate:"omitempty,min=3,max=255"`
	SecurityAnswer   *string            `json:"security_answer,omitempty" validate:"omitempty,min=1,max=255"`
}

// UpdateEmployeeRequest applies a partial update; nil fields are untouched.
type UpdateEmployeeRequest struct {
	FirstName        *string             `json:"first_name,omitempty" validate:"omitempty,min=1,max=120"`
	LastName         *string             `json:"last_name,omitempty" validate:"omitempty,min=1,max=120"`
	Role             *enums.EmployeeRole `json:"role,omitempty" validate:"omitempty,oneof=owner manager employee"`
	SecurityQuestion *string             `json:"security_question,omitempty" validate:"omitempty,min=3,max=255"`
	SecurityAnswer   *string             `json:"security_answer,omitempty" validate:"omitempty,min=1,max=255"`
}

// ChangePasswordRequest lets an employee rotate their own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,min=8,max=128"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// EmployeeResponse is the API shape of a staff member. TempPassword is set
// only on creation when the server generated the credential.
type EmployeeResponse struct {
	ID           int64              `json:"id"`
	BusinessID   int64              `json:"business_id"`
	Username     string             `json:"username"`
	FirstName    string             `json:"first_name"`
	LastName     string             `json:"last_name"`
	Role         enums.EmployeeRole `json:"role"`
	IsActive     bool               `json:"is_active"`
	LastLoginAt  *time.Time         `json:"last_login_at,omitempty"`
	TempPassword string             `json:"temp_password,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// ListEmployeesResponse wraps a business roster.
type ListEmployeesResponse struct {
	Employees []EmployeeResponse `json:"employees"`
}
