package identity

import (
	"time"

	"github.com/angelmondragon/salonflow-backend/pkg/enums"
)

// LoginRequest carries credentials for either login surface.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=120"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginResponse is the issued token plus a summary of who logged in.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	Actor       ActorSummary `json:"actor"`
}

// ActorSummary describes the authenticated caller.
type ActorSummary struct {
	ActorType  enums.ActorType     `json:"actor_type"`
	ActorID    int64               `json:"actor_id"`
	Username   string              `json:"username"`
	BusinessID *int64              `json:"business_id,omitempty"`
	Role       *enums.EmployeeRole `json:"role,omitempty"`
}

// SetupAdminRequest bootstraps the first system admin account.
type SetupAdminRequest struct {
	Username string `json:"username" validate:"required,min=3,max=120"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// SecurityQuestionResponse exposes the recovery prompt for a username.
type SecurityQuestionResponse struct {
	Username         string `json:"username"`
	SecurityQuestion string `json:"security_question"`
}

// ResetPasswordRequest answers the security question to set a new password.
type ResetPasswordRequest struct {
	Username       string `json:"username" validate:"required,min=3,max=120"`
	SecurityAnswer string `json:"security_answer" validate:"required,min=1,max=255"`
	NewPassword    string `json:"new_password" validate:"required,min=8,max=128"`
}
