package auth

import (
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
// BusinessID and Role are set only for employee actors; system admins
// carry neither.
type AccessTokenPayload struct {
	ActorType  enums.ActorType
	ActorID    int64
	BusinessID *int64
	Role       *enums.EmployeeRole
	JTI        string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	ActorType  enums.ActorType     `json:"actor_type"`
	ActorID    int64               `json:"actor_id"`
	BusinessID *int64              `json:"business_id,omitempty"`
	Role       *enums.EmployeeRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}
