package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/salonflow-backend/pkg/config"
	"github.com/angelmondragon/salonflow-backend/pkg/enums"
)

func TestMintAndParseEmployeeToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "salonflow",
		ExpirationMinutes: 30,
	}
	now := time.Now().UTC()
	businessID := int64(7)
	role := enums.EmployeeRoleManager

	payload := AccessTokenPayload{
		ActorType:  enums.ActorTypeEmployee,
		ActorID:    42,
		BusinessID: &businessID,
		Role:       &role,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.ActorType != enums.ActorTypeEmployee {
		t.Fatalf("expected employee actor, got %s", claims.ActorType)
	}
	if claims.ActorID != 42 {
		t.Fatalf("expected actor_id 42, got %d", claims.ActorID)
	}
	if claims.BusinessID == nil || *claims.BusinessID != businessID {
		t.Fatal("business id not preserved")
	}
	if claims.Role == nil || *claims.Role != enums.EmployeeRoleManager {
		t.Fatal("role not preserved")
	}

	// RegisteredClaims is embedded, so access fields directly.
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestMintAndParseAdminToken(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "salonflow",
		ExpirationMinutes: 30,
	}

	payload := AccessTokenPayload{
		ActorType: enums.ActorTypeAdmin,
		ActorID:   1,
	}

	token, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ActorType != enums.ActorTypeAdmin {
		t.Fatalf("expected admin actor, got %s", claims.ActorType)
	}
	if claims.BusinessID != nil || claims.Role != nil {
		t.Fatal("admin token must not carry business scope")
	}
}

func TestMintAdminTokenRejectsBusinessScope(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "salonflow",
		ExpirationMinutes: 30,
	}
	businessID := int64(3)

	payload := AccessTokenPayload{
		ActorType:  enums.ActorTypeAdmin,
		ActorID:    1,
		BusinessID: &businessID,
	}

	if _, err := MintAccessToken(cfg, time.Now(), payload); err == nil {
		t.Fatal("expected error for admin token with business scope")
	}
}

func TestMintEmployeeTokenRequiresScope(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "salonflow",
		ExpirationMinutes: 5,
	}

	payload := AccessTokenPayload{
		ActorType: enums.ActorTypeEmployee,
		ActorID:   9,
	}

	if _, err := MintAccessToken(cfg, time.Now(), payload); err == nil {
		t.Fatal("expected error for employee token without business and role")
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "salonflow",
		ExpirationMinutes: 10,
	}

	payload := AccessTokenPayload{
		ActorType: enums.ActorTypeAdmin,
		ActorID:   1,
	}

	token, err := MintAccessToken(cfg, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err = ParseAccessToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:            "secret",
		Issuer:            "salonflow",
		ExpirationMinutes: 15,
	}
	now := time.Now().Add(-time.Hour)

	payload := AccessTokenPayload{
		ActorType: enums.ActorTypeAdmin,
		ActorID:   1,
	}

	token, err := MintAccessToken(cfg, now, payload)
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}
