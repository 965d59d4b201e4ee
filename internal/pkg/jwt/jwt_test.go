package jwt_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/granada-os/credits-api/internal/pkg/jwt"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Hour)
	adminID := uuid.New()

	token, err := svc.GenerateToken(adminID, "admin@test.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.AdminID != adminID {
		t.Fatalf("expected admin id %s, got %s", adminID, claims.AdminID)
	}
	if claims.Email != "admin@test.com" {
		t.Fatalf("expected email claim, got %q", claims.Email)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Hour)
	other := jwt.NewService("other-secret", time.Hour)

	token, err := svc.GenerateToken(uuid.New(), "admin@test.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, jwt.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateExpired(t *testing.T) {
	svc := jwt.NewService("test-secret", -time.Minute)

	token, err := svc.GenerateToken(uuid.New(), "admin@test.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := svc.ValidateToken(token); !errors.Is(err, jwt.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateGarbage(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Hour)

	if _, err := svc.ValidateToken("not.a.token"); !errors.Is(err, jwt.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
