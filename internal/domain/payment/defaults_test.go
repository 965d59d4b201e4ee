package payment_test

import (
	"errors"
	"testing"

	"github.com/granada-os/credits-api/internal/domain/payment"
)

func TestDefaultPolicySubstitutes(t *testing.T) {
	policy := payment.NewDefaultPolicy(false, "guest-user")

	cb := payment.Callback{}
	if err := policy.Apply(&cb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cb.UserID != "guest-user" {
		t.Fatalf("expected default user id, got %q", cb.UserID)
	}
	if cb.PackageID != "basic" {
		t.Fatalf("expected default package id, got %q", cb.PackageID)
	}
	if cb.Currency != "USD" {
		t.Fatalf("expected default currency, got %q", cb.Currency)
	}
}

func TestDefaultPolicyKeepsProvidedFields(t *testing.T) {
	policy := payment.NewDefaultPolicy(false, "guest-user")

	cb := payment.Callback{UserID: "u1", PackageID: "enterprise", Currency: "KES"}
	if err := policy.Apply(&cb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cb.UserID != "u1" || cb.PackageID != "enterprise" || cb.Currency != "KES" {
		t.Fatalf("provided fields must not be overwritten, got %+v", cb)
	}
}

func TestDefaultPolicyStrict(t *testing.T) {
	policy := payment.NewDefaultPolicy(true, "guest-user")

	cb := payment.Callback{PackageID: "basic"}
	if err := policy.Apply(&cb); !errors.Is(err, payment.ErrMissingUserID) {
		t.Fatalf("expected ErrMissingUserID, got %v", err)
	}

	cb = payment.Callback{UserID: "u1"}
	if err := policy.Apply(&cb); !errors.Is(err, payment.ErrMissingPackageID) {
		t.Fatalf("expected ErrMissingPackageID, got %v", err)
	}

	// Currency default still applies in strict mode.
	cb = payment.Callback{UserID: "u1", PackageID: "basic"}
	if err := policy.Apply(&cb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cb.Currency != "USD" {
		t.Fatalf("expected currency default, got %q", cb.Currency)
	}
}
