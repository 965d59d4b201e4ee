package validator_test

import (
	"testing"

	"github.com/granada-os/credits-api/internal/pkg/validator"
)

type txPayload struct {
	Type     string `json:"type" validate:"txtype"`
	Currency string `json:"currency" validate:"currency"`
	Source   string `json:"source" validate:"processor"`
}

func TestCustomTags(t *testing.T) {
	cases := []struct {
		name    string
		payload txPayload
		field   string
	}{
		{"valid", txPayload{Type: "purchase", Currency: "USD", Source: "stripe"}, ""},
		{"valid empty currency and processor", txPayload{Type: "usage"}, ""},
		{"bad type", txPayload{Type: "refund", Currency: "USD"}, "type"},
		{"lowercase currency", txPayload{Type: "bonus", Currency: "usd"}, "currency"},
		{"long currency", txPayload{Type: "bonus", Currency: "DOLLARS"}, "currency"},
		{"bad processor", txPayload{Type: "bonus", Source: "square"}, "source"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			details := validator.Validate(tc.payload)
			if tc.field == "" {
				if details != nil {
					t.Fatalf("expected valid, got %v", details)
				}
				return
			}
			if details == nil {
				t.Fatal("expected validation error")
			}
			if _, ok := details[tc.field]; !ok {
				t.Fatalf("expected error keyed by json name %q, got %v", tc.field, details)
			}
		})
	}
}

type requiredPayload struct {
	UserID string `json:"userId" validate:"required"`
	Amount int    `json:"amount" validate:"required,gte=1"`
}

func TestJSONTagNames(t *testing.T) {
	details := validator.Validate(requiredPayload{})
	if details == nil {
		t.Fatal("expected validation errors")
	}
	if _, ok := details["userId"]; !ok {
		t.Fatalf("expected userId key, got %v", details)
	}
	if _, ok := details["amount"]; !ok {
		t.Fatalf("expected amount key, got %v", details)
	}
}
