package payment_test

import (
	"context"
	"testing"

	"github.com/granada-os/credits-api/internal/domain/payment"
)

func TestCatalogResolveBuiltins(t *testing.T) {
	catalog := payment.NewCatalog(nil)

	cases := []struct {
		id      string
		name    string
		credits int
	}{
		{"basic", "Basic", 50},
		{"starter", "Starter", 50},
		{"professional", "Professional", 150},
		{"enterprise", "Enterprise", 400},
		{"unlimited", "Unlimited", 1000},
	}

	for _, tc := range cases {
		pkg := catalog.Resolve(context.Background(), tc.id)
		if pkg.Name != tc.name || pkg.Credits != tc.credits {
			t.Fatalf("%s: expected %s/%d, got %s/%d", tc.id, tc.name, tc.credits, pkg.Name, pkg.Credits)
		}
	}
}

func TestCatalogResolveNormalizesID(t *testing.T) {
	catalog := payment.NewCatalog(nil)

	pkg := catalog.Resolve(context.Background(), "  Professional ")
	if pkg.Credits != 150 {
		t.Fatalf("expected case and whitespace insensitive lookup, got %d credits", pkg.Credits)
	}
}

func TestCatalogResolveUnknownFallsBack(t *testing.T) {
	catalog := payment.NewCatalog(nil)

	for _, id := range []string{"", "premium-gold", "BASIC2"} {
		pkg := catalog.Resolve(context.Background(), id)
		if pkg.Credits != payment.DefaultPackageCredits {
			t.Fatalf("%q: expected default grant %d, got %d", id, payment.DefaultPackageCredits, pkg.Credits)
		}
		if pkg.Name != "Basic" {
			t.Fatalf("%q: expected fallback name Basic, got %q", id, pkg.Name)
		}
	}
}
