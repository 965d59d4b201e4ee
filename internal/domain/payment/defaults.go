package payment

import "strings"

// DefaultPolicy fills absent identity fields on incoming callbacks. The demo
// deployment accepts guest checkouts with no userId and no packageId; strict
// mode rejects them instead. Kept as one named policy so integrators can see
// exactly what gets substituted.
type DefaultPolicy struct {
	Strict    bool
	UserID    string
	PackageID string
	Currency  string
}

// NewDefaultPolicy creates the callback default policy
func NewDefaultPolicy(strict bool, defaultUserID string) DefaultPolicy {
	return DefaultPolicy{
		Strict:    strict,
		UserID:    defaultUserID,
		PackageID: "basic",
		Currency:  "USD",
	}
}

// Apply substitutes defaults in place, or rejects in strict mode.
func (p DefaultPolicy) Apply(cb *Callback) error {
	if strings.TrimSpace(cb.UserID) == "" {
		if p.Strict {
			return ErrMissingUserID
		}
		cb.UserID = p.UserID
	}
	if strings.TrimSpace(cb.PackageID) == "" {
		if p.Strict {
			return ErrMissingPackageID
		}
		cb.PackageID = p.PackageID
	}
	if strings.TrimSpace(cb.Currency) == "" {
		cb.Currency = p.Currency
	}
	return nil
}
