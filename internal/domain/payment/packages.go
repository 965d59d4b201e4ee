package payment

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Package maps money to a fixed credit grant. Reference data: administrators
// manage the credit_packages table outside this service; the built-in table
// below is the fallback when the row is missing.
type Package struct {
	ID      string          `db:"id" json:"id"`
	Name    string          `db:"name" json:"name"`
	Credits int             `db:"credits" json:"credits"`
	Price   decimal.Decimal `db:"price" json:"price"`
	Active  bool            `db:"active" json:"active"`
}

// DefaultPackageCredits is granted for unrecognized package ids. Unknown ids
// are a policy fallback, not a failure.
const DefaultPackageCredits = 50

var builtinPackages = map[string]Package{
	"basic":        {ID: "basic", Name: "Basic", Credits: 50},
	"starter":      {ID: "starter", Name: "Starter", Credits: 50},
	"professional": {ID: "professional", Name: "Professional", Credits: 150},
	"enterprise":   {ID: "enterprise", Name: "Enterprise", Credits: 400},
	"unlimited":    {ID: "unlimited", Name: "Unlimited", Credits: 1000},
}

// Catalog resolves package ids to credit grants, preferring the database row
// over the built-in table.
type Catalog struct {
	repo Repository
}

// NewCatalog creates a package catalog. repo may be nil (built-ins only).
func NewCatalog(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

// Resolve never fails: unknown ids fall back to a default grant.
func (c *Catalog) Resolve(ctx context.Context, packageID string) Package {
	id := strings.ToLower(strings.TrimSpace(packageID))

	if c.repo != nil && id != "" {
		if pkg, err := c.repo.GetPackage(ctx, id); err == nil && pkg != nil && pkg.Active {
			return *pkg
		} else if err != nil {
			log.Warn().Err(err).Str("package_id", id).Msg("package lookup failed, using built-in table")
		}
	}

	if pkg, ok := builtinPackages[id]; ok {
		return pkg
	}

	return Package{ID: id, Name: "Basic", Credits: DefaultPackageCredits}
}
