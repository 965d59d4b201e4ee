package credit

import (
	"fmt"
	"time"
)

// TxType defines supported ledger transaction types.
type TxType string

const (
	TxTypePurchase TxType = "purchase"
	TxTypeUsage    TxType = "usage"
	TxTypeBonus    TxType = "bonus"
)

// Valid reports whether the type is one of the ledger types.
func (t TxType) Valid() bool {
	switch t {
	case TxTypePurchase, TxTypeUsage, TxTypeBonus:
		return true
	}
	return false
}

// StatusCompleted is the only status this service writes; the column exists
// for parity with the payment store and future holds.
const StatusCompleted = "completed"

// Metadata handles NULL jsonb fields from DB
type Metadata []byte

func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		*m = append((*m)[0:0], v...)
	case string:
		*m = []byte(v)
	default:
		return fmt.Errorf("unsupported type: %T", src)
	}
	return nil
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("null"), nil
	}
	return m, nil
}

// Transaction is an append-only ledger row. Amount is signed: positive for
// purchase/bonus, negative for usage.
type Transaction struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"userId"`
	Type        TxType    `db:"type" json:"type"`
	Amount      int       `db:"amount" json:"amount"`
	Description string    `db:"description" json:"description"`
	PackageID   *string   `db:"package_id" json:"packageId,omitempty"`
	Metadata    Metadata  `db:"metadata" json:"metadata,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"timestamp"`
}

// Pagination controls simple list pagination.
type Pagination struct {
	Limit  int
	Offset int
}

// SearchFilters provides admin-facing transaction filtering.
type SearchFilters struct {
	Type   *string
	Limit  int
	Offset int
}

// AdminTransaction is a ledger row joined with user identity for the admin
// listing.
type AdminTransaction struct {
	Transaction
	UserEmail    *string `db:"user_email" json:"userEmail,omitempty"`
	UserFullName *string `db:"user_full_name" json:"userFullName,omitempty"`
}

// Stats aggregates the admin listing.
type Stats struct {
	TransactionCount int     `db:"transaction_count" json:"transactionCount"`
	TotalRevenue     float64 `db:"total_revenue" json:"totalRevenue"`
	CreditsIssued    int     `db:"credits_issued" json:"creditsIssued"`
	CreditsUsed      int     `db:"credits_used" json:"creditsUsed"`
}

// DailyStat is one analytics bucket.
type DailyStat struct {
	Date             string  `json:"date"`
	Revenue          float64 `json:"revenue"`
	CreditsIssued    int     `json:"creditsIssued"`
	CreditsUsed      int     `json:"creditsUsed"`
	TransactionCount int     `json:"transactionCount"`
}

// PopularPackage is a package ranked by purchase count.
type PopularPackage struct {
	PackageID     string `db:"package_id" json:"packageId"`
	PurchaseCount int    `db:"purchase_count" json:"purchaseCount"`
}

// Analytics is the admin analytics payload.
type Analytics struct {
	DailyStats      []DailyStat      `json:"dailyStats"`
	PopularPackages []PopularPackage `json:"popularPackages"`
}
