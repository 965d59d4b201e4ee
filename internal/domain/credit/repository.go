package credit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

type Repository interface {
	// InsertTx appends a ledger row within an external transaction. It does
	// NOT commit or rollback — the caller is responsible.
	InsertTx(ctx context.Context, tx *sqlx.Tx, t *Transaction) error
	// Record appends a ledger row and adjusts the cached balance in one
	// transaction of its own.
	Record(ctx context.Context, t *Transaction) error
	CachedBalance(ctx context.Context, userID string) (int, error)
	Totals(ctx context.Context, userID string) (purchased, used int, err error)
	List(ctx context.Context, userID string, p Pagination) ([]Transaction, error)
	Search(ctx context.Context, f SearchFilters) ([]AdminTransaction, error)
	SearchStats(ctx context.Context, f SearchFilters) (*Stats, error)
	DailyStats(ctx context.Context, days int) ([]DailyStat, error)
	PopularPackages(ctx context.Context, days, limit int) ([]PopularPackage, error)
	LedgerSum(ctx context.Context, userID string) (int, error)
	// RepairBalance rewrites the cached balance from the ledger sum and
	// returns the repaired value. Audit tooling only.
	RepairBalance(ctx context.Context, userID string) (int, error)
}

// LedgerRepository provides credit ledger and balance-cache operations.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, t *Transaction) error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if strings.TrimSpace(t.Status) == "" {
		t.Status = StatusCompleted
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO credit_transactions (
			id, user_id, type, amount, description, package_id, metadata, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.ID, t.UserID, t.Type, t.Amount, t.Description, t.PackageID, nullableJSON(t.Metadata), t.Status)
	if err != nil {
		return fmt.Errorf("%w: insert ledger row", ErrInternal)
	}
	return nil
}

func (r *LedgerRepository) Record(ctx context.Context, t *Transaction) error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}

	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	// Relative increments only; never read-modify-write the balance in Go.
	if t.Amount < 0 {
		result, err := tx.ExecContext(ctx2, `
			UPDATE users
			SET credits = credits + $2, updated_at = NOW()
			WHERE id = $1 AND credits >= -$2
		`, t.UserID, t.Amount)
		if err != nil {
			return fmt.Errorf("%w: update user balance", ErrInternal)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: rows affected", ErrInternal)
		}
		if rows == 0 {
			var exists bool
			if err := tx.GetContext(ctx2, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, t.UserID); err != nil {
				return fmt.Errorf("%w: check user", ErrInternal)
			}
			if !exists {
				return ErrUserNotFound
			}
			return ErrInsufficientCredits
		}
	} else {
		result, err := tx.ExecContext(ctx2, `
			UPDATE users
			SET credits = credits + $2, updated_at = NOW()
			WHERE id = $1
		`, t.UserID, t.Amount)
		if err != nil {
			return fmt.Errorf("%w: update user balance", ErrInternal)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: rows affected", ErrInternal)
		}
		if rows == 0 {
			return ErrUserNotFound
		}
	}

	if err := r.InsertTx(ctx2, tx, t); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit tx", ErrInternal)
	}
	return nil
}

func (r *LedgerRepository) CachedBalance(ctx context.Context, userID string) (int, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var balance int
	err := r.db.GetContext(ctx2, &balance, `SELECT credits FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: get balance", ErrInternal)
	}
	return balance, nil
}

func (r *LedgerRepository) Totals(ctx context.Context, userID string) (int, int, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var row struct {
		Purchased int `db:"purchased"`
		Used      int `db:"used"`
	}
	err := r.db.GetContext(ctx2, &row, `
		SELECT
			COALESCE(SUM(CASE WHEN type IN ('purchase', 'bonus') THEN amount ELSE 0 END), 0) AS purchased,
			COALESCE(SUM(CASE WHEN type = 'usage' THEN -amount ELSE 0 END), 0) AS used
		FROM credit_transactions
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: ledger totals", ErrInternal)
	}
	return row.Purchased, row.Used, nil
}

func (r *LedgerRepository) List(ctx context.Context, userID string, p Pagination) ([]Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions := make([]Transaction, 0)
	err := r.db.SelectContext(ctx2, &transactions, `
		SELECT id, user_id, type, amount, description, package_id, metadata, status, created_at
		FROM credit_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, p.Offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list transactions", ErrInternal)
	}
	return transactions, nil
}

func (r *LedgerRepository) Search(ctx context.Context, f SearchFilters) ([]AdminTransaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	base := `
		SELECT ct.id, ct.user_id, ct.type, ct.amount, ct.description, ct.package_id,
		       ct.metadata, ct.status, ct.created_at,
		       u.email AS user_email, u.full_name AS user_full_name
		FROM credit_transactions ct
		LEFT JOIN users u ON u.id = ct.user_id
		WHERE 1=1`
	args := make([]interface{}, 0, 3)
	idx := 1

	if f.Type != nil && *f.Type != "" {
		base += fmt.Sprintf(" AND ct.type = $%d", idx)
		args = append(args, *f.Type)
		idx++
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	base += fmt.Sprintf(" ORDER BY ct.created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, f.Offset)

	transactions := make([]AdminTransaction, 0)
	if err := r.db.SelectContext(ctx2, &transactions, base, args...); err != nil {
		return nil, fmt.Errorf("%w: search transactions", ErrInternal)
	}
	return transactions, nil
}

func (r *LedgerRepository) SearchStats(ctx context.Context, f SearchFilters) (*Stats, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var stats Stats
	query := `
		SELECT
			COUNT(*) AS transaction_count,
			COALESCE(SUM(CASE WHEN type IN ('purchase', 'bonus') THEN amount ELSE 0 END), 0) AS credits_issued,
			COALESCE(SUM(CASE WHEN type = 'usage' THEN -amount ELSE 0 END), 0) AS credits_used,
			0::float8 AS total_revenue
		FROM credit_transactions
		WHERE 1=1`
	args := make([]interface{}, 0, 1)
	if f.Type != nil && *f.Type != "" {
		query += " AND type = $1"
		args = append(args, *f.Type)
	}
	if err := r.db.GetContext(ctx2, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("%w: transaction stats", ErrInternal)
	}

	// Revenue lives on the payment store, not the ledger.
	err := r.db.GetContext(ctx2, &stats.TotalRevenue, `
		SELECT COALESCE(SUM(final_amount), 0)::float8
		FROM payment_transactions
		WHERE status = 'completed'
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: revenue stats", ErrInternal)
	}

	return &stats, nil
}

func (r *LedgerRepository) DailyStats(ctx context.Context, days int) ([]DailyStat, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if days <= 0 {
		days = 30
	}

	type paymentRow struct {
		Date             string  `db:"date"`
		Revenue          float64 `db:"revenue"`
		TransactionCount int     `db:"transaction_count"`
	}
	var paymentRows []paymentRow
	err := r.db.SelectContext(ctx2, &paymentRows, `
		SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS date,
		       COALESCE(SUM(final_amount), 0)::float8 AS revenue,
		       COUNT(*) AS transaction_count
		FROM payment_transactions
		WHERE status = 'completed'
		  AND created_at >= NOW() - make_interval(days => $1)
		GROUP BY 1
	`, days)
	if err != nil {
		return nil, fmt.Errorf("%w: payment daily stats", ErrInternal)
	}

	type ledgerRow struct {
		Date          string `db:"date"`
		CreditsIssued int    `db:"credits_issued"`
		CreditsUsed   int    `db:"credits_used"`
	}
	var ledgerRows []ledgerRow
	err = r.db.SelectContext(ctx2, &ledgerRows, `
		SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS date,
		       COALESCE(SUM(CASE WHEN type IN ('purchase', 'bonus') THEN amount ELSE 0 END), 0) AS credits_issued,
		       COALESCE(SUM(CASE WHEN type = 'usage' THEN -amount ELSE 0 END), 0) AS credits_used
		FROM credit_transactions
		WHERE created_at >= NOW() - make_interval(days => $1)
		GROUP BY 1
	`, days)
	if err != nil {
		return nil, fmt.Errorf("%w: ledger daily stats", ErrInternal)
	}

	buckets := make(map[string]*DailyStat)
	for _, p := range paymentRows {
		buckets[p.Date] = &DailyStat{
			Date:             p.Date,
			Revenue:          p.Revenue,
			TransactionCount: p.TransactionCount,
		}
	}
	for _, l := range ledgerRows {
		b, ok := buckets[l.Date]
		if !ok {
			b = &DailyStat{Date: l.Date}
			buckets[l.Date] = b
		}
		b.CreditsIssued = l.CreditsIssued
		b.CreditsUsed = l.CreditsUsed
	}

	dates := make([]string, 0, len(buckets))
	for d := range buckets {
		dates = append(dates, d)
	}
	// Reverse-chronological, newest bucket first
	sortDescending(dates)

	stats := make([]DailyStat, 0, len(dates))
	for _, d := range dates {
		stats = append(stats, *buckets[d])
	}
	return stats, nil
}

func (r *LedgerRepository) PopularPackages(ctx context.Context, days, limit int) ([]PopularPackage, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if days <= 0 {
		days = 30
	}
	if limit <= 0 {
		limit = 5
	}

	packages := make([]PopularPackage, 0)
	err := r.db.SelectContext(ctx2, &packages, `
		SELECT package_id, COUNT(*) AS purchase_count
		FROM payment_transactions
		WHERE status = 'completed'
		  AND created_at >= NOW() - make_interval(days => $1)
		GROUP BY package_id
		ORDER BY purchase_count DESC
		LIMIT $2
	`, days, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: popular packages", ErrInternal)
	}
	return packages, nil
}

func (r *LedgerRepository) LedgerSum(ctx context.Context, userID string) (int, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var sum int
	err := r.db.GetContext(ctx2, &sum, `
		SELECT COALESCE(SUM(amount), 0)
		FROM credit_transactions
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: ledger sum", ErrInternal)
	}
	return sum, nil
}

func (r *LedgerRepository) RepairBalance(ctx context.Context, userID string) (int, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var repaired int
	err := r.db.GetContext(ctx2, &repaired, `
		UPDATE users u
		SET credits = GREATEST(COALESCE((
			SELECT SUM(amount) FROM credit_transactions WHERE user_id = u.id
		), 0), 0),
		    updated_at = NOW()
		WHERE u.id = $1
		RETURNING credits
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("%w: repair balance", ErrInternal)
	}
	return repaired, nil
}

func nullableJSON(m Metadata) interface{} {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}

// sortDescending sorts date strings newest first; YYYY-MM-DD compares
// lexicographically.
func sortDescending(dates []string) {
	for i := 0; i < len(dates)-1; i++ {
		for j := i + 1; j < len(dates); j++ {
			if dates[i] < dates[j] {
				dates[i], dates[j] = dates[j], dates[i]
			}
		}
	}
}
