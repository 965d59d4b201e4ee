package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const queryTimeout = 3 * time.Second

// Repository defines payment data access
type Repository interface {
	// InsertTx appends a payment row within an external transaction.
	InsertTx(ctx context.Context, tx *sqlx.Tx, t *Transaction) error
	// IncrementCreditsTx applies a relative balance increment, creating the
	// user row for guest checkouts. Runs inside the reconciliation
	// transaction.
	IncrementCreditsTx(ctx context.Context, tx *sqlx.Tx, userID string, credits int) error
	// CountFailedTx counts failed attempts for a (user, package) pair within
	// an external transaction.
	CountFailedTx(ctx context.Context, tx *sqlx.Tx, userID, packageID string) (int, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Transaction, error)
	GetPackage(ctx context.Context, id string) (*Package, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates payment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InsertTx(ctx context.Context, tx *sqlx.Tx, t *Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO payment_transactions (
			id, user_id, package_id, payment_method, original_amount, final_amount,
			currency, credits_added, status, transaction_id, processor_type,
			failure_reason, processor_response
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		t.ID, t.UserID, t.PackageID, t.PaymentMethod, t.OriginalAmount, t.FinalAmount,
		t.Currency, t.CreditsAdded, t.Status, t.TransactionID, t.ProcessorType,
		t.FailureReason, nullableJSON(t.ProcessorResponse),
	)
	if err != nil {
		return fmt.Errorf("%w: insert payment row", ErrInternal)
	}
	return nil
}

func (r *repository) IncrementCreditsTx(ctx context.Context, tx *sqlx.Tx, userID string, credits int) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, credits, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET credits = users.credits + EXCLUDED.credits, updated_at = NOW()
	`, userID, credits)
	if err != nil {
		return fmt.Errorf("%w: increment user credits", ErrInternal)
	}
	return nil
}

func (r *repository) CountFailedTx(ctx context.Context, tx *sqlx.Tx, userID, packageID string) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		SELECT COUNT(*)
		FROM payment_transactions
		WHERE user_id = $1 AND package_id = $2 AND status = 'failed'
	`, userID, packageID)
	if err != nil {
		return 0, fmt.Errorf("%w: count failed attempts", ErrInternal)
	}
	return count, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Transaction, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 50
	}

	transactions := make([]Transaction, 0)
	err := r.db.SelectContext(ctx2, &transactions, `
		SELECT id, user_id, package_id, payment_method, original_amount, final_amount,
		       currency, credits_added, status, transaction_id, processor_type,
		       failure_reason, processor_response, created_at
		FROM payment_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: list payments", ErrInternal)
	}
	return transactions, nil
}

func (r *repository) GetPackage(ctx context.Context, id string) (*Package, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var pkg Package
	err := r.db.GetContext(ctx2, &pkg, `
		SELECT id, name, credits, price, active
		FROM credit_packages
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: get package", ErrInternal)
	}
	return &pkg, nil
}

func nullableJSON(p ProcessorResponse) interface{} {
	if len(p) == 0 {
		return nil
	}
	return []byte(p)
}
