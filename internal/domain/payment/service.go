package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/granada-os/credits-api/internal/domain/credit"
	"github.com/granada-os/credits-api/internal/domain/user"
)

// SuccessResult is what a successful reconciliation returns to the caller.
type SuccessResult struct {
	TransactionID string
	CreditsAdded  int
	Receipt       *Receipt
}

// FailureResult acknowledges a recorded failure. RetryCount is informational
// telemetry, not an enforced limit.
type FailureResult struct {
	TransactionID string
	RetryCount    int
}

// Service turns processor callbacks into durable ledger and balance state.
// The three success writes (payment row, ledger row, balance increment) share
// one transaction: no interleaving can apply credits without the matching
// audit rows, or vice versa.
type Service struct {
	db      *sqlx.DB
	repo    Repository
	ledger  credit.Repository
	users   user.Repository
	catalog *Catalog
	policy  DefaultPolicy
}

// NewService creates the reconciliation service
func NewService(db *sqlx.DB, policy DefaultPolicy) *Service {
	repo := NewRepository(db)
	return &Service{
		db:      db,
		repo:    repo,
		ledger:  credit.NewRepository(db),
		users:   user.NewRepository(db),
		catalog: NewCatalog(repo),
		policy:  policy,
	}
}

// NewServiceWithDeps wires explicit dependencies (tests).
func NewServiceWithDeps(db *sqlx.DB, repo Repository, ledger credit.Repository, users user.Repository, policy DefaultPolicy) *Service {
	return &Service{
		db:      db,
		repo:    repo,
		ledger:  ledger,
		users:   users,
		catalog: NewCatalog(repo),
		policy:  policy,
	}
}

// RecordSuccess resolves the package grant, persists the payment and ledger
// rows, and credits the user, all atomically.
func (s *Service) RecordSuccess(ctx context.Context, cb Callback) (*SuccessResult, error) {
	if err := s.policy.Apply(&cb); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cb.TransactionID) == "" {
		cb.TransactionID = generateTransactionID()
	}

	pkg := s.catalog.Resolve(ctx, cb.PackageID)
	creditsToAdd := pkg.Credits

	paymentRow := &Transaction{
		UserID:            cb.UserID,
		PackageID:         cb.PackageID,
		PaymentMethod:     cb.PaymentMethod,
		OriginalAmount:    cb.Amount,
		FinalAmount:       cb.Amount,
		Currency:          cb.Currency,
		CreditsAdded:      creditsToAdd,
		Status:            StatusCompleted,
		TransactionID:     cb.TransactionID,
		ProcessorType:     cb.Processor,
		ProcessorResponse: ProcessorResponse(cb.ProviderFields),
	}

	metadata, _ := json.Marshal(map[string]interface{}{
		"pricePaid":       cb.Amount,
		"currency":        cb.Currency,
		"paymentMethod":   cb.PaymentMethod,
		"transactionId":   cb.TransactionID,
		"orderTrackingId": cb.OrderTrackingID,
	})
	ledgerRow := &credit.Transaction{
		UserID:      cb.UserID,
		Type:        credit.TxTypePurchase,
		Amount:      creditsToAdd,
		Description: fmt.Sprintf("Purchased %s package", pkg.Name),
		PackageID:   &cb.PackageID,
		Metadata:    credit.Metadata(metadata),
		Status:      credit.StatusCompleted,
	}

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.InsertTx(ctx, tx, paymentRow); err != nil {
			return err
		}
		if err := s.ledger.InsertTx(ctx, tx, ledgerRow); err != nil {
			return err
		}
		return s.repo.IncrementCreditsTx(ctx, tx, cb.UserID, creditsToAdd)
	})
	if err != nil {
		log.Error().Err(err).
			Str("user_id", cb.UserID).
			Str("package_id", cb.PackageID).
			Str("transaction_id", cb.TransactionID).
			Str("processor", string(cb.Processor)).
			Msg("payment reconciliation failed")
		return nil, ErrProcessFailed
	}

	log.Info().
		Str("user_id", cb.UserID).
		Str("package_id", cb.PackageID).
		Str("transaction_id", cb.TransactionID).
		Int("credits_added", creditsToAdd).
		Msg("payment reconciled")

	return &SuccessResult{
		TransactionID: cb.TransactionID,
		CreditsAdded:  creditsToAdd,
		Receipt: &Receipt{
			TransactionID: cb.TransactionID,
			PackageName:   pkg.Name,
			Amount:        cb.Amount,
			Currency:      cb.Currency,
			Credits:       creditsToAdd,
			PaymentMethod: cb.PaymentMethod,
			CustomerName:  cb.Customer.Name,
			CustomerEmail: cb.Customer.Email,
			CustomerPhone: cb.Customer.Phone,
			Date:          time.Now().UTC(),
			Issuer:        ReceiptIssuer,
		},
	}, nil
}

// RecordFailure persists a failed attempt. Credits and the ledger are never
// touched; duplicate failure callbacks record duplicate rows (audit trail).
// The returned retry count excludes the row just inserted.
func (s *Service) RecordFailure(ctx context.Context, cb Callback, errorMessage string) (*FailureResult, error) {
	if err := s.policy.Apply(&cb); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cb.TransactionID) == "" {
		cb.TransactionID = generateTransactionID()
	}
	if strings.TrimSpace(errorMessage) == "" {
		errorMessage = "payment failed"
	}

	row := &Transaction{
		UserID:            cb.UserID,
		PackageID:         cb.PackageID,
		PaymentMethod:     cb.PaymentMethod,
		OriginalAmount:    cb.Amount,
		FinalAmount:       cb.Amount,
		Currency:          cb.Currency,
		CreditsAdded:      0,
		Status:            StatusFailed,
		TransactionID:     cb.TransactionID,
		ProcessorType:     cb.Processor,
		FailureReason:     &errorMessage,
		ProcessorResponse: ProcessorResponse(cb.ProviderFields),
	}

	var retryCount int
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		prior, err := s.repo.CountFailedTx(ctx, tx, cb.UserID, cb.PackageID)
		if err != nil {
			return err
		}
		retryCount = prior
		return s.repo.InsertTx(ctx, tx, row)
	})
	if err != nil {
		log.Error().Err(err).
			Str("user_id", cb.UserID).
			Str("package_id", cb.PackageID).
			Str("transaction_id", cb.TransactionID).
			Msg("failed to record payment failure")
		return nil, ErrRecordFailed
	}

	log.Warn().
		Str("user_id", cb.UserID).
		Str("package_id", cb.PackageID).
		Str("reason", errorMessage).
		Int("retry_count", retryCount).
		Msg("payment failure recorded")

	return &FailureResult{TransactionID: cb.TransactionID, RetryCount: retryCount}, nil
}

// History returns the raw payment and ledger history for a user.
func (s *Service) History(ctx context.Context, userID string) ([]Transaction, []credit.Transaction, error) {
	payments, err := s.repo.ListByUser(ctx, userID, 50, 0)
	if err != nil {
		return nil, nil, err
	}
	ledger, err := s.ledger.List(ctx, userID, credit.Pagination{Limit: 50})
	if err != nil {
		return nil, nil, err
	}
	return payments, ledger, nil
}

// Credits returns the raw cached credits field for a user.
func (s *Service) Credits(ctx context.Context, userID string) (int, error) {
	return s.users.GetCredits(ctx, userID)
}

func (s *Service) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin tx", ErrInternal)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit tx", ErrInternal)
	}
	return nil
}

// generateTransactionID builds the human-readable id shown on receipts.
func generateTransactionID() string {
	return fmt.Sprintf("TXN-%d-%s", time.Now().Unix(), strings.ToUpper(uuid.New().String()[:8]))
}
