package payment

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status represents payment transaction status
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Processor represents a payment processor
type Processor string

const (
	ProcessorStripe  Processor = "stripe"
	ProcessorPayPal  Processor = "paypal"
	ProcessorPesaPal Processor = "pesapal"
)

// ReceiptIssuer appears on every normalized receipt.
const ReceiptIssuer = "Granada OS"

// ProcessorResponse handles NULL jsonb fields from DB
type ProcessorResponse []byte

func (p *ProcessorResponse) Scan(src any) error {
	if src == nil {
		*p = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		*p = append((*p)[0:0], v...)
	case string:
		*p = []byte(v)
	default:
		return fmt.Errorf("unsupported type: %T", src)
	}
	return nil
}

func (p ProcessorResponse) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

// Transaction is an immutable record of one processor interaction.
// transaction_id is the human-readable id shown on receipts, distinct from
// the row id.
type Transaction struct {
	ID                string            `db:"id" json:"id"`
	UserID            string            `db:"user_id" json:"userId"`
	PackageID         string            `db:"package_id" json:"packageId"`
	PaymentMethod     string            `db:"payment_method" json:"paymentMethod"`
	OriginalAmount    decimal.Decimal   `db:"original_amount" json:"originalAmount"`
	FinalAmount       decimal.Decimal   `db:"final_amount" json:"finalAmount"`
	Currency          string            `db:"currency" json:"currency"`
	CreditsAdded      int               `db:"credits_added" json:"creditsAdded"`
	Status            Status            `db:"status" json:"status"`
	TransactionID     string            `db:"transaction_id" json:"transactionId"`
	ProcessorType     Processor         `db:"processor_type" json:"processorType"`
	FailureReason     *string           `db:"failure_reason" json:"failureReason,omitempty"`
	ProcessorResponse ProcessorResponse `db:"processor_response" json:"processorResponse,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"createdAt"`
}

// Customer is the buyer identity carried on a callback.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Callback is the normalized processor callback every adapter produces.
type Callback struct {
	TransactionID   string
	OrderTrackingID string
	PackageID       string
	Amount          decimal.Decimal
	Currency        string
	PaymentMethod   string
	Processor       Processor
	UserID          string
	Customer        Customer
	// ProviderFields is the validated provider-specific payload, serialized
	// by the adapter and stored opaquely on the transaction row.
	ProviderFields json.RawMessage
}

// Receipt is the normalized, user-facing summary of a completed transaction.
type Receipt struct {
	TransactionID string          `json:"transactionId"`
	PackageName   string          `json:"packageName"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Credits       int             `json:"credits"`
	PaymentMethod string          `json:"paymentMethod"`
	CustomerName  string          `json:"customerName"`
	CustomerEmail string          `json:"customerEmail"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Date          time.Time       `json:"date"`
	Issuer        string          `json:"issuer"`
}
