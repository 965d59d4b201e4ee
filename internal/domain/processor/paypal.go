package processor

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/granada-os/credits-api/internal/domain/payment"
)

// PayPalPayload is the typed shape of a PayPal redirect callback. The order
// id is PayPal's own identifier; transactionId arrives on capture callbacks.
type PayPalPayload struct {
	OrderID       string                  `json:"orderId" validate:"required"`
	TransactionID string                  `json:"transactionId"`
	PackageID     string                  `json:"packageId"`
	Amount        *decimal.Decimal        `json:"amount"`
	Currency      string                  `json:"currency" validate:"currency"`
	PayerEmail    string                  `json:"payerEmail" validate:"omitempty,email"`
	PayerName     string                  `json:"payerName"`
	UserID        string                  `json:"userId"`
	Customer      payment.CustomerPayload `json:"customer"`
	ErrorMessage  string                  `json:"errorMessage"`
}

type paypalFields struct {
	OrderID     string    `json:"orderId"`
	CaptureID   string    `json:"captureId,omitempty"`
	PayerEmail  string    `json:"payerEmail,omitempty"`
	ProcessedAt time.Time `json:"processedAt"`
}

// PayPalAdapter translates PayPal callbacks.
type PayPalAdapter struct {
	reconciler Reconciler
}

// NewPayPalAdapter creates the PayPal adapter
func NewPayPalAdapter(reconciler Reconciler) *PayPalAdapter {
	return &PayPalAdapter{reconciler: reconciler}
}

func (a *PayPalAdapter) callback(p PayPalPayload) payment.Callback {
	// Capture id wins when present; the order id still lands in the stored
	// provider fields either way.
	txID := p.TransactionID
	if txID == "" {
		txID = p.OrderID
	}

	customer := customerFrom(p.Customer)
	if customer.Email == "" {
		customer.Email = p.PayerEmail
	}
	if customer.Name == "" {
		customer.Name = p.PayerName
	}

	return payment.Callback{
		TransactionID: txID,
		PackageID:     p.PackageID,
		Amount:        zeroIfNil(p.Amount),
		Currency:      p.Currency,
		PaymentMethod: "PayPal",
		Processor:     payment.ProcessorPayPal,
		UserID:        p.UserID,
		Customer:      customer,
		ProviderFields: marshalFields(paypalFields{
			OrderID:     p.OrderID,
			CaptureID:   p.TransactionID,
			PayerEmail:  p.PayerEmail,
			ProcessedAt: time.Now().UTC(),
		}),
	}
}

// Success records a successful PayPal payment
func (a *PayPalAdapter) Success(ctx context.Context, p PayPalPayload) (*payment.SuccessResult, error) {
	return a.reconciler.RecordSuccess(ctx, a.callback(p))
}

// Failure records a failed PayPal payment
func (a *PayPalAdapter) Failure(ctx context.Context, p PayPalPayload) (*payment.FailureResult, error) {
	return a.reconciler.RecordFailure(ctx, a.callback(p), p.ErrorMessage)
}
