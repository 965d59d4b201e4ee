package processor

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/granada-os/credits-api/internal/domain/payment"
)

// StripePayload is the typed shape of a Stripe redirect callback. Malformed
// payloads fail validation before anything is stored.
type StripePayload struct {
	PaymentIntentID string                  `json:"paymentIntentId" validate:"required"`
	PackageID       string                  `json:"packageId"`
	Amount          *decimal.Decimal        `json:"amount"`
	Currency        string                  `json:"currency" validate:"currency"`
	CardType        string                  `json:"cardType"`
	CardLast4       string                  `json:"cardLast4" validate:"omitempty,len=4"`
	UserID          string                  `json:"userId"`
	Customer        payment.CustomerPayload `json:"customer"`
	ErrorMessage    string                  `json:"errorMessage"`
}

// stripeFields is what gets stored opaquely on the transaction row.
type stripeFields struct {
	PaymentIntentID string    `json:"paymentIntentId"`
	CardBrand       string    `json:"cardBrand,omitempty"`
	CardLast4       string    `json:"cardLast4,omitempty"`
	ProcessedAt     time.Time `json:"processedAt"`
}

// StripeAdapter translates Stripe callbacks.
type StripeAdapter struct {
	reconciler Reconciler
}

// NewStripeAdapter creates the Stripe adapter
func NewStripeAdapter(reconciler Reconciler) *StripeAdapter {
	return &StripeAdapter{reconciler: reconciler}
}

func (a *StripeAdapter) callback(p StripePayload) payment.Callback {
	method := "Credit Card"
	if p.CardType != "" {
		method = p.CardType
	}
	return payment.Callback{
		TransactionID: p.PaymentIntentID,
		PackageID:     p.PackageID,
		Amount:        zeroIfNil(p.Amount),
		Currency:      p.Currency,
		PaymentMethod: method,
		Processor:     payment.ProcessorStripe,
		UserID:        p.UserID,
		Customer:      customerFrom(p.Customer),
		ProviderFields: marshalFields(stripeFields{
			PaymentIntentID: p.PaymentIntentID,
			CardBrand:       p.CardType,
			CardLast4:       p.CardLast4,
			ProcessedAt:     time.Now().UTC(),
		}),
	}
}

// Success records a successful Stripe payment
func (a *StripeAdapter) Success(ctx context.Context, p StripePayload) (*payment.SuccessResult, error) {
	return a.reconciler.RecordSuccess(ctx, a.callback(p))
}

// Failure records a failed Stripe payment
func (a *StripeAdapter) Failure(ctx context.Context, p StripePayload) (*payment.FailureResult, error) {
	return a.reconciler.RecordFailure(ctx, a.callback(p), p.ErrorMessage)
}
