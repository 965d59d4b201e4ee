package processor

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/granada-os/credits-api/internal/domain/payment"
)

// PesaPalPayload is the typed shape of a PesaPal IPN/redirect callback.
type PesaPalPayload struct {
	OrderTrackingID   string                  `json:"orderTrackingId" validate:"required"`
	MerchantReference string                  `json:"merchantReference"`
	PackageID         string                  `json:"packageId"`
	Amount            *decimal.Decimal        `json:"amount"`
	Currency          string                  `json:"currency" validate:"currency"`
	PhoneNumber       string                  `json:"phoneNumber"`
	UserID            string                  `json:"userId"`
	Customer          payment.CustomerPayload `json:"customer"`
	ErrorMessage      string                  `json:"errorMessage"`
}

type pesapalFields struct {
	OrderTrackingID   string    `json:"orderTrackingId"`
	MerchantReference string    `json:"merchantReference,omitempty"`
	PhoneNumber       string    `json:"phoneNumber,omitempty"`
	ProcessedAt       time.Time `json:"processedAt"`
}

// PesaPalAdapter translates PesaPal callbacks.
type PesaPalAdapter struct {
	reconciler Reconciler
}

// NewPesaPalAdapter creates the PesaPal adapter
func NewPesaPalAdapter(reconciler Reconciler) *PesaPalAdapter {
	return &PesaPalAdapter{reconciler: reconciler}
}

func (a *PesaPalAdapter) callback(p PesaPalPayload) payment.Callback {
	customer := customerFrom(p.Customer)
	if customer.Phone == "" {
		customer.Phone = p.PhoneNumber
	}

	txID := p.MerchantReference
	if txID == "" {
		txID = p.OrderTrackingID
	}

	return payment.Callback{
		TransactionID:   txID,
		OrderTrackingID: p.OrderTrackingID,
		PackageID:       p.PackageID,
		Amount:          zeroIfNil(p.Amount),
		Currency:        p.Currency,
		PaymentMethod:   "Mobile Money",
		Processor:       payment.ProcessorPesaPal,
		UserID:          p.UserID,
		Customer:        customer,
		ProviderFields: marshalFields(pesapalFields{
			OrderTrackingID:   p.OrderTrackingID,
			MerchantReference: p.MerchantReference,
			PhoneNumber:       p.PhoneNumber,
			ProcessedAt:       time.Now().UTC(),
		}),
	}
}

// Success records a successful PesaPal payment
func (a *PesaPalAdapter) Success(ctx context.Context, p PesaPalPayload) (*payment.SuccessResult, error) {
	return a.reconciler.RecordSuccess(ctx, a.callback(p))
}

// Failure records a failed PesaPal payment
func (a *PesaPalAdapter) Failure(ctx context.Context, p PesaPalPayload) (*payment.FailureResult, error) {
	return a.reconciler.RecordFailure(ctx, a.callback(p), p.ErrorMessage)
}
