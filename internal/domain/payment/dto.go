package payment

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/granada-os/credits-api/internal/domain/credit"
)

// CustomerPayload mirrors the frontend's customer object.
type CustomerPayload struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// SuccessRequest is the normalized success callback body. userId and
// packageId are required in spirit; the default policy tolerates absence
// unless strict mode is on.
type SuccessRequest struct {
	TransactionID   string          `json:"transactionId"`
	OrderTrackingID string          `json:"orderTrackingId"`
	PackageID       string          `json:"packageId"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency" validate:"currency"`
	PaymentMethod   string          `json:"paymentMethod"`
	ProcessorType   string          `json:"processorType" validate:"processor"`
	UserID          string          `json:"userId"`
	Customer        CustomerPayload `json:"customer"`
	ProviderFields  json.RawMessage `json:"providerFields,omitempty"`
}

// Callback converts the request into the service's normalized shape.
func (r SuccessRequest) Callback() Callback {
	return Callback{
		TransactionID:   r.TransactionID,
		OrderTrackingID: r.OrderTrackingID,
		PackageID:       r.PackageID,
		Amount:          r.Amount,
		Currency:        r.Currency,
		PaymentMethod:   r.PaymentMethod,
		Processor:       Processor(r.ProcessorType),
		UserID:          r.UserID,
		Customer: Customer{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
		},
		ProviderFields: r.ProviderFields,
	}
}

type SuccessResponse struct {
	Success       bool     `json:"success"`
	CreditsAdded  int      `json:"creditsAdded"`
	ReceiptData   *Receipt `json:"receiptData"`
	TransactionID string   `json:"transactionId"`
}

// FailureRequest is the normalized failure callback body.
type FailureRequest struct {
	SuccessRequest
	ErrorMessage string `json:"errorMessage"`
}

type FailureResponse struct {
	Success      bool   `json:"success"`
	RetryCount   int    `json:"retryCount"`
	ErrorMessage string `json:"errorMessage"`
}

type HistoryResponse struct {
	Success        bool                 `json:"success"`
	Transactions   []Transaction        `json:"transactions"`
	CreditsHistory []credit.Transaction `json:"creditsHistory"`
}

type CreditsResponse struct {
	Success bool `json:"success"`
	Credits int  `json:"credits"`
}
