package processor

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/granada-os/credits-api/internal/domain/payment"
	"github.com/granada-os/credits-api/internal/pkg/response"
	"github.com/granada-os/credits-api/internal/pkg/validator"
)

// Handler exposes the per-provider callback routes. Each route validates the
// provider's typed payload, translates it, and returns the reconciliation
// result verbatim plus the provider's own identifier.
type Handler struct {
	stripe  *StripeAdapter
	paypal  *PayPalAdapter
	pesapal *PesaPalAdapter
}

// NewHandler creates processor handler
func NewHandler(reconciler Reconciler) *Handler {
	return &Handler{
		stripe:  NewStripeAdapter(reconciler),
		paypal:  NewPayPalAdapter(reconciler),
		pesapal: NewPesaPalAdapter(reconciler),
	}
}

type stripeSuccessResponse struct {
	Success         bool             `json:"success"`
	CreditsAdded    int              `json:"creditsAdded"`
	ReceiptData     *payment.Receipt `json:"receiptData"`
	TransactionID   string           `json:"transactionId"`
	PaymentIntentID string           `json:"paymentIntentId"`
}

type paypalSuccessResponse struct {
	Success       bool             `json:"success"`
	CreditsAdded  int              `json:"creditsAdded"`
	ReceiptData   *payment.Receipt `json:"receiptData"`
	TransactionID string           `json:"transactionId"`
	OrderID       string           `json:"orderId"`
}

type pesapalSuccessResponse struct {
	Success         bool             `json:"success"`
	CreditsAdded    int              `json:"creditsAdded"`
	ReceiptData     *payment.Receipt `json:"receiptData"`
	TransactionID   string           `json:"transactionId"`
	OrderTrackingID string           `json:"orderTrackingId"`
}

type failureResponse struct {
	Success      bool   `json:"success"`
	RetryCount   int    `json:"retryCount"`
	ErrorMessage string `json:"errorMessage"`
}

// StripeSuccess handles POST /stripe-flow/success
func (h *Handler) StripeSuccess(w http.ResponseWriter, r *http.Request) {
	var p StripePayload
	if !decodeAndValidate(w, r, &p) {
		return
	}
	result, err := h.stripe.Success(r.Context(), p)
	if err != nil {
		writeAdapterError(w, err)
		return
	}
	response.OK(w, stripeSuccessResponse{
		Success:         true,
		CreditsAdded:    result.CreditsAdded,
		ReceiptData:     result.Receipt,
		TransactionID:   result.TransactionID,
		PaymentIntentID: p.PaymentIntentID,
	})
}

// StripeFailure handles POST /stripe-flow/failure
func (h *Handler) StripeFailure(w http.ResponseWriter, r *http.Request) {
	var p StripePayload
	if !decodeAndValidate(w, r, &p) {
		return
	}
	result, err := h.stripe.Failure(r.Context(), p)
	if err != nil {
		writeAdapterError(w, err)
		return
	}
	response.OK(w, failureResponse{Success: true, RetryCount: result.RetryCount, ErrorMessage: p.ErrorMessage})
}

// PayPalSuccess handles POST /paypal-flow/success
func (h *Handler) PayPalSuccess(w http.ResponseWriter, r *http.Request) {
	var p PayPalPayload
	if !decodeAndValidate(w, r, &p) {
		return
	}
	result, err := h.paypal.Success(r.Context(), p)
	if err != nil {
		writeAdapterError(w, err)
		return
	}
	response.OK(w, paypalSuccessResponse{
		Success:       true,
		CreditsAdded:  result.CreditsAdded,
		ReceiptData:   result.Receipt,
		TransactionID: result.TransactionID,
		OrderID:       p.OrderID,
	})
}

// PayPalFailure handles POST /paypal-flow/failure
func (h *Handler) PayPalFailure(w http.ResponseWriter, r *http.Request) {
	var p PayPalPayload
	if !decodeAndValidate(w, r, &p) {
		return
	}
	result, err := h.paypal.Failure(r.Context(), p)
	if err != nil {
		writeAdapterError(w, err)
		return
	}
	response.OK(w, failureResponse{Success: true, RetryCount: result.RetryCount, ErrorMessage: p.ErrorMessage})
}

// PesaPalSuccess handles POST /pesapal-flow/success
func (h *Handler) PesaPalSuccess(w http.ResponseWriter, r *http.Request) {
	var p PesaPalPayload
	if !decodeAndValidate(w, r, &p) {
		return
	}
	result, err := h.pesapal.Success(r.Context(), p)
	if err != nil {
		writeAdapterError(w, err)
		return
	}
	response.OK(w, pesapalSuccessResponse{
		Success:         true,
		CreditsAdded:    result.CreditsAdded,
		ReceiptData:     result.Receipt,
		TransactionID:   result.TransactionID,
		OrderTrackingID: p.OrderTrackingID,
	})
}

// PesaPalFailure handles POST /pesapal-flow/failure
func (h *Handler) PesaPalFailure(w http.ResponseWriter, r *http.Request) {
	var p PesaPalPayload
	if !decodeAndValidate(w, r, &p) {
		return
	}
	result, err := h.pesapal.Failure(r.Context(), p)
	if err != nil {
		writeAdapterError(w, err)
		return
	}
	response.OK(w, failureResponse{Success: true, RetryCount: result.RetryCount, ErrorMessage: p.ErrorMessage})
}

// StripeRoutes returns the /stripe-flow router
func (h *Handler) StripeRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/success", h.StripeSuccess)
	r.Post("/failure", h.StripeFailure)
	return r
}

// PayPalRoutes returns the /paypal-flow router
func (h *Handler) PayPalRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/success", h.PayPalSuccess)
	r.Post("/failure", h.PayPalFailure)
	return r
}

// PesaPalRoutes returns the /pesapal-flow router
func (h *Handler) PesaPalRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/success", h.PesaPalSuccess)
	r.Post("/failure", h.PesaPalFailure)
	return r
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.BadRequest(w, "invalid request body")
		return false
	}
	if details := validator.Validate(v); details != nil {
		response.ValidationError(w, details)
		return false
	}
	return true
}

func writeAdapterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payment.ErrMissingUserID), errors.Is(err, payment.ErrMissingPackageID):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, err.Error())
	}
}
