package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/granada-os/credits-api/internal/domain/user"
	"github.com/granada-os/credits-api/internal/pkg/response"
	"github.com/granada-os/credits-api/internal/pkg/validator"
)

// Handler handles the normalized payment-flow HTTP surface
type Handler struct {
	service *Service
}

// NewHandler creates payment handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Success handles POST /payment-flow/success
func (h *Handler) Success(w http.ResponseWriter, r *http.Request) {
	var req SuccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	result, err := h.service.RecordSuccess(r.Context(), req.Callback())
	if err != nil {
		writeReconcileError(w, err)
		return
	}

	response.OK(w, SuccessResponse{
		Success:       true,
		CreditsAdded:  result.CreditsAdded,
		ReceiptData:   result.Receipt,
		TransactionID: result.TransactionID,
	})
}

// Failure handles POST /payment-flow/failure
func (h *Handler) Failure(w http.ResponseWriter, r *http.Request) {
	var req FailureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	result, err := h.service.RecordFailure(r.Context(), req.Callback(), req.ErrorMessage)
	if err != nil {
		writeReconcileError(w, err)
		return
	}

	response.OK(w, FailureResponse{
		Success:      true,
		RetryCount:   result.RetryCount,
		ErrorMessage: req.ErrorMessage,
	})
}

// History handles GET /payment-flow/history/{userID}
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	payments, ledger, err := h.service.History(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to load payment history")
		response.InternalError(w, "failed to get payment history")
		return
	}

	response.OK(w, HistoryResponse{
		Success:        true,
		Transactions:   payments,
		CreditsHistory: ledger,
	})
}

// Credits handles GET /payment-flow/credits/{userID}
func (h *Handler) Credits(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	credits, err := h.service.Credits(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			response.NotFound(w, "user not found")
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("failed to load user credits")
		response.InternalError(w, "failed to get credits")
		return
	}

	response.OK(w, CreditsResponse{Success: true, Credits: credits})
}

// Routes returns the payment-flow router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/success", h.Success)
	r.Post("/failure", h.Failure)
	r.Get("/history/{userID}", h.History)
	r.Get("/credits/{userID}", h.Credits)
	return r
}

func writeReconcileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingUserID), errors.Is(err, ErrMissingPackageID):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, err.Error())
	}
}
