package credit

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/granada-os/credits-api/internal/pkg/response"
	"github.com/granada-os/credits-api/internal/pkg/validator"
)

// Handler handles credit HTTP requests
type Handler struct {
	service Service
}

// NewHandler creates credit handler
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Balance handles GET /credits/balance?userId=
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		response.BadRequest(w, "userId is required")
		return
	}

	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to get balance")
		response.InternalError(w, "failed to get balance")
		return
	}

	response.OK(w, BalanceResponse{
		Success:        true,
		Balance:        balance.Balance,
		TotalPurchased: balance.TotalPurchased,
		TotalUsed:      balance.TotalUsed,
	})
}

// Transactions handles GET /credits/transactions?userId=&limit=&offset=
func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		response.BadRequest(w, "userId is required")
		return
	}
	limit, offset := parsePage(r, 20)

	transactions, err := h.service.GetHistory(r.Context(), userID, limit, offset)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to list transactions")
		response.InternalError(w, "failed to get transactions")
		return
	}

	response.OK(w, TransactionsResponse{Success: true, Transactions: transactions})
}

// CreateTransaction handles POST /credits/transaction (manual entry)
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	t, err := h.service.Record(r.Context(), RecordRequest{
		UserID:      req.UserID,
		Type:        TxType(req.Type),
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.NotFound(w, "user not found")
		case errors.Is(err, ErrInsufficientCredits):
			response.BadRequest(w, "insufficient credits")
		case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidType):
			response.BadRequest(w, err.Error())
		default:
			log.Error().Err(err).Str("user_id", req.UserID).Msg("failed to record transaction")
			response.InternalError(w, "failed to create transaction")
		}
		return
	}

	response.JSON(w, http.StatusCreated, CreateTransactionResponse{Success: true, Transaction: t})
}

// AdminTransactions handles GET /credits/admin/transactions
func (h *Handler) AdminTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePage(r, 50)

	filters := SearchFilters{Limit: limit, Offset: offset}
	if t := r.URL.Query().Get("type"); t != "" {
		if !TxType(t).Valid() {
			response.BadRequest(w, "invalid type filter")
			return
		}
		filters.Type = &t
	}

	transactions, stats, err := h.service.AdminTransactions(r.Context(), filters)
	if err != nil {
		log.Error().Err(err).Msg("failed to search transactions")
		response.InternalError(w, "failed to get transactions")
		return
	}

	response.OK(w, AdminTransactionsResponse{
		Success:      true,
		Transactions: transactions,
		Stats:        stats,
		Pagination:   PaginationMeta{Limit: limit, Offset: offset, Count: len(transactions)},
	})
}

// AdminAnalytics handles GET /credits/admin/analytics?days=
func (h *Handler) AdminAnalytics(w http.ResponseWriter, r *http.Request) {
	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		if v, err := strconv.Atoi(d); err == nil && v > 0 && v <= 365 {
			days = v
		}
	}

	analytics, err := h.service.Analytics(r.Context(), days)
	if err != nil {
		log.Error().Err(err).Int("days", days).Msg("failed to build analytics")
		response.InternalError(w, "failed to get analytics")
		return
	}

	response.OK(w, AnalyticsResponse{Success: true, Analytics: analytics})
}

// AdminRecompute handles POST /credits/admin/recompute/{userID}
func (h *Handler) AdminRecompute(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	result, err := h.service.Recompute(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(w, "user not found")
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("failed to recompute balance")
		response.InternalError(w, "failed to recompute balance")
		return
	}

	response.OK(w, RecomputeResponse{Success: true, Result: result})
}

// Routes returns the credit router; admin endpoints sit behind adminAuth.
func (h *Handler) Routes(adminAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/balance", h.Balance)
	r.Get("/transactions", h.Transactions)
	r.Post("/transaction", h.CreateTransaction)

	r.Group(func(r chi.Router) {
		r.Use(adminAuth)
		r.Get("/admin/transactions", h.AdminTransactions)
		r.Get("/admin/analytics", h.AdminAnalytics)
		r.Post("/admin/recompute/{userID}", h.AdminRecompute)
	})

	return r
}

func parsePage(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}
