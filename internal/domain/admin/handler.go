package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/granada-os/credits-api/internal/pkg/response"
	"github.com/granada-os/credits-api/internal/pkg/validator"
)

// Handler handles admin auth HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates admin handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Admin   *Admin `json:"admin"`
}

// Login handles POST /admin/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ValidationError(w, details)
		return
	}

	token, admin, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Unauthorized(w, "invalid credentials")
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("admin login failed")
		response.InternalError(w, "login failed")
		return
	}

	response.OK(w, loginResponse{Success: true, Token: token, Admin: admin})
}

// Routes returns the admin auth router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/auth/login", h.Login)
	return r
}
