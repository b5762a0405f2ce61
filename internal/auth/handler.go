package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pennyledger/pennyledger/internal/observability"
	"github.com/pennyledger/pennyledger/internal/platform/httpx"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	metrics   *observability.Metrics
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		metrics:   metrics,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
	Login  string `json:"login"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.metrics.ObserveLogin("rejected")
		httpx.Error(w, http.StatusUnauthorized, "missing login or password")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.metrics.ObserveLogin("rejected")
		httpx.Error(w, http.StatusUnauthorized, "missing login or password")
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		h.metrics.ObserveLogin("denied")
		if h.logger != nil {
			h.logger.Info("login denied", slog.String("login", req.Login))
		}
		httpx.RespondError(w, err)
		return
	}

	h.metrics.ObserveLogin("granted")
	httpx.Success(w, http.StatusOK, "authenticated", loginResponse{
		Token:  token,
		UserID: user.ID,
		Login:  user.Login,
	})
}
