// Package handler wires the registration flow to HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"evidgate/internal/registration/models"
	"evidgate/internal/registration/service"
	"evidgate/internal/routes"
	dErrors "evidgate/pkg/domain-errors"
	"evidgate/pkg/platform/httputil"
	"evidgate/pkg/requestcontext"
)

// Service defines the registration operations the transport exposes.
type Service interface {
	Connect(ctx context.Context, sess *models.Session) (*service.Result, error)
	CheckStatus(ctx context.Context, sess *models.Session) (*service.Result, error)
	Register(ctx context.Context, sess *models.Session, form *models.RegistrationForm) (*service.Result, error)
	Logout(ctx context.Context, sess *models.Session) (*service.Result, error)
	Invalidate(ctx context.Context, sess *models.Session, accounts []string) (*service.Result, error)
	ResolveRole(ctx context.Context, address string) (models.Role, error)
}

// Handler wires registration endpoints to the state machine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts registration endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/session/connect", h.HandleConnect)
	r.Get("/session/status/{address}", h.HandleStatus)
	r.Post("/session/logout", h.HandleLogout)
	r.Post("/session/invalidate", h.HandleInvalidate)
	r.Post("/register", h.HandleRegister)
	r.Get("/api/user/{address}", h.HandleResolveRole)
}

// sessionResponse is the wire form of a machine result.
type sessionResponse struct {
	State       models.State       `json:"state"`
	Section     models.Section     `json:"section"`
	User        *models.UserRecord `json:"user,omitempty"`
	Destination routes.Destination `json:"destination,omitempty"`
	Token       string             `json:"token,omitempty"`
	Alert       *models.Alert      `json:"alert,omitempty"`
}

func fromResult(res *service.Result) sessionResponse {
	return sessionResponse{
		State:       res.State,
		Section:     res.Section,
		User:        res.User,
		Destination: res.Destination,
		Token:       res.Token,
		Alert:       res.Alert,
	}
}

// HandleConnect handles POST /session/connect requests.
func (h *Handler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	sess := &models.Session{}
	res, err := h.service.Connect(ctx, sess)
	if err != nil {
		h.logger.ErrorContext(ctx, "wallet connect failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "wallet connected",
		"request_id", requestcontext.RequestID(ctx),
		"address", sess.Address,
		"state", res.State,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, fromResult(res))
}

// HandleStatus handles GET /session/status/{address} requests.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	address, err := walletAddressParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sess := &models.Session{Address: address}
	res, err := h.service.CheckStatus(ctx, sess)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromResult(res))
}

// registerRequest carries a registration submission. The wallet address comes
// from the session token when one is presented, otherwise from the body.
type registerRequest struct {
	WalletAddress string          `json:"wallet_address,omitempty"`
	FullName      string          `json:"full_name"`
	Role          models.RoleCode `json:"role"`
	Department    string          `json:"department,omitempty"`
	Jurisdiction  string          `json:"jurisdiction,omitempty"`
	BadgeNumber   string          `json:"badge_number,omitempty"`
}

// HandleRegister handles POST /register requests.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var req registerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	address := requestcontext.WalletAddress(ctx)
	if address == "" {
		address = strings.TrimSpace(req.WalletAddress)
	}
	if err := validateAddress(address); err != nil {
		httputil.WriteError(w, err)
		return
	}

	sess := &models.Session{Address: address, State: models.StateUnregistered}
	form := &models.RegistrationForm{
		FullName:     req.FullName,
		Role:         req.Role,
		Department:   req.Department,
		Jurisdiction: req.Jurisdiction,
		BadgeNumber:  req.BadgeNumber,
	}

	res, err := h.service.Register(ctx, sess, form)
	if err != nil {
		h.logger.WarnContext(ctx, "registration rejected",
			"request_id", requestID,
			"address", address,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "user registered",
		"request_id", requestID,
		"address", address,
		"role", res.User.Role,
	)
	httputil.WriteJSON(w, http.StatusCreated, fromResult(res))
}

// HandleLogout handles POST /session/logout requests.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess := &models.Session{Address: requestcontext.WalletAddress(ctx)}
	res, err := h.service.Logout(ctx, sess)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromResult(res))
}

// invalidateRequest carries the provider's current account list after an
// account or network change.
type invalidateRequest struct {
	Accounts []string `json:"accounts"`
}

// HandleInvalidate handles POST /session/invalidate requests.
func (h *Handler) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req invalidateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	sess := &models.Session{Address: requestcontext.WalletAddress(ctx)}
	res, err := h.service.Invalidate(ctx, sess, req.Accounts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromResult(res))
}

// roleResponse answers the dashboard role lookup.
type roleResponse struct {
	WalletAddress string             `json:"wallet_address"`
	Role          models.Role        `json:"role"`
	Dashboard     routes.Destination `json:"dashboard"`
}

// HandleResolveRole handles GET /api/user/{address} requests.
func (h *Handler) HandleResolveRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	address, err := walletAddressParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	role, err := h.service.ResolveRole(ctx, address)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, roleResponse{
		WalletAddress: address,
		Role:          role,
		Dashboard:     routes.ForRole(role),
	})
}

func walletAddressParam(r *http.Request) (string, error) {
	address := chi.URLParam(r, "address")
	if err := validateAddress(address); err != nil {
		return "", err
	}
	return address, nil
}

func validateAddress(address string) error {
	if len(address) != 42 || !strings.HasPrefix(address, "0x") {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid wallet address")
	}
	for _, c := range address[2:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return dErrors.New(dErrors.CodeInvalidInput, "invalid wallet address")
		}
	}
	return nil
}
