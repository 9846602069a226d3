package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/flashdeck/internal/account"
	"github.com/dmitrymomot/flashdeck/internal/auth"
	"github.com/dmitrymomot/flashdeck/internal/session"
	"github.com/dmitrymomot/flashdeck/pkg/logger"
)

// Handler exposes the authentication flow over HTTP.
type Handler struct {
	flow     *auth.Flow
	accounts *account.Service
	store    account.Store
	sessions *session.Manager
	log      *slog.Logger
}

// New creates the HTTP handler.
func New(flow *auth.Flow, accounts *account.Service, store account.Store, sessions *session.Manager, log *slog.Logger) *Handler {
	return &Handler{
		flow:     flow,
		accounts: accounts,
		store:    store,
		sessions: sessions,
		log:      log,
	}
}

// Routes mounts the authentication endpoints. loginLimiter rate limits the
// credential-guessing surfaces; pass nil to disable limiting (tests).
func (h *Handler) Routes(loginLimiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Every visitor gets a session before any handler runs, so the login
	// flow always has an anonymous session to elevate.
	r.Use(h.sessions.EnsureSession)

	passthrough := func(next http.Handler) http.Handler { return next }
	if loginLimiter == nil {
		loginLimiter = passthrough
	}

	r.Post("/register", h.register)
	r.With(loginLimiter).Post("/login", h.login)

	r.Route("/mfa", func(r chi.Router) {
		r.Use(h.sessions.RequirePendingAuth)
		r.Get("/setup", h.mfaSetup)
		r.With(loginLimiter).Post("/verify", h.mfaVerify)
	})

	r.Post("/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.RequireAuthenticated)
		r.Get("/me", h.me)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.sessions.RequireRole(string(account.RoleAdministrator)))
		r.Delete("/accounts/{id}", h.deleteAccount)
	})

	return r
}

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type accountResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
}

func toAccountResponse(acc *account.Account) accountResponse {
	return accountResponse{
		ID:        acc.ID.String(),
		Username:  acc.Username,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
		Email:     acc.Email,
		Role:      string(acc.Role),
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acc, err := h.accounts.Register(r.Context(), account.RegisterParams{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrUsernameTaken):
			writeError(w, http.StatusConflict, "username already taken")
		case errors.Is(err, account.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "username and password are required")
		default:
			h.log.ErrorContext(r.Context(), "registration failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(acc))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	MFARequired        bool `json:"mfa_required"`
	EnrollmentRequired bool `json:"enrollment_required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.flow.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.ErrorContext(r.Context(), "login failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	err = h.sessions.BeginMFA(r.Context(), w, r, session.PendingAuth{
		AccountID: result.Account.ID,
		Username:  result.Account.Username,
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "session elevation failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		MFARequired:        true,
		EnrollmentRequired: result.NeedsEnrollment,
	})
}

type mfaSetupResponse struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	QRCode string `json:"qr_code"`
}

func (h *Handler) mfaSetup(w http.ResponseWriter, r *http.Request) {
	pending, ok := session.PendingFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	enrollment, err := h.flow.EnsureEnrollment(r.Context(), pending.AccountID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "enrollment failed",
			logger.Error(err), logger.AccountID(pending.AccountID.String()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, mfaSetupResponse{
		Secret: enrollment.Secret,
		URI:    enrollment.URI,
		QRCode: enrollment.QRCode,
	})
}

type mfaVerifyRequest struct {
	Code string `json:"code"`
}

func (h *Handler) mfaVerify(w http.ResponseWriter, r *http.Request) {
	pending, ok := session.PendingFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req mfaVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acc, err := h.flow.VerifyCode(r.Context(), pending.AccountID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCode):
			// The session keeps its pending state so the user can retry.
			writeError(w, http.StatusUnauthorized, "invalid code")
		case errors.Is(err, auth.ErrNotEnrolled):
			writeError(w, http.StatusConflict, "mfa enrollment required")
		default:
			h.log.ErrorContext(r.Context(), "mfa verification failed", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	err = h.sessions.Authenticate(r.Context(), w, r, session.Identity{
		AccountID: acc.ID,
		Username:  acc.Username,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
		Email:     acc.Email,
		Role:      string(acc.Role),
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "session authentication failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.log.ErrorContext(r.Context(), "logout failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity, ok := session.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	acc, err := h.store.FindByID(r.Context(), identity.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.log.ErrorContext(r.Context(), "account lookup failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		h.log.ErrorContext(r.Context(), "account deletion failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
