// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dukalabs/duka-server/internal/core"
	"github.com/dukalabs/duka-server/internal/middleware"
)

type Handler struct {
	service    *Service
	validator  *validator.Validate
	sessionTTL time.Duration
	secure     bool
}

func NewHandler(service *Service, sessionTTL time.Duration, secure bool) *Handler {
	return &Handler{
		service:    service,
		validator:  validator.New(validator.WithRequiredStructEnabled()),
		sessionTTL: sessionTTL,
		secure:     secure,
	}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if req.Email == "" && req.Phone == "" {
		core.BadRequest(w, "email or phone is required")
		return
	}
	if req.Email != "" && !core.IsValidEmail(req.Email) {
		core.BadRequest(w, "invalid email format")
		return
	}
	if req.Phone != "" && !core.IsValidPhone(req.Phone) {
		core.BadRequest(w, "invalid phone format")
		return
	}

	resp, signed, err := h.service.Signup(req)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateContact) {
			core.JSONError(w, core.DuplicateContactError())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	setSessionCookie(
		w, middleware.CookieUserSession, signed, h.sessionTTL, h.secure,
	)
	core.Created(w, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	if req.Identifier == "" && req.Email == "" && req.Phone == "" {
		core.BadRequest(w, "email or phone is required")
		return
	}

	resp, signed, err := h.service.Login(req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(w, core.InvalidCredentialsError())
			return
		}
		core.InternalServerError(w, err)
		return
	}

	setSessionCookie(
		w, middleware.CookieUserSession, signed, h.sessionTTL, h.secure,
	)
	core.OK(w, resp)
}

// Logout clears the session cookie unconditionally. There is no
// server-side session to revoke, the token simply stops arriving.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, middleware.CookieUserSession, h.secure)
	core.NoContent(w)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.UserClaims(r.Context())
	if claims == nil {
		core.JSONError(w, core.UnauthorizedError(""))
		return
	}

	resp, err := h.service.CurrentUser(claims.Subject)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.JSONError(w, core.NotFoundError("account"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, signed, err := h.service.AdminLogin(req, middleware.ClientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			core.JSONError(w, core.InvalidCredentialsError())
		case errors.Is(err, ErrAdminNotConfigured):
			core.JSONError(
				w,
				core.UnauthorizedError("admin account not configured"),
			)
		case errors.Is(err, core.ErrAccountLocked):
			core.JSONError(w, err)
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	setSessionCookie(
		w, middleware.CookieAdminSession, signed, h.sessionTTL, h.secure,
	)
	core.OK(w, resp)
}

func (h *Handler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, middleware.CookieAdminSession, h.secure)
	core.NoContent(w)
}

func (h *Handler) AdminMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.AdminClaims(r.Context())
	if claims == nil {
		core.JSONError(w, core.UnauthorizedError(""))
		return
	}

	resp, err := h.service.CurrentAdmin(claims.Subject)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.JSONError(w, core.NotFoundError("admin account"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}
