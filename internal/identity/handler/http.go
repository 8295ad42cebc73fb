// Package handler serves the /auth and /account HTTP endpoints.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"todo-api/internal/account/domain"
	"todo-api/internal/identity/service"
	"todo-api/internal/server/httpx"
	"todo-api/internal/server/middleware"
)

// Handler serves authentication and account endpoints.
type Handler struct {
	auth *service.AuthService
	log  *slog.Logger
}

// NewHandler returns a Handler. log may be nil.
func NewHandler(auth *service.AuthService, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{auth: auth, log: log}
}

// writeAccountError maps service errors shared by register and account update.
func (h *Handler) writeAccountError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.JSON(w, http.StatusBadRequest, map[string]any{
			"message":        "Error 400: Invalid fields",
			"invalid_fields": verr.Fields,
		})
	case errors.Is(err, domain.ErrUsernameTaken):
		httpx.Message(w, http.StatusConflict, "Error 409: Username already taken")
	case errors.Is(err, domain.ErrEmailTaken):
		httpx.Message(w, http.StatusConflict, "Error 409: Email already taken")
	case errors.Is(err, service.ErrAccountNotFound):
		httpx.Message(w, http.StatusNotFound, "Error 404: Account not found")
	default:
		httpx.Internal(w, r, h.log, err)
	}
}

// Login handles POST /auth/login with user_identifier and password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !httpx.BindForm(w, r) {
		return
	}
	if missing := httpx.MissingKeys(r, "user_identifier", "password"); len(missing) > 0 {
		httpx.Message(w, http.StatusBadRequest, "Missing fields: "+strings.Join(missing, ", "))
		return
	}
	res, err := h.auth.Login(r.Context(), r.PostForm.Get("user_identifier"), r.PostForm.Get("password"))
	if errors.Is(err, service.ErrInvalidCredentials) {
		httpx.Message(w, http.StatusUnauthorized, "Error 401: Invalid credentials")
		return
	}
	if err != nil {
		httpx.Internal(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"token": res.Token})
}

// Register handles POST /auth/register with username, password and email.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if !httpx.BindForm(w, r) {
		return
	}
	if missing := httpx.MissingKeys(r, "username", "password", "email"); len(missing) > 0 {
		httpx.Message(w, http.StatusBadRequest, "Error 400: Missing body parameters: "+strings.Join(missing, ", "))
		return
	}
	res, err := h.auth.Register(r.Context(),
		r.PostForm.Get("username"), r.PostForm.Get("password"), r.PostForm.Get("email"))
	if err != nil {
		h.writeAccountError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{
		"token":   res.Token,
		"message": "Successfully registered",
	})
}

// identity returns the authenticated account and token, writing a 401 when absent.
func identity(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	accountID, ok := middleware.GetAccountID(r.Context())
	token, tokOK := middleware.GetToken(r.Context())
	if !ok || !tokOK {
		httpx.Unauthorized(w)
		return 0, "", false
	}
	return accountID, token, true
}

// Refresh handles POST /auth/refresh. The presented token is returned as is.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	accountID, token, ok := identity(w, r)
	if !ok {
		return
	}
	res := h.auth.Refresh(r.Context(), accountID, token)
	httpx.JSON(w, http.StatusOK, map[string]string{"token": res.Token})
}

// VerifyToken handles POST /auth/token/verify. Reaching it means Authenticate accepted the token.
func (h *Handler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	httpx.Message(w, http.StatusOK, "Token is valid")
}

// Logout handles POST /auth/logout by revoking the presented token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	accountID, token, ok := identity(w, r)
	if !ok {
		return
	}
	if err := h.auth.Logout(r.Context(), accountID, token); err != nil {
		httpx.Internal(w, r, h.log, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Successfully logged out")
}

// GetAccount handles GET /account.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, _, ok := identity(w, r)
	if !ok {
		return
	}
	acc, err := h.auth.GetAccount(r.Context(), accountID)
	if err != nil {
		h.writeAccountError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"account": acc})
}

// UpdateAccount handles PUT /account with any of username, email and password.
// A form with none of them is answered with 304.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	accountID, _, ok := identity(w, r)
	if !ok {
		return
	}
	if !httpx.BindForm(w, r) {
		return
	}
	var upd service.AccountUpdate
	if v, ok := httpx.FormValue(r, "username"); ok {
		upd.Username = &v
	}
	if v, ok := httpx.FormValue(r, "email"); ok {
		upd.Email = &v
	}
	if _, ok := r.PostForm["password"]; ok {
		v := r.PostForm.Get("password")
		upd.Password = &v
	}
	if upd.Empty() {
		httpx.JSON(w, http.StatusNotModified, nil)
		return
	}
	acc, err := h.auth.UpdateAccount(r.Context(), accountID, upd)
	if err != nil {
		h.writeAccountError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Successfully updated account",
		"account": acc,
	})
}

// DeleteAccount handles DELETE /account. The presented token is revoked with it.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID, token, ok := identity(w, r)
	if !ok {
		return
	}
	if err := h.auth.DeleteAccount(r.Context(), accountID, token); err != nil {
		h.writeAccountError(w, r, err)
		return
	}
	httpx.Message(w, http.StatusOK, "Successfully deleted account")
}
