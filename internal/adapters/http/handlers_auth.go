package http

import (
	"net/http"

	"github.com/scribeworks/notes-service/internal/application"
)

const refreshCookieName = "refresh_token"

// setRefreshCookie delivers the refresh token as an HttpOnly cookie so
// browser scripts never see it.
func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/auth/v1",
		MaxAge:   int(h.refreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteNoneMode,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth/v1",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteNoneMode,
	})
}

func refreshTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(refreshCookieName); err == nil {
		return c.Value
	}
	return ""
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "register", err)
		return
	}

	res, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "register", err)
		return
	}

	h.setRefreshCookie(w, res.Tokens.RefreshToken)
	writeSuccess(w, http.StatusCreated, map[string]any{
		"user_id":      res.UserID,
		"username":     res.Username,
		"access_token": res.Tokens.AccessToken,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}
	// A cookie from an earlier login marks the session this device is
	// replacing.
	req.PriorRefreshToken = refreshTokenFromRequest(r)
	req.IPAddress = readIP(r)
	req.UserAgent = r.UserAgent()

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}

	h.setRefreshCookie(w, res.Tokens.RefreshToken)
	writeSuccess(w, http.StatusOK, map[string]any{
		"user_id":      res.UserID,
		"access_token": res.Tokens.AccessToken,
	})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	token := refreshTokenFromRequest(r)
	// The presented cookie is cleared unconditionally before validation; only
	// a successful rotation writes a replacement.
	h.clearRefreshCookie(w)
	if token == "" {
		writeMissingAuthError(r.Context(), w, "refresh")
		return
	}

	res, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		writeMappedError(r.Context(), w, "refresh", err)
		return
	}

	h.setRefreshCookie(w, res.Tokens.RefreshToken)
	writeSuccess(w, http.StatusOK, map[string]any{
		"access_token": res.Tokens.AccessToken,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token := refreshTokenFromRequest(r)
	h.clearRefreshCookie(w)

	if err := h.service.Logout(r.Context(), token); err != nil {
		writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *Handler) logoutAll(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromContext(r.Context())
	if !ok {
		writeMissingAuthError(r.Context(), w, "logout_all")
		return
	}
	h.clearRefreshCookie(w)

	if err := h.service.LogoutAll(r.Context(), auth); err != nil {
		writeMappedError(r.Context(), w, "logout_all", err)
		return
	}
	writeMessage(w, http.StatusOK, "All sessions cleared")
}

func (h *Handler) loginHistory(w http.ResponseWriter, r *http.Request) {
	auth, ok := authFromContext(r.Context())
	if !ok {
		writeMissingAuthError(r.Context(), w, "login_history")
		return
	}
	res, err := h.service.LoginHistory(r.Context(), auth, pageFromQuery(r))
	if err != nil {
		writeMappedError(r.Context(), w, "login_history", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}
