package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-profile-api/internal/application/session"
	jwtinfra "github.com/go-profile-api/internal/infrastructure/jwt"
	"github.com/go-profile-api/internal/transport/http/middleware"
)

// SessionHandler handles login/logout endpoints.
type SessionHandler struct {
	svc      session.Service
	verifier *jwtinfra.Provider
}

func NewSessionHandler(svc session.Service, verifier *jwtinfra.Provider) *SessionHandler {
	return &SessionHandler{svc: svc, verifier: verifier}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req session.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Bearer: result.Bearer, Session: result.Session})
}

// Logout destroys the caller's session when a valid bearer is presented
// and reports success either way: a missing or dead session is already
// logged out.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") && h.verifier != nil {
		if claims, err := h.verifier.Verify(strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
			_ = h.svc.Logout(r.Context(), claims.SessionID)
		}
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}

func (h *SessionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sess, err := h.svc.GetCurrent(r.Context(), claims.SessionID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{Session: sess})
}
