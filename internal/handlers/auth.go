package handlers

import (
	"errors"
	"net/http"

	"feedbackhub-backend/internal/auth"

	"go.uber.org/zap"
)

type AuthHandler struct {
	gate   *auth.Gate
	logger *zap.SugaredLogger
}

func NewAuthHandler(gate *auth.Gate, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		gate:   gate,
		logger: logger,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// --- POST /api/login ---

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	cred, err := h.gate.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrAuthentication) {
			h.logger.Warnw("admin login failed", "remote_addr", r.RemoteAddr)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
			return
		}
		h.logger.Errorw("error issuing token", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	h.logger.Infow("admin logged in", "expires_at", cred.ExpiresAt)
	writeJSON(w, http.StatusOK, cred)
}
