package http

import (
	"net/http"

	"github.com/aussiebroadwan/habits/internal/habits/service"
	"github.com/aussiebroadwan/habits/pkg/httpx"
	"github.com/aussiebroadwan/habits/pkg/slogx"
)

type AuthHandler struct {
	UserService *service.UserService
}

// Signup creates an account. It does not log the user in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, r, errBadBody)
		return
	}

	user, err := h.UserService.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, SignupResponse{Success: true, UserID: user.ID})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, r, errBadBody)
		return
	}

	sess, err := h.UserService.Login(r.Context(), req.Email, req.Password, req.Remember)
	if err != nil {
		log.Info("login failed", "err", err)
		writeError(w, r, err)
		return
	}

	log.Info("user logged in", "user_id", sess.UserID, "remember", sess.Remember)
	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		UserID:    sess.UserID,
		Remember:  sess.Remember,
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
	})
}
