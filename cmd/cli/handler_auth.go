package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/database"
	"github.com/Lambton-Digital-Transformation-Lab/blue-water-anglers/pkg/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	User      UserInfo  `json:"user,omitempty"`
	Message   string    `json:"message,omitempty"`
}

type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (rm *RouteManager) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := rm.dbManager.ValidateUser(r.Context(), req.Username, req.Password)
	if errors.Is(err, database.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, LoginResponse{
			Success: false,
			Message: "Invalid username or password",
		})
		return
	}
	if err != nil {
		writeQueryError(w, "validate credentials", err)
		return
	}

	rm.writeToken(w, user)
}

func (rm *RouteManager) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Tokens are stateless; the client discards its copy
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (rm *RouteManager) handleMe(w http.ResponseWriter, r *http.Request) {
	claimed := GetUserFromContext(r.Context())
	if claimed == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := rm.dbManager.GetUserByID(r.Context(), claimed.ID)
	if errors.Is(err, database.ErrInvalidCredentials) {
		writeMessage(w, http.StatusUnauthorized, "User no longer exists")
		return
	}
	if err != nil {
		writeQueryError(w, "load user", err)
		return
	}

	writeJSON(w, http.StatusOK, UserInfo{
		ID:       user.ID.String(),
		Username: user.Username,
	})
}

func (rm *RouteManager) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rm.writeToken(w, user)
}

func (rm *RouteManager) writeToken(w http.ResponseWriter, user *models.User) {
	token, expiresAt, err := rm.GenerateJWT(user)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, LoginResponse{
			Success: false,
			Message: "Failed to generate token",
		})
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserInfo{
			ID:       user.ID.String(),
			Username: user.Username,
		},
	})
}
