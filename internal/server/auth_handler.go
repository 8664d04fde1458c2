package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/minhngo/storefront/internal/auth"
	"github.com/minhngo/storefront/internal/middleware"
	"github.com/minhngo/storefront/internal/models"
	"github.com/minhngo/storefront/internal/storage"
)

// AuthHandler serves registration, login and account lookups.
type AuthHandler struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         *storage.UserStore
	logger        *slog.Logger
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users *storage.UserStore, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
	Token   string       `json:"token"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	user, err := h.authenticator.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		h.logger.Warn("Registration failed", "email", req.Email, "error", err)
		respondError(w, err)
		return
	}

	if req.Phone != "" {
		profile := &models.UserProfile{UserID: user.ID, Phone: req.Phone}
		if err := h.users.SaveProfile(r.Context(), profile); err != nil {
			// The account exists; losing the phone number is not worth
			// failing the registration over.
			h.logger.Warn("Failed to save profile", "user_id", user.ID, "error", err)
		}
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		h.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		respondError(w, err)
		return
	}

	h.logger.Info("User registered", "user_id", user.ID, "email", user.Email)
	writeJSON(w, http.StatusCreated, sessionResponse{
		Message: "Registration successful",
		User:    user,
		Token:   token,
	})
}

// Login authenticates a user and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, auth.ErrInvalidCredentials)
		return
	}

	user, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("Login failed", "email", req.Email, "error", err)
		respondError(w, auth.ErrInvalidCredentials)
		return
	}

	if err := h.users.TouchLastLogin(r.Context(), user.ID); err != nil {
		h.logger.Warn("Failed to record last login", "user_id", user.ID, "error", err)
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		h.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		respondError(w, err)
		return
	}

	h.logger.Info("User logged in", "user_id", user.ID, "email", user.Email)
	writeJSON(w, http.StatusOK, sessionResponse{
		Message: "Login successful",
		User:    user,
		Token:   token,
	})
}

// Logout acknowledges a logout. Bearer tokens are stateless, so the
// client discards the token; nothing is invalidated server-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Logout", "user_id", middleware.GetUserID(r.Context()))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Me returns the authenticated user's account and profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load user", "user_id", userID, "error", err)
		respondError(w, err)
		return
	}
	if user == nil {
		// Token is valid but the account is gone.
		respondError(w, auth.ErrInvalidToken)
		return
	}

	phone := ""
	if profile, err := h.users.GetProfile(r.Context(), userID); err == nil && profile != nil {
		phone = profile.Phone
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         user.ID,
		"name":       user.Name,
		"email":      user.Email,
		"phone":      phone,
		"created_at": user.CreatedAt,
		"last_login": user.LastLogin,
	})
}
