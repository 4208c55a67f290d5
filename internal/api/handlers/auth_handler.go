package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dmarceta/meet-accounts-be/internal/services"
)

// AuthHandler handles registration, login and token lifecycle requests.
type AuthHandler struct {
	userSvc  services.UserServiceProvider
	tokenSvc services.TokenServiceProvider
	resetSvc services.ResetServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userSvc services.UserServiceProvider, tokenSvc services.TokenServiceProvider, resetSvc services.ResetServiceProvider) *AuthHandler {
	return &AuthHandler{userSvc: userSvc, tokenSvc: tokenSvc, resetSvc: resetSvc}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" validate:"required"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
}

// LoginPayload defines the structure for login requests. The identifier may
// arrive under either key; both are accepted.
type LoginPayload struct {
	Username        string `json:"username"`
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password" validate:"required"`
}

// TokenPayload carries a refresh token for the refresh and logout endpoints.
type TokenPayload struct {
	Refresh string `json:"refresh" validate:"required"`
}

// ResetRequestPayload defines the structure for password reset requests.
type ResetRequestPayload struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetConfirmPayload defines the structure for password reset confirmation.
type ResetConfirmPayload struct {
	UID             string `json:"uid" validate:"required"`
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// Register handles new user registration. Tokens are deliberately not issued
// here; the client logs in afterwards.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	user, err := h.userSvc.Register(services.RegisterInput{
		Username:  payload.Username,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Password:  payload.Password,
	})
	if err != nil {
		var vErr *services.ValidationError
		if !errors.As(err, &vErr) {
			log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		}
		writeServiceError(w, err)
		return
	}

	log.Info().Str("username", user.Username).Msg("New user registered")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully! Please login to get your access tokens.",
		"user": map[string]string{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Login handles user authentication and token pair issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}
	identifier := payload.UsernameOrEmail
	if identifier == "" {
		identifier = payload.Username
	}
	if identifier == "" {
		writeFieldErrors(w, map[string][]string{"username_or_email": {"This field is required."}})
		return
	}

	user, err := h.userSvc.AuthenticateUser(identifier, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrAuthentication) {
			log.Warn().Str("identifier", identifier).Msg("Failed authentication attempt")
		}
		writeServiceError(w, err)
		return
	}

	pair, err := h.tokenSvc.Issue(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue tokens")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access":  pair.Access,
		"refresh": pair.Refresh,
		"user":    user.Summary(),
	})
}

// Refresh rotates a refresh token, returning a new pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload TokenPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	pair, err := h.tokenSvc.Refresh(payload.Refresh)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access":  pair.Access,
		"refresh": pair.Refresh,
	})
}

// Logout revokes the presented refresh token. The route itself sits behind
// the access-token middleware.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var payload TokenPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	if err := h.tokenSvc.Revoke(payload.Refresh); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logout successful."})
}

// PasswordReset accepts a reset request. The response is identical whether or
// not the email maps to an account.
func (h *AuthHandler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	var payload ResetRequestPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	if err := h.resetSvc.Request(payload.Email); err != nil {
		log.Error().Err(err).Msg("Failed to process password reset request")
		writeDetail(w, http.StatusInternalServerError, "Unable to process password reset request")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If an account with that email exists, a password reset link has been sent.",
	})
}

// PasswordResetConfirm completes a reset with the emailed token.
func (h *AuthHandler) PasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var payload ResetConfirmPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	err := h.resetSvc.Confirm(payload.UID, payload.Token, payload.NewPassword, payload.ConfirmPassword)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			writeDetail(w, http.StatusUnauthorized, "The reset link is invalid or has expired.")
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password has been reset successfully."})
}
