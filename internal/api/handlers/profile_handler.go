package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dmarceta/meet-accounts-be/internal/auth"
	"github.com/dmarceta/meet-accounts-be/internal/services"
)

// ProfileHandler serves the authenticated user's profile.
type ProfileHandler struct {
	userSvc services.UserServiceProvider
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(userSvc services.UserServiceProvider) *ProfileHandler {
	return &ProfileHandler{userSvc: userSvc}
}

// ProfilePatchPayload carries a partial profile update. Absent fields are
// left untouched; username and the verification flag are not accepted here.
type ProfilePatchPayload struct {
	Email       *string `json:"email" validate:"omitempty,email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=15"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
	Location    *string `json:"location" validate:"omitempty,max=100"`
	BirthDate   *string `json:"birth_date"`
}

// Get returns the current user's profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	view, err := h.userSvc.GetProfile(claims.Subject)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.Subject).Msg("Failed to load profile")
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Update applies a partial update to the current user's profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var payload ProfilePatchPayload
	if !decodeAndValidate(w, r, &payload) {
		return
	}

	view, err := h.userSvc.UpdateProfile(claims.Subject, services.ProfilePatch{
		Email:       payload.Email,
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		PhoneNumber: payload.PhoneNumber,
		Bio:         payload.Bio,
		Location:    payload.Location,
		BirthDate:   payload.BirthDate,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	log.Info().Str("user_id", claims.Subject).Msg("Profile updated")
	writeJSON(w, http.StatusOK, view)
}
