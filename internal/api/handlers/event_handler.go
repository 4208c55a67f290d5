package handlers

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/dmarceta/meet-accounts-be/internal/auth"
	"github.com/dmarceta/meet-accounts-be/internal/services"
)

// EventHandler exposes the audit log to staff users.
type EventHandler struct {
	userSvc  services.UserServiceProvider
	eventSvc services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(userSvc services.UserServiceProvider, eventSvc services.EventServiceProvider) *EventHandler {
	return &EventHandler{userSvc: userSvc, eventSvc: eventSvc}
}

// Recent returns the most recent audit events. Staff only.
func (h *EventHandler) Recent(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.userSvc.GetUserByID(claims.Subject)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !user.IsStaff {
		writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events, err := h.eventSvc.GetRecentEvents(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load recent events")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}
