package handlers

import (
	"net/http"
	"strconv"

	"lexica-backend/internal/middleware"
	"lexica-backend/internal/services"
)

type ProgressionHandler struct {
	progression *services.ProgressionService
}

func NewProgressionHandler(progression *services.ProgressionService) *ProgressionHandler {
	return &ProgressionHandler{progression: progression}
}

func (h *ProgressionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	prog, err := h.progression.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, prog)
}

func (h *ProgressionHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	sessions, err := h.progression.RecentSessions(r.Context(), userID, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
}
