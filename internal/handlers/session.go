package handlers

import (
	"encoding/json"
	"net/http"

	"lexica-backend/internal/middleware"
	"lexica-backend/internal/models"
	"lexica-backend/internal/services"
)

// SessionHandler covers the practice loop: fetch a question batch, record
// answers one by one, then commit the finished session.
type SessionHandler struct {
	selector    *services.SelectorService
	learning    *services.LearningService
	progression *services.ProgressionService
}

func NewSessionHandler(selector *services.SelectorService, learning *services.LearningService, progression *services.ProgressionService) *SessionHandler {
	return &SessionHandler{selector: selector, learning: learning, progression: progression}
}

func (h *SessionHandler) Questions(w http.ResponseWriter, r *http.Request) {
	var req models.SelectQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	batch, err := h.selector.SelectQuestions(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, batch)
}

func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var sub models.AnswerSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	result, err := h.learning.RecordAnswer(r.Context(), userID, sub)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req models.CompleteSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	outcome, err := h.progression.CompleteSession(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}
