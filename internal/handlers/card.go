package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"lexica-backend/internal/middleware"
	"lexica-backend/internal/models"
	"lexica-backend/internal/repository"
)

const classificationQueue = "queue:card-classification"

type CardHandler struct {
	deckRepo *repository.DeckRepo
	cardRepo *repository.CardRepo
	redis    *redis.Client
}

func NewCardHandler(deckRepo *repository.DeckRepo, cardRepo *repository.CardRepo, redisClient *redis.Client) *CardHandler {
	return &CardHandler{deckRepo: deckRepo, cardRepo: cardRepo, redis: redisClient}
}

// Create imports a batch of cards into a deck and enqueues each for
// difficulty classification.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	deckID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid deck ID", r))
		return
	}

	if !h.checkDeckOwned(w, r, deckID) {
		return
	}

	var req models.CreateCardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if len(req.Cards) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "At least one card is required", r))
		return
	}

	cards := make([]models.Card, 0, len(req.Cards))
	for _, nc := range req.Cards {
		if nc.Front == "" || nc.Back == "" {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR",
				"Every card needs non-empty front and back text", r))
			return
		}
		cards = append(cards, models.Card{Front: nc.Front, Back: nc.Back, Tags: nc.Tags})
	}

	if err := h.cardRepo.CreateCards(r.Context(), deckID, cards); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create cards", r))
		return
	}

	for _, c := range cards {
		h.enqueueClassification(r, c.ID, "import")
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"cards": cards})
}

func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	card, ok := h.ownedCard(w, r)
	if !ok {
		return
	}

	resp := map[string]interface{}{"card": card}
	if diff, err := h.cardRepo.GetDifficulty(r.Context(), card.ID); err == nil {
		resp["difficulty"] = diff
	}

	writeJSON(w, http.StatusOK, resp)
}

// Difficulty returns the classifier breakdown for a card. 404 until the
// worker (or a lazy selection pass) has scored it.
func (h *CardHandler) Difficulty(w http.ResponseWriter, r *http.Request) {
	card, ok := h.ownedCard(w, r)
	if !ok {
		return
	}

	diff, err := h.cardRepo.GetDifficulty(r.Context(), card.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Card has not been classified yet", r))
		} else {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load difficulty", r))
		}
		return
	}

	writeJSON(w, http.StatusOK, diff)
}

// Update edits card text and re-enqueues classification: the old scores no
// longer describe the card.
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	card, ok := h.ownedCard(w, r)
	if !ok {
		return
	}

	var req models.UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Front == "" || req.Back == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "front and back are required", r))
		return
	}

	card.Front = req.Front
	card.Back = req.Back
	card.Tags = req.Tags

	if err := h.cardRepo.Update(r.Context(), card); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to update card", r))
		return
	}

	h.enqueueClassification(r, card.ID, "edit")

	writeJSON(w, http.StatusOK, card)
}

func (h *CardHandler) ownedCard(w http.ResponseWriter, r *http.Request) (*models.Card, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid card ID", r))
		return nil, false
	}

	card, err := h.cardRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Card not found", r))
		} else {
			writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load card", r))
		}
		return nil, false
	}

	if !h.checkDeckOwned(w, r, card.DeckID) {
		return nil, false
	}

	return card, true
}

func (h *CardHandler) checkDeckOwned(w http.ResponseWriter, r *http.Request, deckID uuid.UUID) bool {
	deck, err := h.deckRepo.GetByID(r.Context(), deckID)
	if err != nil || deck.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Deck not found", r))
		return false
	}
	return true
}

// enqueueClassification pushes a job for the worker pool. Best effort:
// the selector classifies lazily if the queue drops a card.
func (h *CardHandler) enqueueClassification(r *http.Request, cardID uuid.UUID, reason string) {
	job := models.ClassificationJob{
		ID:         uuid.New(),
		CardID:     cardID,
		Reason:     reason,
		EnqueuedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(job)
	if err != nil {
		log.Printf("Failed to marshal classification job for card %s: %v", cardID, err)
		return
	}
	if err := h.redis.RPush(r.Context(), classificationQueue, string(data)).Err(); err != nil {
		log.Printf("Failed to enqueue classification for card %s: %v", cardID, err)
	}
}
