package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"policypath/models"
	"policypath/services"

	"github.com/gorilla/mux"
)

type ChatHandler struct {
	session *services.SessionService
}

func NewChatHandler(session *services.SessionService) *ChatHandler {
	return &ChatHandler{session: session}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chat", h.Chat).Methods("POST")
	router.HandleFunc("/history", h.GetHistory).Methods("GET")
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received chat request")

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode chat request JSON: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	response, err := h.session.Turn(r.Context(), ownerFromRequest(r), req.Query)
	if err != nil {
		log.Printf("[ERROR] Chat turn failed: %v", err)
		switch {
		case errors.Is(err, services.ErrEmptyQuery):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrTurnInFlight):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadGateway, "The tutor is unreachable right now, please retry")
		}
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.session.GetHistory(ownerFromRequest(r))
	if err != nil {
		log.Printf("[ERROR] Failed to get history: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}

	writeJSON(w, http.StatusOK, history)
}
