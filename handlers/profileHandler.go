package handlers

import (
	"log"
	"net/http"
	"time"

	"policypath/models"
	"policypath/services"

	"github.com/gorilla/mux"
)

type ProfileHandler struct {
	progression *services.ProgressionService
}

func NewProfileHandler(progression *services.ProgressionService) *ProfileHandler {
	return &ProfileHandler{progression: progression}
}

func (h *ProfileHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/profile", h.GetProfile).Methods("GET")
	router.HandleFunc("/login", h.Login).Methods("POST")
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.progression.GetProfile(ownerFromRequest(r))
	if err != nil {
		log.Printf("[ERROR] Failed to get profile: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Login credits the daily login bonus. Calling it twice on the same
// calendar day is a no-op on the second call.
func (h *ProfileHandler) Login(w http.ResponseWriter, r *http.Request) {
	profile, err := h.progression.Credit(ownerFromRequest(r), models.EventLogin, time.Now())
	if err != nil {
		log.Printf("[ERROR] Login credit failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to record login")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}
