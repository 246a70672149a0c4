package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

const sessionValidity = 24 * time.Hour

// SessionIssuer mints the opaque session tokens the middleware verifies.
type SessionIssuer interface {
	IssueToken(ownerID string, validity time.Duration) (string, error)
}

type AuthHandler struct {
	issuer SessionIssuer
}

func NewAuthHandler(issuer SessionIssuer) *AuthHandler {
	return &AuthHandler{issuer: issuer}
}

func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/session", h.StartSession).Methods("POST")
}

type startSessionRequest struct {
	OwnerID string `json:"owner_id"`
}

type startSessionResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode session request JSON: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		writeError(w, http.StatusBadRequest, "owner_id is required")
		return
	}

	token, err := h.issuer.IssueToken(ownerID, sessionValidity)
	if err != nil {
		log.Printf("[ERROR] Failed to issue session token: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	log.Printf("[INFO] Session started for owner %s", ownerID)
	writeJSON(w, http.StatusOK, startSessionResponse{Token: token})
}
