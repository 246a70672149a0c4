package handlers

import (
	"log"
	"net/http"
	"strings"

	"policypath/services"

	"github.com/gorilla/mux"
)

type VaultHandler struct {
	vault *services.VaultService
}

func NewVaultHandler(vault *services.VaultService) *VaultHandler {
	return &VaultHandler{vault: vault}
}

func (h *VaultHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/vault", h.GetEntries).Methods("GET")
	router.HandleFunc("/vault/search", h.SearchEntries).Methods("GET")
}

func (h *VaultHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.vault.GetEntries(ownerFromRequest(r))
	if err != nil {
		log.Printf("[ERROR] Failed to get vault entries: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve vault")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *VaultHandler) SearchEntries(w http.ResponseWriter, r *http.Request) {
	var terms []string
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		terms = strings.Fields(q)
	}

	entries, err := h.vault.SearchEntries(ownerFromRequest(r), terms)
	if err != nil {
		log.Printf("[ERROR] Vault search failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to search vault")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}
