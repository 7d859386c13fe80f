package admin

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/policy-play/backend/internal/generator"
	"github.com/policy-play/backend/internal/models"
)

type Handler struct {
	store     *Store
	generator *generator.Generator
}

func NewHandler(store *Store, gen *generator.Generator) *Handler {
	return &Handler{store: store, generator: gen}
}

func (h *Handler) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.Summary()
	if err != nil {
		log.Printf("[admin] analytics summary failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// AnalyzePolicy reviews a draft policy text for contradictions,
// ambiguities, and overlaps before it is published.
func (h *Handler) AnalyzePolicy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	analysis, err := h.generator.AnalyzeDraft(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "A non-empty 'text' field is required"})
			return
		}
		var fe *generator.FormatError
		if errors.As(err, &fe) {
			log.Printf("[admin] draft analysis returned unusable content: %v", err)
			writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Analysis returned unusable content"})
			return
		}
		log.Printf("[admin] draft analysis failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
