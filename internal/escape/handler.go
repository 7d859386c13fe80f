package escape

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/policy-play/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

// Generate builds (or rebuilds with ?force=true) the room set for a
// policy at a level.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	policyID, err := strconv.ParseInt(vars["policyID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid policy ID"})
		return
	}

	level := models.Level(r.URL.Query().Get("level"))
	force := r.URL.Query().Get("force") == "true"

	set, err := h.service.EnsureRoomSet(r.Context(), policyID, level, force)
	if err != nil {
		writeServiceError(w, err, "generate escape rooms")
		return
	}

	writeJSON(w, http.StatusOK, set)
}

func (h *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	policyID, err := strconv.ParseInt(vars["policyID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid policy ID"})
		return
	}
	level := models.Level(vars["level"])
	if !models.ValidLevels[level] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "level must be 'beginner', 'intermediate', or 'expert'"})
		return
	}

	set, err := h.service.store.GetRoomSet(policyID, level)
	if err != nil {
		writeServiceError(w, err, "get escape rooms")
		return
	}

	writeJSON(w, http.StatusOK, set)
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.StartEscapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.StartAttempt(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err, "start escape attempt")
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	vars := mux.Vars(r)
	attemptID, err := strconv.ParseInt(vars["attemptID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid attempt ID"})
		return
	}

	var req models.SubmitRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.SubmitRoom(r.Context(), attemptID, userID, req)
	if err != nil {
		writeServiceError(w, err, "submit escape room")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Finish(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	vars := mux.Vars(r)
	attemptID, err := strconv.ParseInt(vars["attemptID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid attempt ID"})
		return
	}

	var req models.FinishEscapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.FinishAttempt(r.Context(), attemptID, userID, req)
	if err != nil {
		writeServiceError(w, err, "finish escape attempt")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	level := models.Level(r.URL.Query().Get("level"))
	if level != "" && !models.ValidLevels[level] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid level"})
		return
	}
	limit := intQueryParam(r.URL.Query(), "limit", 20)

	entries, err := h.service.Leaderboard(level, limit)
	if err != nil {
		writeServiceError(w, err, "escape leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// writeServiceError maps sentinel errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
	case errors.Is(err, models.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid input"})
	case errors.Is(err, models.ErrAlreadyCompleted):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Attempt or room already completed"})
	case errors.Is(err, models.ErrNoRules):
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: "Policy has no rules to build from"})
	default:
		log.Printf("[escape] %s failed: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
