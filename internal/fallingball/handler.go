package fallingball

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

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	policyID, err := strconv.ParseInt(vars["policyID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid policy ID"})
		return
	}

	level := models.Level(r.URL.Query().Get("level"))
	set, err := h.service.EnsureSet(r.Context(), policyID, level)
	if err != nil {
		writeServiceError(w, err, "generate falling ball set")
		return
	}

	writeJSON(w, http.StatusOK, set)
}

func (h *Handler) GetSet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid set ID"})
		return
	}

	set, err := h.service.GetSet(id)
	if err != nil {
		writeServiceError(w, err, "get falling ball set")
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

	var req models.StartFallingBallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.StartAttempt(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err, "start falling ball attempt")
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

	var req models.SubmitFallingBallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.SubmitAnswer(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err, "submit falling ball answer")
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

	var req models.FinishFallingBallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.FinishAttempt(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err, "finish falling ball attempt")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	policyID, _ := strconv.ParseInt(query.Get("policy_id"), 10, 64)
	level := models.Level(query.Get("level"))
	if level != "" && !models.ValidLevels[level] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid level"})
		return
	}
	limit := intQueryParam(query, "limit", 20)

	entries, err := h.service.Leaderboard(policyID, level, limit)
	if err != nil {
		writeServiceError(w, err, "falling ball leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
	case errors.Is(err, models.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid input"})
	case errors.Is(err, models.ErrAlreadyCompleted):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Attempt already completed"})
	default:
		log.Printf("[fallingball] %s failed: %v", op, err)
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
