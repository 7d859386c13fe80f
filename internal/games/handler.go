package games

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/policy-play/backend/internal/generator"
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
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	vars := mux.Vars(r)
	policyID, err := strconv.ParseInt(vars["policyID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid policy ID"})
		return
	}

	gameType := r.URL.Query().Get("type")
	if gameType == "" {
		gameType = models.GameTypeScenario
	}
	ruleIndex := intQueryParam(r.URL.Query(), "rule_index", 0)

	session, err := h.service.Generate(r.Context(), userID, policyID, gameType, ruleIndex)
	if err != nil {
		writeServiceError(w, err, "generate game")
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	vars := mux.Vars(r)
	policyID, err := strconv.ParseInt(vars["policyID"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid policy ID"})
		return
	}

	var req models.GenerateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.GameType == "" {
		req.GameType = models.GameTypeScenario
	}

	sessions, err := h.service.GenerateBatch(r.Context(), userID, policyID, req.GameType, req.Count)
	if err != nil {
		writeServiceError(w, err, "generate game batch")
		return
	}

	writeJSON(w, http.StatusCreated, sessions)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid session ID"})
		return
	}

	session, err := h.service.GetSession(id, userID)
	if err != nil {
		writeServiceError(w, err, "get session")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.SubmitGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.service.Submit(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err, "submit game")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	limit := intQueryParam(r.URL.Query(), "limit", 50)
	sessions, err := h.service.ListSessions(userID, limit)
	if err != nil {
		writeServiceError(w, err, "list sessions")
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) UserScores(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	scores, err := h.service.UserScores(userID)
	if err != nil {
		writeServiceError(w, err, "user scores")
		return
	}

	writeJSON(w, http.StatusOK, scores)
}

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := intQueryParam(r.URL.Query(), "limit", 20)
	entries, err := h.service.Leaderboard(limit)
	if err != nil {
		writeServiceError(w, err, "leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func writeServiceError(w http.ResponseWriter, err error, op string) {
	var ve *generator.ValidationError
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
	case errors.Is(err, models.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid input"})
	case errors.Is(err, models.ErrAlreadyCompleted):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Session already answered"})
	case errors.Is(err, models.ErrNoRules):
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: "Policy has no rules to build from"})
	case errors.As(err, &ve):
		log.Printf("[games] %s returned invalid content: %v", op, err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Generated content failed validation"})
	default:
		log.Printf("[games] %s failed: %v", op, err)
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
