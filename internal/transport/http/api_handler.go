package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// APIHandler serves the read-only catalog, leaderboard and history endpoints.
type APIHandler struct {
	service *app.QuizService
	logger  *zap.Logger
}

func NewAPIHandler(service *app.QuizService, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{service: service, logger: logger}
}

// publicQuestion hides the correct answer from players.
type publicQuestion struct {
	ID         int64           `json:"id"`
	Text       string          `json:"text"`
	Image      string          `json:"image,omitempty"`
	Options    []domain.Option `json:"options"`
	Points     int             `json:"points"`
	Categories []int           `json:"categories"`
}

func (h *APIHandler) Questions(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.Catalog(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	out := make([]publicQuestion, 0, len(catalog.Questions))
	for _, q := range catalog.Questions {
		out = append(out, publicQuestion{
			ID:         q.ID,
			Text:       q.Text,
			Image:      q.Image,
			Options:    q.Options,
			Points:     q.Points,
			Categories: q.Categories,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *APIHandler) Categories(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.Catalog(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.Categories)
}

func (h *APIHandler) Settings(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.Catalog(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.Settings)
}

func (h *APIHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	category, err := intQuery(r, "category", domain.DefaultCategoryID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	limit, err := intQuery(r, "limit", 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	entries, err := h.service.Leaderboard(r.Context(), category, limit)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

func (h *APIHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	records, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(records))
}

func (h *APIHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
	}
	writeError(w, status, err.Error())
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuestion),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidSettings):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func intQuery(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Message: msg})
}
