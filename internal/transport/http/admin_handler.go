package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

const (
	adminSessionName = "trivia-admin"
	adminFlag        = "authenticated"
)

// AdminHandler exposes catalog management behind a PIN-backed cookie session.
type AdminHandler struct {
	admin  *app.AdminService
	quiz   *app.QuizService
	store  *sessions.CookieStore
	logger *zap.Logger
}

// NewAdminHandler signs cookies with secret; an empty secret gets a random key,
// which logs admins out on every restart.
func NewAdminHandler(admin *app.AdminService, quiz *app.QuizService, secret string, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	key := []byte(secret)
	if secret == "" {
		key = securecookie.GenerateRandomKey(32)
		logger.Warn("admin session secret not set, using an ephemeral key")
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/admin",
		MaxAge:   8 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	return &AdminHandler{admin: admin, quiz: quiz, store: store, logger: logger}
}

type loginRequest struct {
	PIN string `json:"pin"`
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid login payload")
		return
	}
	if !h.admin.CheckPIN(req.PIN) {
		h.logger.Warn("admin login rejected", zap.String("remote", r.RemoteAddr))
		writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
		return
	}
	session, _ := h.store.Get(r, adminSessionName)
	session.Values[adminFlag] = true
	if err := session.Save(r, w); err != nil {
		h.logger.Error("save admin session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not start admin session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.store.Get(r, adminSessionName)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
	w.WriteHeader(http.StatusNoContent)
}

// RequireAdmin rejects requests without an authenticated admin session.
func (h *AdminHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := h.store.Get(r, adminSessionName)
		if err != nil || session.Values[adminFlag] != true {
			writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Catalog returns the full catalog including correct answers.
func (h *AdminHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.quiz.Catalog(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var q domain.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid question payload")
		return
	}
	created, err := h.admin.CreateQuestion(r.Context(), q)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}
	var q domain.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid question payload")
		return
	}
	q.ID = id
	if err := h.admin.UpdateQuestion(r.Context(), q); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}
	if err := h.admin.DeleteQuestion(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var c domain.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid category payload")
		return
	}
	created, err := h.admin.CreateCategory(r.Context(), c)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	var c domain.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid category payload")
		return
	}
	c.ID = id
	if err := h.admin.UpdateCategory(r.Context(), c); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	if err := h.admin.DeleteCategory(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var s domain.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings payload")
		return
	}
	if err := h.admin.SaveSettings(r.Context(), s); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("admin request failed", zap.Error(err))
	}
	writeError(w, status, err.Error())
}
