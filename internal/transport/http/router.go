package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"trivia-quiz-service/internal/app"
)

// LiveCounter reports how many sessions are currently being played.
type LiveCounter interface {
	LiveCount(ctx context.Context) (int, error)
}

type RouterConfig struct {
	Quiz *app.QuizService
	// Admin is optional; without it the /admin routes are not mounted.
	Admin       *app.AdminService
	AdminSecret string
	Live        LiveCounter
	Logger      *zap.Logger
}

// NewRouter mounts the play socket, the read API and the admin API.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := mux.NewRouter()
	r.Use(requestLogger(logger))

	r.HandleFunc("/healthz", healthz(cfg.Live, logger)).Methods(http.MethodGet)
	r.HandleFunc("/ws", NewWSHandler(cfg.Quiz, logger).ServeWS)

	api := NewAPIHandler(cfg.Quiz, logger)
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/questions", api.Questions).Methods(http.MethodGet)
	apiRouter.HandleFunc("/categories", api.Categories).Methods(http.MethodGet)
	apiRouter.HandleFunc("/settings", api.Settings).Methods(http.MethodGet)
	apiRouter.HandleFunc("/leaderboard", api.Leaderboard).Methods(http.MethodGet)
	apiRouter.HandleFunc("/history", api.History).Methods(http.MethodGet)

	if cfg.Admin != nil {
		admin := NewAdminHandler(cfg.Admin, cfg.Quiz, cfg.AdminSecret, logger)
		r.HandleFunc("/admin/login", admin.Login).Methods(http.MethodPost)
		r.HandleFunc("/admin/logout", admin.Logout).Methods(http.MethodPost)

		protected := r.PathPrefix("/admin").Subrouter()
		protected.Use(admin.RequireAdmin)
		protected.HandleFunc("/catalog", admin.Catalog).Methods(http.MethodGet)
		protected.HandleFunc("/questions", admin.CreateQuestion).Methods(http.MethodPost)
		protected.HandleFunc("/questions/{id:[0-9]+}", admin.UpdateQuestion).Methods(http.MethodPut)
		protected.HandleFunc("/questions/{id:[0-9]+}", admin.DeleteQuestion).Methods(http.MethodDelete)
		protected.HandleFunc("/categories", admin.CreateCategory).Methods(http.MethodPost)
		protected.HandleFunc("/categories/{id:[0-9]+}", admin.UpdateCategory).Methods(http.MethodPut)
		protected.HandleFunc("/categories/{id:[0-9]+}", admin.DeleteCategory).Methods(http.MethodDelete)
		protected.HandleFunc("/settings", admin.SaveSettings).Methods(http.MethodPut)
	}
	return r
}

type healthResponse struct {
	Status       string `json:"status"`
	LiveSessions *int   `json:"liveSessions,omitempty"`
}

func healthz(live LiveCounter, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		if live != nil {
			n, err := live.LiveCount(r.Context())
			if err != nil {
				logger.Warn("live session count failed", zap.Error(err))
			} else {
				resp.LiveSessions = &n
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func requestLogger(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("took", time.Since(start)))
		})
	}
}
