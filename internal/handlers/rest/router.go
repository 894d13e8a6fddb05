package rest

import (
	"errors"
	"net/http"

	gameSession "github.com/KirkDiggler/teachcreate/internal/services/game_session"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Config holds all dependencies for the router
type Config struct {
	GameSessionService gameSession.Service
	Authenticator      *Authenticator

	// Production hides internal error detail from responses
	Production bool

	// AllowedOrigin is sent in CORS headers
	AllowedOrigin string

	// Logger (optional)
	Logger *logrus.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(cfg *Config) (http.Handler, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.GameSessionService == nil {
		return nil, errors.New("game session service cannot be nil")
	}

	if cfg.Authenticator == nil {
		return nil, errors.New("authenticator cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	origin := cfg.AllowedOrigin
	if origin == "" {
		origin = "*"
	}

	sessionHandler := NewGameSessionHandler(cfg.GameSessionService, logger, cfg.Production)

	r := mux.NewRouter()
	r.Use(corsMiddleware(origin))
	r.Use(loggerMiddleware(logger))

	r.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("TeachCreate Server is running!"))
	}).Methods("GET")
	r.HandleFunc("/healthz", sessionHandler.Health).Methods("GET")

	// Authenticated routes
	search := r.PathPrefix("/api/search").Subrouter()
	search.Use(cfg.Authenticator.RequireUser)

	search.HandleFunc("/products/{id}/start-game", sessionHandler.StartGame).Methods("POST", "OPTIONS")
	search.HandleFunc("/products/{id}/game-sessions", sessionHandler.ListSessions).Methods("GET", "OPTIONS")
	search.HandleFunc("/game-sessions/code/{joinCode}", sessionHandler.GetByJoinCode).Methods("GET", "OPTIONS")
	search.HandleFunc("/game-sessions/{sessionId}/join", sessionHandler.Join).Methods("POST", "OPTIONS")
	search.HandleFunc("/game-sessions/{sessionId}/start", sessionHandler.Start).Methods("POST", "OPTIONS")
	search.HandleFunc("/game-sessions/{sessionId}/end", sessionHandler.End).Methods("POST", "OPTIONS")

	return r, nil
}
