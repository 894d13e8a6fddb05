package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/KirkDiggler/teachcreate/internal/models"
	gameSession "github.com/KirkDiggler/teachcreate/internal/services/game_session"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// GameSessionHandler handles live game session endpoints
type GameSessionHandler struct {
	sessionSvc gameSession.Service
	logger     *logrus.Logger
	production bool
}

// NewGameSessionHandler creates a new game session handler
func NewGameSessionHandler(sessionSvc gameSession.Service, logger *logrus.Logger, production bool) *GameSessionHandler {
	return &GameSessionHandler{
		sessionSvc: sessionSvc,
		logger:     logger,
		production: production,
	}
}

// StartGameRequest is the request body for starting a live game
type StartGameRequest struct {
	Settings models.GameSettings `json:"settings"`
}

// JoinRequest is the request body for joining a live game
type JoinRequest struct {
	JoinCode string `json:"joinCode"`
}

// ListSessionsResponse wraps a creator's sessions for a product
type ListSessionsResponse struct {
	Sessions []*models.GameSession `json:"sessions"`
}

// StartGame handles POST /api/search/products/{id}/start-game
func (h *GameSessionHandler) StartGame(w http.ResponseWriter, r *http.Request) {
	productID := mux.Vars(r)["id"]
	userID := GetUserID(r.Context())

	var req StartGameRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	output, err := h.sessionSvc.CreateSession(r.Context(), &gameSession.CreateSessionInput{
		ProductID: productID,
		CreatorID: userID,
		Settings:  req.Settings,
	})
	if err != nil {
		h.writeServiceError(w, err, http.StatusBadRequest, "Failed to start game")
		return
	}

	writeJSON(w, http.StatusCreated, output.Session)
}

// ListSessions handles GET /api/search/products/{id}/game-sessions
func (h *GameSessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	output, err := h.sessionSvc.ListSessions(r.Context(), &gameSession.ListSessionsInput{
		ProductID: mux.Vars(r)["id"],
		CreatorID: GetUserID(r.Context()),
	})
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError, "Failed to fetch game sessions")
		return
	}

	writeJSON(w, http.StatusOK, ListSessionsResponse{Sessions: output.Sessions})
}

// Join handles POST /api/search/game-sessions/{sessionId}/join
func (h *GameSessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}

	if req.JoinCode == "" {
		writeError(w, http.StatusBadRequest, "Validation failed", "Join code is required")
		return
	}

	output, err := h.sessionSvc.JoinSession(r.Context(), &gameSession.JoinSessionInput{
		SessionID: mux.Vars(r)["sessionId"],
		UserID:    GetUserID(r.Context()),
		JoinCode:  req.JoinCode,
	})
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError, "Failed to join game")
		return
	}

	writeJSON(w, http.StatusOK, output)
}

// GetByJoinCode handles GET /api/search/game-sessions/code/{joinCode}
func (h *GameSessionHandler) GetByJoinCode(w http.ResponseWriter, r *http.Request) {
	output, err := h.sessionSvc.GetSessionByJoinCode(r.Context(), &gameSession.GetSessionByJoinCodeInput{
		JoinCode: mux.Vars(r)["joinCode"],
	})
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError, "Failed to fetch game session")
		return
	}

	writeJSON(w, http.StatusOK, output.Session)
}

// Start handles POST /api/search/game-sessions/{sessionId}/start
func (h *GameSessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	output, err := h.sessionSvc.StartSession(r.Context(), &gameSession.StartSessionInput{
		SessionID: mux.Vars(r)["sessionId"],
	})
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError, "Failed to start game session")
		return
	}

	writeJSON(w, http.StatusOK, output.Session)
}

// End handles POST /api/search/game-sessions/{sessionId}/end
func (h *GameSessionHandler) End(w http.ResponseWriter, r *http.Request) {
	output, err := h.sessionSvc.EndSession(r.Context(), &gameSession.EndSessionInput{
		SessionID: mux.Vars(r)["sessionId"],
	})
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError, "Failed to end game session")
		return
	}

	writeJSON(w, http.StatusOK, output.Session)
}

// Health handles GET /healthz
func (h *GameSessionHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionSvc.Ping(r.Context()); err != nil {
		h.logger.WithError(err).Error("session store health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeOptionalBody decodes JSON into v; an empty body leaves v untouched
func decodeOptionalBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}

	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}
