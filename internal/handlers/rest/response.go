package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	gameSession "github.com/KirkDiggler/teachcreate/internal/services/game_session"
)

// errorResponse is the body of every failed request
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}

// writeServiceError translates a service error into a response. Errors the
// service does not classify get fallbackStatus; their detail is only shown
// outside production.
func (h *GameSessionHandler) writeServiceError(w http.ResponseWriter, err error, fallbackStatus int, fallbackKind string) {
	switch {
	case errors.Is(err, gameSession.ErrInvalidInput), errors.Is(err, gameSession.ErrInvalidSettings):
		writeError(w, http.StatusBadRequest, "Validation failed", err.Error())
	case errors.Is(err, gameSession.ErrInvalidJoinCode):
		writeError(w, http.StatusBadRequest, "Invalid join code", err.Error())
	case errors.Is(err, gameSession.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Not found", err.Error())
	case errors.Is(err, gameSession.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "Invalid transition", err.Error())
	default:
		h.logger.WithError(err).Error(fallbackKind)

		message := "Something went wrong"
		if !h.production {
			message = err.Error()
		}
		writeError(w, fallbackStatus, fallbackKind, message)
	}
}
