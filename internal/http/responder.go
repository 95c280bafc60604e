package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/dispatch-board/internal/board"
	"github.com/example/dispatch-board/internal/logging"
)

var errBadRequestBody = errors.New("invalid request body")

type responder struct {
	logger logging.Logger
}

func newResponder(logger logging.Logger) responder {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.logger.Errorf("failed to encode response: %v", err)
	}
}

func (r responder) writeError(w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		message = err.Error()
		r.logger.Errorf("request failed with status %d: %v", status, err)
	}
	r.writeJSON(w, status, errorResponse{Message: message})
}

// handleBoardError maps engine errors onto HTTP statuses.
func (r responder) handleBoardError(w http.ResponseWriter, err error) {
	var loadErr *board.LoadError
	var missingItem *board.WorkItemNotFoundError

	switch {
	case errors.Is(err, board.ErrNotFound):
		r.writeJSON(w, http.StatusNotFound, errorResponse{Message: "schedule entry not found"})
	case errors.As(err, &missingItem):
		r.writeJSON(w, http.StatusNotFound, errorResponse{Message: missingItem.Error()})
	case errors.As(err, &loadErr):
		r.logger.Errorf("board load failed: %v", loadErr)
		r.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Message: loadErr.Error()})
	case errors.Is(err, board.ErrNoGesture), errors.Is(err, board.ErrGestureInProgress):
		r.writeJSON(w, http.StatusConflict, errorResponse{Message: err.Error()})
	default:
		r.logger.Errorf("unhandled board error: %v", err)
		r.writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

type errorResponse struct {
	Message string `json:"message"`
}
