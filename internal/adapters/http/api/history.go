package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/wordle-buddy/internal/domain/model"
	"github.com/okian/wordle-buddy/pkg/logger"
)

// HistoryDependencies defines what POST /history needs.
type HistoryDependencies interface {
	ProcessHistory(ctx context.Context, history []model.Message, limit int) (int, []string, error)
}

// historyRequest carries one page of channel history, newest first.
// Messages inherit group_id and channel when they leave them empty.
type historyRequest struct {
	GroupID  string           `json:"group_id"`
	Channel  string           `json:"channel"`
	Limit    int              `json:"limit"`
	Messages []messageRequest `json:"messages"`
}

func (h historyRequest) validate() error {
	switch {
	case strings.TrimSpace(h.GroupID) == "":
		return errors.New("missing group_id")
	case h.Limit < 0:
		return errors.New("limit must not be negative")
	}
	return nil
}

type historyResponse struct {
	Processed    int      `json:"processed"`
	Acknowledged []string `json:"acknowledged"`
}

// HistoryHandler handles scrape replays.
type HistoryHandler struct {
	deps   HistoryDependencies
	logger logger.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps, logger: logger.Nop()}
}

// HandlePostHistory handles POST /history requests.
func (h *HistoryHandler) HandlePostHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_history"
	var req historyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	history := make([]model.Message, 0, len(req.Messages))
	for i, m := range req.Messages {
		if m.GroupID == "" {
			m.GroupID = req.GroupID
		}
		if m.Channel == "" {
			m.Channel = req.Channel
		}
		if strings.TrimSpace(m.SentAt) == "" {
			err := fmt.Errorf("message %d: missing sent_at", i)
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		// Invalid messages are skipped by the replay rather than failing the
		// whole page, so only decoding errors are reported here.
		msg, err := m.toMessage(time.Time{})
		if err != nil && !errors.Is(err, model.ErrInvalidMessage) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("message %d: %w", i, err)))
			return
		}
		history = append(history, msg)
	}

	processed, acked, err := h.deps.ProcessHistory(r.Context(), history, req.Limit)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	if acked == nil {
		acked = []string{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Processed: processed, Acknowledged: acked})
}
