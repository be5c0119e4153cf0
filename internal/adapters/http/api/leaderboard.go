package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/wordle-buddy/pkg/logger"
)

// LeaderboardDependencies defines the interface for leaderboard operations.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, group, mode, window string) (string, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps   LeaderboardDependencies
	logger logger.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps, logger: logger.Nop()}
}

// HandleGetLeaderboard handles GET /leaderboard?group=G&mode=M&window=W
// requests. The table is returned as plain text, exactly as it would be
// posted in chat.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	q := r.URL.Query()
	group := strings.TrimSpace(q.Get("group"))
	if group == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing group")))
		return
	}

	table, err := h.deps.Leaderboard(r.Context(), group, q.Get("mode"), q.Get("window"))
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(table))
}
