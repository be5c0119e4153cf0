// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/wordle-buddy/internal/adapters/repository"
	service "github.com/okian/wordle-buddy/internal/app"
	"github.com/okian/wordle-buddy/internal/domain/command"
	"github.com/okian/wordle-buddy/internal/domain/model"
	"github.com/okian/wordle-buddy/pkg/logger"
	"golang.org/x/time/rate"
)

// maxBodyBytes bounds a request body; a full history page fits easily.
const maxBodyBytes = 4 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	MessageDependencies
	HistoryDependencies
	LeaderboardDependencies
}

// Server wires HTTP routes for the bot API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	messagesHandler    *MessagesHandler
	historyHandler     *HistoryHandler
	leaderboardHandler *LeaderboardHandler

	limiter *rate.Limiter
	logger  logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit caps the request rate across all write and read routes.
// A non-positive limit disables limiting.
func WithRateLimit(limit float64, burst int) Option {
	return func(s *Server) {
		if limit > 0 && burst > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(limit), burst)
		}
	}
}

// WithLogger sets the logger used for failed requests.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		messagesHandler:    NewMessagesHandler(deps),
		historyHandler:     NewHistoryHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		logger:             logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.messagesHandler.logger = s.logger
	s.historyHandler.logger = s.logger
	s.leaderboardHandler.logger = s.logger
	return s
}

// Register attaches all HTTP routes to r. Operational routes are never
// rate limited; bot routes are when a limit is configured.
func (s *Server) Register(_ context.Context, r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Method(http.MethodGet, "/metrics", s.healthHandler.MetricsHandler())
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Group(func(r chi.Router) {
		if s.limiter != nil {
			r.Use(RateLimitMiddleware(s.limiter))
		}
		r.Post("/messages", MetricsMiddleware(s.messagesHandler.HandlePostMessage, "messages"))
		r.Post("/history", MetricsMiddleware(s.historyHandler.HandlePostHistory, "history"))
		r.Get("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates errors from the bot into HTTP statuses.
func writeServiceError(ctx context.Context, w http.ResponseWriter, l logger.Logger, op string, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidMessage),
		errors.Is(err, command.ErrCommandSyntax),
		errors.Is(err, repository.ErrInvalidKey),
		errors.Is(err, service.ErrInvalidMode):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrBusy):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		l.Error(ctx, "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
