package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/wordle-buddy/internal/domain/model"
	"github.com/okian/wordle-buddy/pkg/logger"
)

// MessageDependencies defines what POST /messages needs.
type MessageDependencies interface {
	HandleMessage(ctx context.Context, msg model.Message) (model.Reply, error)
}

// messageRequest is one chat message as posted by a chat adapter.
type messageRequest struct {
	ID           string `json:"id"`
	GroupID      string `json:"group_id"`
	Channel      string `json:"channel"`
	AuthorID     string `json:"author_id"`
	AuthorName   string `json:"author_name"`
	Content      string `json:"content"`
	SentAt       string `json:"sent_at"`
	FromBot      bool   `json:"from_bot"`
	Acknowledged bool   `json:"acknowledged"`
}

// toMessage converts the request. A missing sent_at means now and a missing
// id is generated so the message can still be acknowledged.
func (m messageRequest) toMessage(now time.Time) (model.Message, error) {
	sent := now
	if strings.TrimSpace(m.SentAt) != "" {
		t, err := time.Parse(time.RFC3339, m.SentAt)
		if err != nil {
			return model.Message{}, errors.New("invalid sent_at; must be RFC3339")
		}
		sent = t
	}
	id := m.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}
	msg := model.Message{
		ID:           id,
		GroupID:      m.GroupID,
		Channel:      m.Channel,
		AuthorID:     m.AuthorID,
		AuthorName:   m.AuthorName,
		Content:      m.Content,
		SentAt:       sent,
		FromBot:      m.FromBot,
		Acknowledged: m.Acknowledged,
	}
	return msg, msg.Validate()
}

type responseBody struct {
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}

type messageResponse struct {
	ID       string       `json:"id"`
	Accepted bool         `json:"accepted"`
	Reaction string       `json:"reaction,omitempty"`
	Response responseBody `json:"response"`
}

// MessagesHandler handles message requests.
type MessagesHandler struct {
	deps   MessageDependencies
	now    func() time.Time
	logger logger.Logger
}

// NewMessagesHandler creates a new messages handler.
func NewMessagesHandler(deps MessageDependencies) *MessagesHandler {
	return &MessagesHandler{deps: deps, now: time.Now, logger: logger.Nop()}
}

// HandlePostMessage handles POST /messages requests.
func (h *MessagesHandler) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_message"
	var req messageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	msg, err := req.toMessage(h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	reply, err := h.deps.HandleMessage(r.Context(), msg)
	if err != nil {
		writeServiceError(r.Context(), w, h.logger, op, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{
		ID:       msg.ID,
		Accepted: reply.Accepted,
		Reaction: reply.Reaction,
		Response: responseBody{Kind: reply.Kind, Text: reply.Text},
	})
}
