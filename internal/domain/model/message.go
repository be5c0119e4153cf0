// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMessage is returned by Message.Validate.
var ErrInvalidMessage = errors.New("invalid message")

// Message is one chat message as delivered by the chat adapter. GroupID
// names the guild or server, Channel the channel it was posted in, and
// SentAt is the universal arrival timestamp. AuthorName is the display name
// at the time of posting.
type Message struct {
	ID         string    `json:"id"`
	GroupID    string    `json:"group_id"`
	Channel    string    `json:"channel"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
	FromBot    bool      `json:"from_bot,omitempty"`

	// Acknowledged is set on history replays for messages that already
	// carry the bot's reaction.
	Acknowledged bool `json:"acknowledged,omitempty"`
}

// Validate checks the fields every message needs before it can be handled.
func (m Message) Validate() error {
	switch {
	case m.GroupID == "":
		return fmt.Errorf("%w: group_id is required", ErrInvalidMessage)
	case m.AuthorID == "":
		return fmt.Errorf("%w: author_id is required", ErrInvalidMessage)
	case m.SentAt.IsZero():
		return fmt.Errorf("%w: sent_at is required", ErrInvalidMessage)
	}
	return nil
}

// Reply is what the bot sends back for a message.
type Reply struct {
	// Accepted is true when the message was stored as a result.
	Accepted bool `json:"accepted"`
	// Reaction is the emoji to put on the message, if any.
	Reaction string `json:"reaction,omitempty"`
	// Kind and Text describe a command response.
	Kind string `json:"kind"`
	Text string `json:"text,omitempty"`
}
