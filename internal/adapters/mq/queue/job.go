package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/wordle-buddy/internal/domain/model"
)

// Kind names the work a Job carries.
type Kind string

// Job kinds.
const (
	KindMessage Kind = "message"
	KindHistory Kind = "history"
)

// Job is one unit of work for the single consumer. Exactly one of Message
// or History is meaningful, depending on Kind.
type Job struct {
	ID         string
	Kind       Kind
	Message    model.Message
	History    []model.Message // newest first
	Limit      int
	EnqueuedAt time.Time

	done chan Outcome
}

// Outcome is the consumer's answer to a Job.
type Outcome struct {
	Reply        model.Reply
	Processed    int
	Acknowledged []string
	Err          error
}

func newJob(kind Kind) Job {
	return Job{
		ID:         uuid.NewString(),
		Kind:       kind,
		EnqueuedAt: time.Now(),
		done:       make(chan Outcome, 1),
	}
}

// NewMessageJob wraps a single inbound message.
func NewMessageJob(msg model.Message) Job {
	j := newJob(KindMessage)
	j.Message = msg
	return j
}

// NewHistoryJob wraps a history replay of at most limit messages.
func NewHistoryJob(history []model.Message, limit int) Job {
	j := newJob(KindHistory)
	j.History = history
	j.Limit = limit
	return j
}

// Complete delivers the outcome. Only the first call has an effect.
func (j Job) Complete(o Outcome) {
	if j.done == nil {
		return
	}
	select {
	case j.done <- o:
	default:
	}
}

// Done returns the channel the outcome arrives on.
func (j Job) Done() <-chan Outcome { return j.done }
