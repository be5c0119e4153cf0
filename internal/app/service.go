// Package service wires the bot together: the store, the job queue and its
// single worker, the result pipeline and the command dispatcher.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	jobqueue "github.com/okian/wordle-buddy/internal/adapters/mq/queue"
	"github.com/okian/wordle-buddy/internal/adapters/mq/worker"
	"github.com/okian/wordle-buddy/internal/adapters/repository"
	"github.com/okian/wordle-buddy/internal/domain/ack"
	"github.com/okian/wordle-buddy/internal/domain/command"
	"github.com/okian/wordle-buddy/internal/domain/model"
	"github.com/okian/wordle-buddy/internal/domain/period"
	"github.com/okian/wordle-buddy/internal/domain/pipeline"
	"github.com/okian/wordle-buddy/pkg/logger"
	"github.com/okian/wordle-buddy/pkg/metrics"
)

// Checkmark is the reaction put on accepted results.
const Checkmark = "✅"

// Leaderboard modes.
const (
	ModeTotal   = "total"
	ModeAverage = "average"
)

const (
	defaultQueueSize   = 1024
	defaultScrapeLimit = 500
	stopTimeout        = 10 * time.Second
)

// Service implements the API dependencies for the bot.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	ownsStore  bool
	tracker    *ack.Tracker
	jobs       jobqueue.Queue
	worker     *worker.InMemoryWorker
	pipeline   *pipeline.Pipeline
	dispatcher *command.Dispatcher

	// Configuration
	storeDriver   string
	storeLocation string
	calendar      period.Calendar
	now           func() time.Time
	queueSize     int
	ackSize       int
	scrapeLimit   int
	watchChannel  string
	prefix        string

	// State
	started  bool
	cancel   context.CancelFunc
	received atomic.Int64
	accepted atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore uses an already opened store. The caller keeps ownership: Stop
// leaves it open and a later Start reuses it.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithStoreDriver selects the store opened on Start when none was given.
func WithStoreDriver(driver, location string) Option {
	return func(s *Service) {
		s.storeDriver = driver
		s.storeLocation = location
	}
}

// WithCalendar sets the puzzle calendar.
func WithCalendar(cal period.Calendar) Option {
	return func(s *Service) {
		s.calendar = cal
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithQueueSize sets the maximum number of waiting jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithAckSize bounds how many acknowledged message ids are remembered.
func WithAckSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.ackSize = size
		}
	}
}

// WithScrapeLimit caps how many history messages one replay considers.
func WithScrapeLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.scrapeLimit = limit
		}
	}
}

// WithWatchChannel restricts handling to one channel. Empty means all.
func WithWatchChannel(channel string) Option {
	return func(s *Service) {
		s.watchChannel = channel
	}
}

// WithCommandPrefix sets the command prefix token.
func WithCommandPrefix(prefix string) Option {
	return func(s *Service) {
		s.prefix = prefix
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeDriver: repository.DriverJSON,
		calendar:    period.MustNew(period.DefaultEpoch, nil),
		now:         time.Now,
		queueSize:   defaultQueueSize,
		ackSize:     ack.DefaultCapacity,
		scrapeLimit: defaultScrapeLimit,
		prefix:      command.DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store and starts the worker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.store == nil {
		store, err := repository.Open(ctx, s.storeDriver, s.storeLocation,
			repository.WithCalendar(s.calendar),
			repository.WithClock(s.now),
		)
		if err != nil {
			return fmt.Errorf("open %s store: %w", s.storeDriver, err)
		}
		s.store = store
		s.ownsStore = true
	}

	s.tracker = ack.NewTracker(ack.WithCapacity(s.ackSize))
	s.jobs = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pipeline = pipeline.New(s.store,
		pipeline.WithCalendar(s.calendar),
		pipeline.WithLogger(s.logger.Named("pipeline")),
	)
	s.dispatcher = command.New(s.store,
		command.WithPrefix(s.prefix),
		command.WithCalendar(s.calendar),
		command.WithClock(s.now),
		command.WithLogger(s.logger.Named("command")),
	)
	s.worker = worker.NewInMemoryWorker(s.jobs, s,
		worker.WithLogger(s.logger),
	)

	// The worker outlives the caller's context; Stop ends it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	go s.worker.Run(runCtx)

	s.started = true
	s.logger.Info(ctx, "wordle buddy started",
		logger.Int("queueSize", s.queueSize),
		logger.Int("scrapeLimit", s.scrapeLimit),
		logger.String("watchChannel", s.watchChannel),
		logger.String("prefix", s.prefix),
	)
	return nil
}

// Stop drains the worker and closes the store if Start opened it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping wordle buddy...")

	_ = s.jobs.Close()
	shutdownCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()
	if err := s.worker.Drain(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "worker did not stop cleanly", logger.Error(err))
	}
	s.cancel()

	if s.ownsStore {
		if err := s.store.Close(); err != nil {
			s.logger.Error(ctx, "error closing store", logger.Error(err))
		}
		s.store = nil
		s.ownsStore = false
	}
	s.dispatcher = nil

	s.started = false
	s.logger.Info(ctx, "wordle buddy stopped")
}

// submit queues j and waits for its outcome.
func (s *Service) submit(ctx context.Context, j jobqueue.Job) (jobqueue.Outcome, error) { //nolint:gocritic // hugeParam
	s.mu.RLock()
	started, jobs := s.started, s.jobs
	s.mu.RUnlock()
	if !started {
		return jobqueue.Outcome{}, ErrNotStarted
	}

	if err := jobs.Enqueue(ctx, j); err != nil {
		if errors.Is(err, jobqueue.ErrFull) {
			return jobqueue.Outcome{}, fmt.Errorf("%w: %v", ErrBusy, err)
		}
		return jobqueue.Outcome{}, err
	}
	select {
	case o := <-j.Done():
		return o, o.Err
	case <-ctx.Done():
		return jobqueue.Outcome{}, ctx.Err()
	}
}

// HandleMessage runs one chat message through the bot and returns what to
// send back.
func (s *Service) HandleMessage(ctx context.Context, msg model.Message) (model.Reply, error) {
	if err := msg.Validate(); err != nil {
		return model.Reply{}, err
	}
	o, err := s.submit(ctx, jobqueue.NewMessageJob(msg))
	return o.Reply, err
}

// ProcessHistory replays channel history, newest first, through the result
// pipeline. It returns how many messages were considered and the ids of
// those newly acknowledged.
func (s *Service) ProcessHistory(ctx context.Context, history []model.Message, limit int) (int, []string, error) {
	o, err := s.submit(ctx, jobqueue.NewHistoryJob(history, limit))
	return o.Processed, o.Acknowledged, err
}

// Leaderboard renders a leaderboard for group. mode is ModeTotal (default)
// or ModeAverage; window is a window token as accepted in chat.
func (s *Service) Leaderboard(ctx context.Context, group, mode, window string) (string, error) {
	s.mu.RLock()
	d := s.dispatcher
	s.mu.RUnlock()
	if d == nil {
		return "", ErrNotStarted
	}

	switch mode {
	case ModeTotal, "":
		return d.Totals(ctx, group, window)
	case ModeAverage:
		return d.Averages(ctx, group, window)
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

// Process implements worker.Handler. It is only ever called by the single
// worker, so jobs never overlap.
func (s *Service) Process(ctx context.Context, j jobqueue.Job) jobqueue.Outcome { //nolint:gocritic // hugeParam
	switch j.Kind {
	case jobqueue.KindMessage:
		reply, err := s.handle(ctx, j.Message)
		return jobqueue.Outcome{Reply: reply, Processed: 1, Err: err}
	case jobqueue.KindHistory:
		processed, acked := s.replay(ctx, j.History, j.Limit)
		return jobqueue.Outcome{Processed: processed, Acknowledged: acked}
	default:
		return jobqueue.Outcome{Err: fmt.Errorf("unknown job kind %q", j.Kind)}
	}
}

// skip reports whether msg should be ignored outright.
func (s *Service) skip(ctx context.Context, msg model.Message) bool { //nolint:gocritic // hugeParam
	reason := ""
	switch {
	case msg.FromBot:
		reason = "own_message"
	case s.watchChannel != "" && msg.Channel != s.watchChannel:
		reason = "other_channel"
	}
	if reason == "" {
		return false
	}
	metrics.RecordMessageSkipped(reason)
	s.logger.Debug(ctx, "message skipped",
		logger.String("messageID", msg.ID),
		logger.String("reason", reason))
	return true
}

// remember stores the author's display name for leaderboards.
func (s *Service) remember(ctx context.Context, msg model.Message) { //nolint:gocritic // hugeParam
	if msg.AuthorName == "" {
		return
	}
	if err := s.store.SaveMember(ctx, msg.GroupID, msg.AuthorID, msg.AuthorName); err != nil {
		metrics.RecordStoreError("save_member")
		s.logger.Warn(ctx, "could not save member name",
			logger.String("group", msg.GroupID),
			logger.String("user", msg.AuthorID),
			logger.Error(err))
	}
}

// submitResult feeds msg to the pipeline and acknowledges it on success.
func (s *Service) submitResult(ctx context.Context, msg model.Message) bool { //nolint:gocritic // hugeParam
	if !s.pipeline.Handle(ctx, msg.GroupID, msg.AuthorID, msg.Content, msg.SentAt) {
		return false
	}
	s.accepted.Add(1)
	if msg.ID != "" {
		s.tracker.Acknowledge(ctx, msg.ID)
		metrics.UpdateAcknowledged(int64(s.tracker.Len()))
	}
	return true
}

func (s *Service) handle(ctx context.Context, msg model.Message) (model.Reply, error) { //nolint:gocritic // hugeParam
	metrics.RecordMessageReceived()
	s.received.Add(1)
	if s.skip(ctx, msg) {
		return model.Reply{Kind: command.KindNone.String()}, nil
	}
	s.remember(ctx, msg)

	resp := command.Response{Kind: command.KindNone}
	if s.dispatcher.IsCommand(msg.Content) {
		var err error
		resp, err = s.dispatcher.Dispatch(ctx, msg.GroupID, msg.Content)
		switch {
		case errors.Is(err, command.ErrCommandSyntax):
			s.logger.Debug(ctx, "ignoring malformed command",
				logger.String("messageID", msg.ID),
				logger.Error(err))
		case err != nil:
			return model.Reply{}, err
		}
	}

	reply := model.Reply{Kind: resp.Kind.String(), Text: resp.Text}
	if resp.Kind == command.KindNone && s.submitResult(ctx, msg) {
		reply.Accepted = true
		reply.Reaction = Checkmark
	}
	return reply, nil
}

func (s *Service) replay(ctx context.Context, history []model.Message, limit int) (int, []string) {
	if limit <= 0 || limit > s.scrapeLimit {
		limit = s.scrapeLimit
	}
	if len(history) > limit {
		history = history[:limit]
	}

	acked := []string{}
	for _, msg := range history {
		if ctx.Err() != nil {
			break
		}
		metrics.RecordScrapeProcessed()
		if msg.Acknowledged || (msg.ID != "" && s.tracker.Acknowledged(msg.ID)) {
			continue
		}
		if msg.Validate() != nil || s.skip(ctx, msg) {
			continue
		}
		s.remember(ctx, msg)
		if s.submitResult(ctx, msg) {
			acked = append(acked, msg.ID)
		}
	}
	s.logger.Info(ctx, "history replayed",
		logger.Int("considered", len(history)),
		logger.Int("acknowledged", len(acked)))
	return len(history), acked
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"queueSize":        s.queueSize,
		"scrapeLimit":      s.scrapeLimit,
		"watchChannel":     s.watchChannel,
		"commandPrefix":    s.prefix,
		"storeDriver":      s.storeDriver,
		"messagesReceived": s.received.Load(),
		"resultsAccepted":  s.accepted.Load(),
		"currentPeriod":    s.calendar.Index(s.now()),
	}
	if s.started {
		queueLen := s.jobs.Len()
		stats["queueLength"] = queueLen
		stats["acknowledged"] = s.tracker.Len()
		metrics.UpdateQueueSize(queueLen)
	}
	return stats
}
