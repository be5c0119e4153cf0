package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/okian/wordle-buddy/internal/adapters/http/api"
	app "github.com/okian/wordle-buddy/internal/app"
	"github.com/okian/wordle-buddy/internal/config"
	"github.com/okian/wordle-buddy/internal/domain/model"
	"github.com/okian/wordle-buddy/pkg/logger"
	"github.com/urfave/cli/v2"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		os.Stderr.WriteString("wordle-buddy: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "wordle-buddy",
		Usage: "collect daily Wordle results and post leaderboards",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a YAML config file",
				EnvVars: []string{config.FileEnv},
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:  "leaderboard",
				Usage: "print a leaderboard from the store",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "group", Usage: "group (guild) id", Required: true},
					&cli.BoolFlag{Name: "average", Usage: "rank by average score instead of total"},
					&cli.StringFlag{Name: "window", Usage: "week, month, all or a number of days"},
				},
				Action: printLeaderboard,
			},
			{
				Name:  "ingest",
				Usage: "feed one message through the bot as if it was just posted",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "group", Usage: "group (guild) id", Required: true},
					&cli.StringFlag{Name: "user", Usage: "author id", Required: true},
					&cli.StringFlag{Name: "name", Usage: "author display name"},
					&cli.StringFlag{Name: "channel", Usage: "channel the message was posted in"},
					&cli.StringFlag{Name: "file", Usage: "file holding the message text, - for stdin", Value: "-"},
				},
				Action: ingest,
			},
		},
	}
}

// bootstrap loads configuration and initializes logging. Logs go to logOut
// unless a log file is configured.
func bootstrap(c *cli.Context, logOut io.Writer) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		if err := os.Setenv(config.FileEnv, path); err != nil {
			return nil, fmt.Errorf("set config path: %w", err)
		}
	}
	cfg, err := config.Load(c.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	opts := logger.Options{Format: cfg.LogFormat, File: cfg.LogFile}
	if cfg.LogFile == "" {
		opts.Writer = logOut
	}
	if err := logger.Init(opts); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(c.Context, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// newService builds the bot from configuration.
func newService(cfg *config.Config) (*app.Service, error) {
	cal, err := cfg.Calendar()
	if err != nil {
		return nil, err
	}
	return app.New(
		app.WithLogger(logger.Get()),
		app.WithStoreDriver(cfg.StoreDriver, cfg.StoreLocation()),
		app.WithCalendar(cal),
		app.WithQueueSize(cfg.QueueSize),
		app.WithAckSize(cfg.DedupeSize),
		app.WithScrapeLimit(cfg.ScrapeLimit),
		app.WithWatchChannel(cfg.WatchChannel),
		app.WithCommandPrefix(cfg.CommandPrefix),
	), nil
}

func serve(c *cli.Context) error {
	cfg, err := bootstrap(c, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startServiceMetricsUpdater(ctx, svc)

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID, middleware.Recoverer)
	apiServer := api.NewServer(svc, svc,
		api.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		api.WithLogger(log.Named("api")),
	)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
	return nil
}

func printLeaderboard(c *cli.Context) error {
	cfg, err := bootstrap(c, c.App.ErrWriter)
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(c.Context); err != nil {
		return err
	}
	defer svc.Stop()

	mode := app.ModeTotal
	if c.Bool("average") {
		mode = app.ModeAverage
	}
	table, err := svc.Leaderboard(c.Context, c.String("group"), mode, c.String("window"))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, table)
	return err
}

func ingest(c *cli.Context) error {
	cfg, err := bootstrap(c, c.App.ErrWriter)
	if err != nil {
		return err
	}
	content, err := readContent(c.String("file"), c.App.Reader)
	if err != nil {
		return err
	}
	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	if err := svc.Start(c.Context); err != nil {
		return err
	}
	defer svc.Stop()

	reply, err := svc.HandleMessage(c.Context, model.Message{
		ID:         uuid.NewString(),
		GroupID:    c.String("group"),
		Channel:    c.String("channel"),
		AuthorID:   c.String("user"),
		AuthorName: c.String("name"),
		Content:    content,
		SentAt:     time.Now(),
	})
	if err != nil {
		return err
	}

	status := "not a result for today"
	if reply.Accepted {
		status = "accepted " + reply.Reaction
	}
	if _, err := fmt.Fprintln(c.App.Writer, status); err != nil {
		return err
	}
	if reply.Text != "" {
		_, err = fmt.Fprintln(c.App.Writer, reply.Text)
	}
	return err
}

func readContent(path string, stdin io.Reader) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read message: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

// startServiceMetricsUpdater refreshes gauges derived from service stats.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats publishes the queue length as a side effect.
			_ = svc.GetStats()
		}
	}
}
