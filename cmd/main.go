package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/courtlytics/pbp/internal/adapters/repository"
	app "github.com/courtlytics/pbp/internal/app"
	"github.com/courtlytics/pbp/internal/config"
	"github.com/courtlytics/pbp/internal/domain/model"
	"github.com/courtlytics/pbp/pkg/logger"
	"github.com/courtlytics/pbp/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants for the metrics listener.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// The manager registers its own collectors on a custom registry; the
	// default Go/process collectors would only duplicate them.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if len(os.Args) < 2 {
		os.Stderr.WriteString("usage: pbp <game.json | dir> ...\n")
		os.Exit(2)
	}
	paths, err := collectJobFiles(os.Args[1:])
	if err != nil {
		log.Error(ctx, "failed to scan inputs", logger.Error(err))
		os.Exit(1)
	}

	sink, err := openSink(cfg)
	if err != nil {
		log.Error(ctx, "failed to open sink", logger.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Error(ctx, "failed to close sink", logger.Error(err))
		}
	}()

	svc := app.New(
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithSink(sink),
		app.WithSinkTimeout(time.Duration(cfg.SinkWriteTimeoutMS)*time.Millisecond),
		app.WithThresholds(cfg.Zones),
		app.WithClutchWindow(cfg.ClutchClockSeconds, cfg.ClutchMargin),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop(ctx)

	srv := startMetricsListener(ctx, cfg.MetricsAddr, log)

	enqueued := 0
	for _, path := range paths {
		job, err := loadJob(path)
		if err != nil {
			log.Warn(ctx, "skipping unreadable game file",
				logger.String("path", path), logger.Error(err))
			continue
		}
		if !svc.Enqueue(ctx, job) {
			log.Warn(ctx, "job rejected", logger.String("path", path))
			continue
		}
		enqueued++
	}
	log.Info(ctx, "batch enqueued", logger.Int("games", enqueued))

	if err := svc.Drain(ctx); err != nil {
		log.Error(ctx, "drain failed", logger.Error(err))
	}

	for _, gameID := range svc.Games() {
		res, err := svc.Game(gameID)
		if err != nil {
			continue
		}
		log.Info(ctx, "game processed",
			logger.String("gameID", gameID),
			logger.Int("events", len(res.Events)),
			logger.Int("snapshots", len(res.Snapshots)),
			logger.Int("shots", len(res.Shots)),
			logger.Int("warnings", len(res.Quality.Warnings)),
		)
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(ctx, "metrics listener shutdown failed", logger.Error(err))
		}
	}
}

// openSink builds the configured persistence sink.
func openSink(cfg *config.Config) (repository.Sink, error) {
	switch cfg.SinkDriver {
	case "memory":
		return repository.NewMemorySink(), nil
	default:
		return repository.OpenSQLite(cfg.SinkPath)
	}
}

// collectJobFiles expands the argument list: files pass through, directories
// contribute every .json file they directly contain.
func collectJobFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
				paths = append(paths, filepath.Join(arg, e.Name()))
			}
		}
	}
	if len(paths) == 0 {
		return nil, errors.New("no game files found")
	}
	return paths, nil
}

// loadJob parses one game job file.
func loadJob(path string) (model.GameJob, error) {
	var job model.GameJob
	data, err := os.ReadFile(path)
	if err != nil {
		return job, err
	}
	if err := json.Unmarshal(data, &job); err != nil {
		return job, err
	}
	return job, nil
}

// startMetricsListener serves the prometheus handler when an address is
// configured. Returns nil when disabled.
func startMetricsListener(ctx context.Context, addr string, log logger.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "starting metrics listener", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics listener failed", logger.Error(err))
		}
	}()
	return srv
}
