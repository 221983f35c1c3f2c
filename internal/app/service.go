// Package service wires the reduction pipeline to the queue, worker pool and
// persistence sink, and serves temporal queries over completed games.
package service

import (
	"context"
	"fmt"
	"iter"
	"runtime"
	"sort"
	"sync"
	"time"

	eventqueue "github.com/courtlytics/pbp/internal/adapters/mq/queue"
	workerpool "github.com/courtlytics/pbp/internal/adapters/mq/worker"
	"github.com/courtlytics/pbp/internal/adapters/repository"
	"github.com/courtlytics/pbp/internal/domain/model"
	"github.com/courtlytics/pbp/internal/domain/shot"
	"github.com/courtlytics/pbp/internal/domain/timeline"
	"github.com/courtlytics/pbp/pkg/logger"
)

// Default service configuration.
const (
	defaultQueueSize   = 1024
	defaultSinkTimeout = 10 * time.Second
)

// Service owns the end-to-end engine: jobs enter through Enqueue, workers
// reduce them in parallel (one game per worker, strictly sequential inside a
// game), results land in the sink, and completed games stay queryable through
// their timeline indexes.
type Service struct {
	mu sync.RWMutex

	// Core components
	jobQueue   eventqueue.Queue
	workerPool *workerpool.Pool
	sink       repository.Sink
	pipe       *pipeline

	// Completed games, keyed by game id.
	indexes map[string]*timeline.Index
	results map[string]*model.GameResult

	// Configuration
	workerCount  int
	queueSize    int
	sinkTimeout  time.Duration
	zones        shot.Thresholds
	kindMappings map[string]model.EventKind
	clutchClock  float64
	clutchMargin int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of game workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize bounds the in-memory game job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSink sets the persistence sink. The caller keeps ownership: the service
// never closes it.
func WithSink(sink repository.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithSinkTimeout bounds one game's persistence write.
func WithSinkTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sinkTimeout = d
		}
	}
}

// WithThresholds sets the shot zone-classification threshold table.
func WithThresholds(t shot.Thresholds) Option {
	return func(s *Service) {
		s.zones = t
	}
}

// WithKindMappings adds provider-specific event type text mappings on top of
// the built-in table.
func WithKindMappings(mappings map[string]model.EventKind) Option {
	return func(s *Service) {
		s.kindMappings = mappings
	}
}

// WithClutchWindow sets the clutch predicate thresholds for every game's
// timeline index.
func WithClutchWindow(clockSeconds float64, margin int) Option {
	return func(s *Service) {
		if clockSeconds > 0 && margin > 0 {
			s.clutchClock = clockSeconds
			s.clutchMargin = margin
		}
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

// New constructs a Service with default configuration. The default sink keeps
// results in memory; pass WithSink for durable storage.
func New(opts ...Option) *Service {
	s := &Service{
		indexes:      make(map[string]*timeline.Index),
		results:      make(map[string]*model.GameResult),
		workerCount:  runtime.NumCPU() * 2,
		queueSize:    defaultQueueSize,
		sinkTimeout:  defaultSinkTimeout,
		zones:        shot.DefaultThresholds(),
		clutchClock:  0, // timeline defaults apply when unset
		clutchMargin: 0,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the queue and worker pool and begins draining jobs.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.sink == nil {
		s.sink = repository.NewMemorySink()
	}

	s.pipe = newPipeline(s.zones, s.kindMappings)
	s.jobQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)
	s.workerPool = workerpool.NewPool(
		s.workerCount,
		s.jobQueue,
		s.pipe,
		&indexingSink{svc: s},
		workerpool.WithSinkTimeout(s.sinkTimeout),
	)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "timeline engine started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Enqueue submits one game job for asynchronous reduction. Returns false when
// the job is rejected (missing game id, service not started, or queue full).
func (s *Service) Enqueue(ctx context.Context, job model.GameJob) bool {
	s.mu.RLock()
	started := s.started
	q := s.jobQueue
	s.mu.RUnlock()

	if !started {
		return false
	}
	if job.GameID == "" {
		s.logger.Warn(ctx, "rejecting job without game id",
			logger.Int("events", len(job.Raw)))
		return false
	}
	ok := q.Enqueue(ctx, job)
	if !ok {
		s.logger.Warn(ctx, "queue rejected job", logger.String("gameID", job.GameID))
	}
	return ok
}

// Drain closes the intake and blocks until every queued game has been
// reduced and persisted. After Drain the service accepts no more jobs.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.RLock()
	started := s.started
	q := s.jobQueue
	pool := s.workerPool
	s.mu.RUnlock()

	if !started {
		return ErrNotStarted
	}
	if err := q.Close(); err != nil {
		return fmt.Errorf("failed to close job queue: %w", err)
	}
	pool.Wait()
	return nil
}

// Stop shuts the service down. Workers finish their in-flight game; queued
// jobs still drain unless the context expires first.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Error(ctx, "worker pool shutdown failed", logger.Error(err))
	}
	s.started = false
	s.logger.Info(ctx, "timeline engine stopped")
}

// retain stores a completed game's result and its query index. Called by the
// indexing sink only after the durable write succeeded, so the query surface
// never serves a game the sink does not hold.
func (s *Service) retain(result *model.GameResult) {
	opts := []timeline.Option{}
	if s.clutchClock > 0 && s.clutchMargin > 0 {
		opts = append(opts, timeline.WithClutchWindow(s.clutchClock, s.clutchMargin))
	}
	idx := timeline.New(result, result.Entities, opts...)

	s.mu.Lock()
	s.results[result.GameID] = result
	s.indexes[result.GameID] = idx
	s.mu.Unlock()
}

// indexingSink decorates the configured sink: a successful durable write also
// publishes the game to the service's query surface.
type indexingSink struct {
	svc *Service
}

func (is *indexingSink) WriteGame(ctx context.Context, result *model.GameResult) error {
	if err := is.svc.sink.WriteGame(ctx, result); err != nil {
		return err
	}
	is.svc.retain(result)
	return nil
}

// index looks up the timeline index of a completed game.
func (s *Service) index(gameID string) (*timeline.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
	}
	return idx, nil
}

// Game returns the complete result of a finished game.
func (s *Service) Game(gameID string) (*model.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.results[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
	}
	return res, nil
}

// Games lists the ids of every completed game, sorted.
func (s *Service) Games() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.results))
	for id := range s.results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ResolveAsOf resolves the full entity state of a game at an instant.
func (s *Service) ResolveAsOf(gameID string, instant timeline.Instant) (timeline.Resolution, error) {
	idx, err := s.index(gameID)
	if err != nil {
		return timeline.Resolution{}, err
	}
	return idx.ResolveAsOf(instant)
}

// Lineup returns the five on-court players of a team at an ordinal. known is
// false where the lineup could not be established for that stretch.
func (s *Service) Lineup(gameID, teamID string, ordinal int) (players []string, known bool, err error) {
	idx, err := s.index(gameID)
	if err != nil {
		return nil, false, err
	}
	players, known = idx.Lineup(teamID, ordinal)
	return players, known, nil
}

// InClutch reports whether an ordinal falls inside the game's clutch window.
func (s *Service) InClutch(gameID string, ordinal int) (bool, error) {
	idx, err := s.index(gameID)
	if err != nil {
		return false, err
	}
	return idx.InClutch(ordinal), nil
}

// LeadChanges returns the restartable sequence of ordinals where the lead
// flipped.
func (s *Service) LeadChanges(gameID string) (iter.Seq[int], error) {
	idx, err := s.index(gameID)
	if err != nil {
		return nil, err
	}
	return idx.LeadChanges(), nil
}

// ShotFilter narrows a Shots query. The zero value matches every shot.
type ShotFilter struct {
	Type model.ShotType // empty matches any type
	Zone model.ShotZone // empty matches any zone
	Made *bool          // nil matches makes and misses

	FromOrdinal int  // inclusive lower bound; zero is the stream start
	ToOrdinal   *int // inclusive upper bound; nil is the stream end
}

// match reports whether one shot passes the filter.
func (f *ShotFilter) match(se *model.ShotEvent) bool {
	if f.Type != "" && se.Type != f.Type {
		return false
	}
	if f.Zone != "" && se.Zone != f.Zone {
		return false
	}
	if f.Made != nil && se.Made != *f.Made {
		return false
	}
	if se.EventOrdinal < f.FromOrdinal {
		return false
	}
	if f.ToOrdinal != nil && se.EventOrdinal > *f.ToOrdinal {
		return false
	}
	return true
}

// Shots returns a game's classified shots, filtered, in ordinal order.
func (s *Service) Shots(gameID string, filter ShotFilter) ([]model.ShotEvent, error) {
	res, err := s.Game(gameID)
	if err != nil {
		return nil, err
	}
	out := make([]model.ShotEvent, 0, len(res.Shots))
	for i := range res.Shots {
		if filter.match(&res.Shots[i]) {
			out = append(out, res.Shots[i])
		}
	}
	return out, nil
}
