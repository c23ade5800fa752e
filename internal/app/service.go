// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/huckstats/huck/internal/adapters/mq/queue"
	workerpool "github.com/huckstats/huck/internal/adapters/mq/worker"
	"github.com/huckstats/huck/internal/adapters/repository"
	"github.com/huckstats/huck/internal/domain/dedupe"
	"github.com/huckstats/huck/internal/domain/model"
	"github.com/huckstats/huck/internal/domain/stats"
	"github.com/huckstats/huck/pkg/logger"
	"github.com/huckstats/huck/pkg/metrics"
)

// Service implements the API dependencies for the stats system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	engine     stats.Aggregator
	workerPool *workerpool.Pool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	dbPath      string

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of persistence workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithDBPath sets the SQLite database file.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithStore injects a pre-opened store, bypassing WithDBPath.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 4,
		queueSize:   10000,
		dedupeSize:  50000,
		dbPath:      "huck.db",
		logger:      nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting stats service...")

	if s.store == nil {
		store, err := repository.Open(s.dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
		s.logger.Info(ctx, "using sqlite store", logger.String("path", s.dbPath))
	}
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)
	s.engine = stats.NewEngine()

	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.store)
	// Workers must outlive the caller's context so Stop can drain the
	// queue into the store; they terminate when the queue closes.
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "stats service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)

	return nil
}

// Stop gracefully shuts down the service. Queued events are drained into
// the store before the workers exit.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping stats service...")

	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}

	if s.store != nil {
		_ = s.store.Close()
	}

	s.started = false
	s.logger.Info(ctx, "stats service stopped")
}

// SeenAndRecord atomically checks if an event id was seen and records it if not.
// Returns true if the event was already seen, false if it was newly recorded.
// This is the ONLY method for deduplication - thread-safe and atomic.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord removes an event ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits an event for asynchronous persistence. Returns false when
// the queue is saturated and the caller should retry later.
func (s *Service) Enqueue(ctx context.Context, e model.Event) bool {
	ok := s.eventQueue.Enqueue(ctx, e)
	if ok {
		metrics.RecordEventIngested()
	}
	return ok
}

// ComputeStats aggregates per-player statistics from a raw event sequence
// without touching storage.
func (s *Service) ComputeStats(ctx context.Context, events []model.Event) ([]model.PlayerStats, error) {
	start := time.Now()
	result, err := s.engine.Aggregate(ctx, events)
	metrics.RecordAggregationLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordAggregationError()
		return nil, err
	}
	return result, nil
}

// GameStats loads a game's stored events and aggregates them.
func (s *Service) GameStats(ctx context.Context, gameID string) ([]model.PlayerStats, error) {
	if _, err := s.store.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	events, err := s.store.ListEventsByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return s.ComputeStats(ctx, events)
}

// GameEvents returns a game's stored events in timestamp order.
func (s *Service) GameEvents(ctx context.Context, gameID string) ([]model.Event, error) {
	if _, err := s.store.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	return s.store.ListEventsByGame(ctx, gameID)
}

// CreateGame registers a new game, assigning an id when none is provided.
func (s *Service) CreateGame(ctx context.Context, g model.Game) (model.Game, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if err := s.store.CreateGame(ctx, g); err != nil {
		return model.Game{}, err
	}
	s.observeStoreGauges(ctx)
	return g, nil
}

// GetGame returns a single game by id.
func (s *Service) GetGame(ctx context.Context, id string) (model.Game, error) {
	return s.store.GetGame(ctx, id)
}

// ListGames returns all games, newest first.
func (s *Service) ListGames(ctx context.Context) ([]model.Game, error) {
	return s.store.ListGames(ctx)
}

// CreatePoint records a point within a game, assigning an id when none is
// provided.
func (s *Service) CreatePoint(ctx context.Context, p model.Point) (model.Point, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.store.CreatePoint(ctx, p); err != nil {
		return model.Point{}, err
	}
	return p, nil
}

// GamePoints returns a game's points in the order they were played.
func (s *Service) GamePoints(ctx context.Context, gameID string) ([]model.Point, error) {
	if _, err := s.store.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	return s.store.ListPointsByGame(ctx, gameID)
}

// CreatePlayer registers a roster player, assigning an id when none is provided.
func (s *Service) CreatePlayer(ctx context.Context, p model.Player) (model.Player, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.store.CreatePlayer(ctx, p); err != nil {
		return model.Player{}, err
	}
	return p, nil
}

// ListPlayers returns the roster in alphabetical order.
func (s *Service) ListPlayers(ctx context.Context) ([]model.Player, error) {
	return s.store.ListPlayers(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	out := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		out["queueLength"] = s.eventQueue.Len(ctx)
		out["dedupeEntries"] = s.deduper.Size()

		if games, err := s.store.CountGames(ctx); err == nil {
			out["gamesTracked"] = games
			metrics.UpdateGamesTracked(games)
		}
		if events, err := s.store.CountEvents(ctx); err == nil {
			out["eventsStored"] = events
			metrics.UpdateEventsStored(events)
		}
	}

	return out
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

func (s *Service) observeStoreGauges(ctx context.Context) {
	if games, err := s.store.CountGames(ctx); err == nil {
		metrics.UpdateGamesTracked(games)
	}
	if events, err := s.store.CountEvents(ctx); err == nil {
		metrics.UpdateEventsStored(events)
	}
}
