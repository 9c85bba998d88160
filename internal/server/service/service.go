package service

import (
	"context"
	"log/slog"
	"time"

	"resultboard/internal/server/aggregate"
	"resultboard/internal/server/catalog"
	"resultboard/internal/server/logging"
	"resultboard/internal/server/storage"
)

const (
	SessionTTL         = 7 * 24 * time.Hour
	CleanupJobInterval = 1 * time.Hour
)

// Service coordinates the game catalog, results, views, users and storage
type Service struct {
	store     *storage.Store
	catalog   *catalog.Catalog
	engine    *aggregate.Engine
	jwtSecret []byte
	logger    *slog.Logger
	now       func() time.Time
	onUpsert  func(source string)
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the clock used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithUpsertHook is called with the source of every stored result
func WithUpsertHook(fn func(source string)) Option {
	return func(s *Service) { s.onUpsert = fn }
}

// New creates a service over store with its catalog and aggregation engine
func New(store *storage.Store, cat *catalog.Catalog, engine *aggregate.Engine, jwtSecret []byte, opts ...Option) *Service {
	s := &Service{
		store:     store,
		catalog:   cat,
		engine:    engine,
		jwtSecret: jwtSecret,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetStorageHealth returns the storage component status
func (s *Service) GetStorageHealth(ctx context.Context) string {
	if s.store == nil {
		return "disabled"
	}
	if err := s.store.Ping(ctx); err != nil {
		return "degraded"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// Shutdown closes the store
func (s *Service) Shutdown() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// RunCleanupJob periodically removes expired sessions until ctx ends
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupExpired(ctx)
		}
	}
}

func (s *Service) cleanupExpired(ctx context.Context) {
	deleted, err := s.store.DeleteExpiredSessions(ctx)
	if err != nil {
		logging.Error(s.logger, "cleanup: failed to delete expired sessions", err)
		return
	}
	if deleted > 0 {
		logging.Info(s.logger, "cleanup: deleted expired sessions", logging.FieldCount, deleted)
	}
}
