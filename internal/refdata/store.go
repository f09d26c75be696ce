package refdata

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"blower-selector/internal/common/errors"
	"blower-selector/internal/common/logger"
	"blower-selector/internal/common/metrics"
)

// Store publishes catalog snapshots to concurrent readers. Readers always see
// a complete snapshot; refresh swaps the pointer atomically.
type Store struct {
	path    string
	current atomic.Pointer[Snapshot]
	logger  logger.Logger
}

// NewStore loads the catalog from path and returns a store serving it.
func NewStore(path string, log logger.Logger) (*Store, error) {
	snap, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}

	s := &Store{path: path, logger: log}
	s.current.Store(snap)
	metrics.CatalogProducts.Set(float64(len(snap.Products)))

	log.Info("catalog loaded",
		zap.String("path", path),
		zap.String("version", snap.Version),
		zap.Int("products", len(snap.Products)))
	return s, nil
}

// NewStaticStore wraps an in-memory snapshot, mainly for tests.
func NewStaticStore(snap *Snapshot) *Store {
	s := &Store{logger: logger.NewNoOpLogger()}
	s.current.Store(snap)
	return s
}

// Snapshot returns the active catalog snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Refresh re-reads the catalog file and publishes the new snapshot. On error
// the previous snapshot stays active.
func (s *Store) Refresh() error {
	snap, err := LoadCatalog(s.path)
	if err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues("error").Inc()
		s.logger.WithError(err).Error("catalog refresh failed, keeping previous snapshot")
		return errors.NewDomainError(errors.ErrCodeCatalogLoadFailed, "catalog refresh failed", err.Error())
	}

	s.current.Store(snap)
	metrics.CatalogRefreshTotal.WithLabelValues("success").Inc()
	metrics.CatalogProducts.Set(float64(len(snap.Products)))

	s.logger.Info("catalog refreshed",
		zap.String("version", snap.Version),
		zap.Int("products", len(snap.Products)))
	return nil
}

// RunRefreshLoop refreshes the catalog on the given interval until ctx is
// canceled. Interval <= 0 disables refreshing.
func (s *Store) RunRefreshLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.Refresh()
		}
	}
}
