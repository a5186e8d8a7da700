// Package settings serves site-wide settings (copy, feature flags) as an
// immutable snapshot that is swapped on a timer. Readers never see a
// partially refreshed set.
package settings

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultRefreshInterval = 5 * time.Minute

	// UploadsEnabled gates the upload endpoints. Missing means enabled.
	UploadsEnabled = "uploads_enabled"
)

// Source loads the full settings map from the backing store.
type Source interface {
	Load(ctx context.Context) (map[string]string, error)
}

// Snapshot is a read-only view of the settings at LoadedAt.
type Snapshot struct {
	values   map[string]string
	loadedAt time.Time
}

func NewSnapshot(values map[string]string, loadedAt time.Time) *Snapshot {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Snapshot{values: copied, loadedAt: loadedAt}
}

func (s *Snapshot) Get(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Bool parses key as a boolean, falling back to def when it is missing or malformed.
func (s *Snapshot) Bool(key string, def bool) bool {
	v, ok := s.values[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// All returns a copy of every setting.
func (s *Snapshot) All() map[string]string {
	copied := make(map[string]string, len(s.values))
	for k, v := range s.values {
		copied[k] = v
	}
	return copied
}

func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

type Store struct {
	source   Source
	interval time.Duration
	logger   *zap.Logger
	current  atomic.Pointer[Snapshot]
}

func NewStore(source Source, interval time.Duration, logger *zap.Logger) *Store {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	s := &Store{source: source, interval: interval, logger: logger}
	s.current.Store(NewSnapshot(nil, time.Time{}))
	return s
}

// Snapshot returns the latest loaded settings. It never returns nil.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Refresh reloads settings from the source. On failure the previous
// snapshot stays in place.
func (s *Store) Refresh(ctx context.Context) error {
	values, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	s.current.Store(NewSnapshot(values, time.Now()))
	return nil
}

// Start refreshes once, then on every interval until ctx is done.
func (s *Store) Start(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("Initial settings load failed", zap.Error(err))
	}

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Refresh(ctx); err != nil {
					s.logger.Warn("Settings refresh failed, keeping previous snapshot", zap.Error(err))
				}
			}
		}
	}()
}
