package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/eldridgejm/pensieve/internal/store"
)

const (
	// CacheFileName is the snapshot file kept next to the dotfile.
	CacheFileName = ".cache.json"

	// currentCacheVersion tags the snapshot schema. A snapshot with any
	// other version is treated as absent.
	currentCacheVersion = 1

	// DefaultCacheTTL is how long a snapshot counts as fresh.
	// PENSIEVE_CACHE_TTL overrides it with a Go duration ("1h", "30s").
	DefaultCacheTTL = 15 * time.Minute
)

// ErrCorruptCache means the snapshot file exists but cannot be used. Callers
// treat it like an absent cache; it is never fatal.
var ErrCorruptCache = errors.New("corrupt cache snapshot")

// Snapshot is one point-in-time capture of the merged repository listing,
// archived repositories included.
type Snapshot struct {
	Version      int                `json:"version"`
	CapturedAt   time.Time          `json:"captured_at"`
	Repositories []store.Repository `json:"repositories"`
}

// NewSnapshot stamps repos as a current-version snapshot captured now.
func NewSnapshot(repos []store.Repository) *Snapshot {
	return &Snapshot{
		Version:      currentCacheVersion,
		CapturedAt:   time.Now().UTC(),
		Repositories: repos,
	}
}

// StoreNames returns the distinct store names in the snapshot, sorted.
func (s *Snapshot) StoreNames() []string {
	if s == nil {
		return nil
	}
	seen := map[string]bool{}
	var names []string
	for _, r := range s.Repositories {
		if !seen[r.Store] {
			seen[r.Store] = true
			names = append(names, r.Store)
		}
	}
	sort.Strings(names)
	return names
}

// TopicNames returns every topic appearing in the snapshot, sorted.
func (s *Snapshot) TopicNames() []string {
	if s == nil {
		return nil
	}
	seen := map[string]bool{}
	var topics []string
	for _, r := range s.Repositories {
		for _, t := range r.Topics {
			if !seen[t] {
				seen[t] = true
				topics = append(topics, t)
			}
		}
	}
	sort.Strings(topics)
	return topics
}

// LocatorNames returns the "store:full_name" form of every repository, in
// snapshot order. Each entry parses back into a locator for clone.
func (s *Snapshot) LocatorNames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Repositories))
	for _, r := range s.Repositories {
		names = append(names, r.Locator())
	}
	return names
}

// CacheManager owns the snapshot file: reading it, refreshing it from the
// aggregator, and deciding when it has gone stale.
type CacheManager struct {
	path string

	// TTL is how long a snapshot stays fresh. NewCacheManager fills it from
	// PENSIEVE_CACHE_TTL, falling back to DefaultCacheTTL.
	TTL time.Duration
}

// NewCacheManager returns a CacheManager over the snapshot file at path.
func NewCacheManager(path string) *CacheManager {
	return &CacheManager{path: path, TTL: cacheTTL()}
}

// Path returns the snapshot file's location.
func (cm *CacheManager) Path() string { return cm.path }

// Read loads the snapshot. A missing file yields (nil, nil); an unreadable
// file or one with an unknown version yields an error wrapping
// ErrCorruptCache.
func (cm *CacheManager) Read() (*Snapshot, error) {
	data, err := os.ReadFile(cm.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	if snap.Version != currentCacheVersion {
		return nil, fmt.Errorf("%w: unknown version %d", ErrCorruptCache, snap.Version)
	}
	return &snap, nil
}

// Stale reports whether the snapshot is due for a refresh. A nil snapshot is
// always stale.
func (cm *CacheManager) Stale(s *Snapshot) bool {
	if s == nil {
		return true
	}
	return time.Since(s.CapturedAt) >= cm.TTL
}

// Write saves the snapshot to disk.
func (cm *CacheManager) Write(snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}
	data = append(data, '\n')

	// Atomic write: write to temp file, then rename.
	tmpPath := cm.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := os.Rename(tmpPath, cm.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving cache: %w", err)
	}
	return nil
}

// Refresh aggregates every store and replaces the snapshot with the result.
//
// Partial failures still produce a snapshot of whatever succeeded. A total
// failure leaves the file untouched and returns the previous snapshot, if
// any, alongside the error: a flaky network never erases the last good
// capture.
func (cm *CacheManager) Refresh(ctx context.Context, agg *Aggregator) (*Snapshot, []StoreFailure, error) {
	res := agg.Aggregate(ctx)

	if n := agg.StoreCount(); n > 0 && len(res.Failures) == n {
		prev, _ := cm.Read()
		return prev, res.Failures, errors.New("no store answered; keeping the previous snapshot")
	}

	snap := NewSnapshot(res.Repositories)
	if err := cm.Write(snap); err != nil {
		return snap, res.Failures, err
	}
	return snap, res.Failures, nil
}

func cacheTTL() time.Duration {
	if v := os.Getenv("PENSIEVE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return DefaultCacheTTL
}
