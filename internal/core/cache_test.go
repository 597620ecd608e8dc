package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/eldridgejm/pensieve/internal/store"
)

func testCacheManager(t *testing.T) *CacheManager {
	t.Helper()
	return NewCacheManager(filepath.Join(t.TempDir(), CacheFileName))
}

func TestCacheReadMissing(t *testing.T) {
	cm := testCacheManager(t)

	snap, err := cm.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if snap != nil {
		t.Errorf("Read() = %+v, want nil for a missing file", snap)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	cm := testCacheManager(t)

	snap := NewSnapshot([]store.Repository{
		{Store: "github", Owner: "tester", Name: "tool", Description: desc("a tool"), Topics: []string{"go", "research"}},
		{Store: "home", Name: "notes", Topics: []string{}},
		{Store: "home", Name: "scratch"},
	})
	if err := cm.Write(snap); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	back, err := cm.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if back.Version != currentCacheVersion {
		t.Errorf("Version = %d, want %d", back.Version, currentCacheVersion)
	}
	if !back.CapturedAt.Equal(snap.CapturedAt) {
		t.Errorf("CapturedAt = %v, want %v", back.CapturedAt, snap.CapturedAt)
	}
	if !reflect.DeepEqual(back.Repositories, snap.Repositories) {
		t.Errorf("Repositories = %+v, want %+v", back.Repositories, snap.Repositories)
	}

	// The empty-but-present and absent topic states survive the disk trip.
	if back.Repositories[1].Topics == nil {
		t.Error("empty topics came back nil")
	}
	if back.Repositories[2].Topics != nil {
		t.Error("absent topics came back non-nil")
	}
}

func TestCacheWriteIsAtomic(t *testing.T) {
	dir := t.TempDir()
	cm := NewCacheManager(filepath.Join(dir, CacheFileName))

	if err := cm.Write(NewSnapshot(nil)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != CacheFileName {
		t.Errorf("directory holds %v, want only %s", entries, CacheFileName)
	}

	data, err := os.ReadFile(cm.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("cache file does not end with a newline")
	}
}

func TestCacheReadCorrupt(t *testing.T) {
	cm := testCacheManager(t)
	if err := os.WriteFile(cm.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := cm.Read()
	if !errors.Is(err, ErrCorruptCache) {
		t.Errorf("Read() error = %v, want ErrCorruptCache", err)
	}
}

func TestCacheReadWrongVersion(t *testing.T) {
	cm := testCacheManager(t)
	content := `{"version": 99, "captured_at": "2026-01-02T03:04:05Z", "repositories": []}`
	if err := os.WriteFile(cm.Path(), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := cm.Read()
	if !errors.Is(err, ErrCorruptCache) {
		t.Errorf("Read() error = %v, want ErrCorruptCache", err)
	}
}

func TestCacheStale(t *testing.T) {
	cm := testCacheManager(t)

	if !cm.Stale(nil) {
		t.Error("Stale(nil) = false, want true")
	}

	fresh := NewSnapshot(nil)
	if cm.Stale(fresh) {
		t.Error("a snapshot captured just now is stale")
	}

	old := NewSnapshot(nil)
	old.CapturedAt = time.Now().UTC().Add(-time.Hour)
	if !cm.Stale(old) {
		t.Error("an hour-old snapshot is not stale under the default TTL")
	}
}

func TestCacheTTLFromEnvironment(t *testing.T) {
	t.Setenv("PENSIEVE_CACHE_TTL", "90m")
	cm := testCacheManager(t)
	if cm.TTL != 90*time.Minute {
		t.Errorf("TTL = %v, want 90m", cm.TTL)
	}

	t.Setenv("PENSIEVE_CACHE_TTL", "garbage")
	cm = testCacheManager(t)
	if cm.TTL != DefaultCacheTTL {
		t.Errorf("TTL = %v, want the default after a bad value", cm.TTL)
	}
}

func TestCacheRefresh(t *testing.T) {
	cm := testCacheManager(t)
	agg := NewAggregator(map[string]store.Store{
		"github": &fakeStore{name: "github", repos: []store.Repository{
			{Store: "github", Owner: "tester", Name: "tool"},
			{Store: "github", Owner: "tester", Name: "old", Topics: []string{"archived"}},
		}},
	})

	snap, failures, err := cm.Refresh(context.Background(), agg)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if len(failures) != 0 {
		t.Errorf("failures = %v, want none", failures)
	}
	// The snapshot carries everything, archived included.
	if len(snap.Repositories) != 2 {
		t.Errorf("snapshot holds %d repos, want 2", len(snap.Repositories))
	}

	back, err := cm.Read()
	if err != nil {
		t.Fatalf("Read() after Refresh error = %v", err)
	}
	if !reflect.DeepEqual(back.Repositories, snap.Repositories) {
		t.Error("snapshot on disk differs from the one returned")
	}
}

func TestCacheRefreshPartialFailure(t *testing.T) {
	cm := testCacheManager(t)
	agg := NewAggregator(map[string]store.Store{
		"github": &fakeStore{name: "github", err: errors.New("down")},
		"home": &fakeStore{name: "home", repos: []store.Repository{
			{Store: "home", Name: "lab"},
		}},
	})

	snap, failures, err := cm.Refresh(context.Background(), agg)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if len(failures) != 1 || failures[0].Store != "github" {
		t.Errorf("failures = %v, want the github store", failures)
	}
	if len(snap.Repositories) != 1 || snap.Repositories[0].Name != "lab" {
		t.Errorf("snapshot = %v, want the healthy store's repos", snap.Repositories)
	}

	back, err := cm.Read()
	if err != nil || len(back.Repositories) != 1 {
		t.Errorf("disk snapshot = %v (err %v), want the partial result", back, err)
	}
}

func TestCacheRefreshTotalFailure(t *testing.T) {
	cm := testCacheManager(t)

	previous := NewSnapshot([]store.Repository{{Store: "home", Name: "kept"}})
	if err := cm.Write(previous); err != nil {
		t.Fatal(err)
	}

	agg := NewAggregator(map[string]store.Store{
		"home": &fakeStore{name: "home", err: errors.New("down")},
	})

	snap, failures, err := cm.Refresh(context.Background(), agg)
	if err == nil {
		t.Fatal("Refresh() error = nil, want an error when every store fails")
	}
	if len(failures) != 1 {
		t.Errorf("failures = %v, want one", failures)
	}
	if snap == nil || len(snap.Repositories) != 1 || snap.Repositories[0].Name != "kept" {
		t.Errorf("snapshot = %+v, want the previous one", snap)
	}

	back, readErr := cm.Read()
	if readErr != nil {
		t.Fatal(readErr)
	}
	if !back.CapturedAt.Equal(previous.CapturedAt) {
		t.Error("total failure overwrote the previous snapshot")
	}
}

func TestSnapshotQueries(t *testing.T) {
	snap := NewSnapshot([]store.Repository{
		{Store: "home", Name: "notes", Topics: []string{"writing"}},
		{Store: "github", Owner: "tester", Name: "tool", Topics: []string{"go", "writing"}},
		{Store: "github", Owner: "tester", Name: "old", Topics: []string{"archived"}},
	})

	stores := snap.StoreNames()
	if want := []string{"github", "home"}; !reflect.DeepEqual(stores, want) {
		t.Errorf("StoreNames() = %v, want %v", stores, want)
	}

	topics := snap.TopicNames()
	if want := []string{"archived", "go", "writing"}; !reflect.DeepEqual(topics, want) {
		t.Errorf("TopicNames() = %v, want %v", topics, want)
	}

	names := snap.LocatorNames()
	if want := []string{"home:notes", "github:tester/tool", "github:tester/old"}; !reflect.DeepEqual(names, want) {
		t.Errorf("LocatorNames() = %v, want %v", names, want)
	}

	// Asking twice gives the same answer.
	if !reflect.DeepEqual(topics, snap.TopicNames()) {
		t.Error("TopicNames() is not stable across calls")
	}

	var empty *Snapshot
	if got := empty.StoreNames(); got != nil {
		t.Errorf("nil snapshot StoreNames() = %v, want nil", got)
	}
	if got := empty.TopicNames(); got != nil {
		t.Errorf("nil snapshot TopicNames() = %v, want nil", got)
	}
	if got := empty.LocatorNames(); got != nil {
		t.Errorf("nil snapshot LocatorNames() = %v, want nil", got)
	}
}
