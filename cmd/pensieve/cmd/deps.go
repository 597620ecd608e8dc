package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eldridgejm/pensieve/internal/core"
	"github.com/eldridgejm/pensieve/internal/store"
)

// deps holds shared dependencies for CLI commands.
type deps struct {
	// dir is the pensieve directory (the cwd; the dotfile lives here and
	// clones land here).
	dir    string
	config *core.Config
	stores map[string]store.Store
	cache  *core.CacheManager
	agg    *core.Aggregator
}

// newDeps creates shared dependencies. Called lazily by commands that need them.
func newDeps() (*deps, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}

	config, err := core.LoadConfig(dir)
	if err != nil {
		if errors.Is(err, core.ErrNoDotfile) {
			return nil, errors.New("Pensieve dotfile not found. Is this a pensieve?")
		}
		return nil, err
	}

	stores, err := core.BuildStores(config)
	if err != nil {
		return nil, err
	}

	return &deps{
		dir:    dir,
		config: config,
		stores: stores,
		cache:  core.NewCacheManager(filepath.Join(dir, core.CacheFileName)),
		agg:    core.NewAggregator(stores),
	}, nil
}

// readCache loads the snapshot, downgrading a corrupt file to an absent one
// with a warning.
func (d *deps) readCache() *core.Snapshot {
	snap, err := d.cache.Read()
	if err != nil {
		fmt.Fprintln(os.Stderr, badStyle.Render("warning: the cache file is unreadable; run `pensieve list` to rebuild it"))
		return nil
	}
	return snap
}
