package core

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eldridgejm/pensieve/internal/store"
)

// DefaultStoreTimeout bounds how long a single store may take to answer a
// listing before it is recorded as failed.
const DefaultStoreTimeout = 30 * time.Second

// ArchivedTopic is the reserved topic that hides a repository from default
// listings.
const ArchivedTopic = "archived"

// Filter selects which repositories a listing shows.
type Filter struct {
	// Topic keeps only repositories carrying this topic. Selecting a topic
	// also lifts the archived exclusion, so "--topic archived" works.
	Topic string
	// All lifts the default exclusion of archived repositories.
	All bool
}

// StoreFailure records one store's failure to answer, so the rest of the
// listing stays usable.
type StoreFailure struct {
	Store string
	Err   error
}

// Result is a merged listing plus whatever failures occurred along the way.
// One never hides the other.
type Result struct {
	Repositories []store.Repository
	Failures     []StoreFailure
}

// Aggregator produces a merged view of every configured store.
type Aggregator struct {
	stores map[string]store.Store

	// Timeout applies per store, not to the whole aggregation.
	Timeout time.Duration
}

// NewAggregator returns an Aggregator over the given stores.
func NewAggregator(stores map[string]store.Store) *Aggregator {
	return &Aggregator{stores: stores, Timeout: DefaultStoreTimeout}
}

// StoreCount returns how many stores the aggregator covers.
func (a *Aggregator) StoreCount() int { return len(a.stores) }

// Aggregate lists every store concurrently and merges the answers into a
// deterministic order. A failing or slow store contributes a StoreFailure
// instead of sinking the others. Two calls against unchanged stores produce
// identical results regardless of which store answered first.
func (a *Aggregator) Aggregate(ctx context.Context) Result {
	names := make([]string, 0, len(a.stores))
	for name := range a.stores {
		names = append(names, name)
	}
	sort.Strings(names)

	repoSlots := make([][]store.Repository, len(names))
	errSlots := make([]error, len(names))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		st := a.stores[name]
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, a.Timeout)
			defer cancel()

			repos, err := st.List(ctx)
			if err != nil {
				// Failures are data here, never a reason to cancel
				// the sibling stores.
				errSlots[i] = err
				return nil
			}
			repoSlots[i] = repos
			return nil
		})
	}
	_ = g.Wait()

	var res Result
	for i, name := range names {
		if err := errSlots[i]; err != nil {
			res.Failures = append(res.Failures, StoreFailure{Store: name, Err: err})
			continue
		}
		res.Repositories = append(res.Repositories, repoSlots[i]...)
	}
	SortRepositories(res.Repositories)
	return res
}

// FilterRepositories returns the repositories selected by f, preserving
// order. With no topic selected, repositories tagged archived are hidden
// unless f.All is set.
func FilterRepositories(repos []store.Repository, f Filter) []store.Repository {
	out := make([]store.Repository, 0, len(repos))
	for _, r := range repos {
		switch {
		case f.Topic != "":
			if r.HasTopic(f.Topic) {
				out = append(out, r)
			}
		case !f.All && r.HasTopic(ArchivedTopic):
			// hidden
		default:
			out = append(out, r)
		}
	}
	return out
}

// SortRepositories orders repositories by name, then store, then owner.
func SortRepositories(repos []store.Repository) {
	sort.Slice(repos, func(i, j int) bool {
		a, b := repos[i], repos[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.Store != b.Store {
			return a.Store < b.Store
		}
		return a.Owner < b.Owner
	})
}
