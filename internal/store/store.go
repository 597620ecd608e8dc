package store

import "context"

// CreateOptions adjusts how a repository is created. Stores ignore options
// that do not apply to them.
type CreateOptions struct {
	// Public makes the new repository publicly visible on stores that
	// distinguish visibility. The default is private.
	Public bool
}

// Store is a backend holding a collection of repositories. Two variants
// exist: GitHub accounts reached over the REST API, and remote pensieve
// directories reached through pensieve-agent over SSH.
//
// Implementations tag every Repository and every error they produce with
// their configured store name, so results from several stores can be merged
// without losing provenance.
type Store interface {
	// Name returns the store's configured name.
	Name() string

	// List fetches every repository on the store, normalized. The order is
	// unspecified; callers sort merged results themselves.
	List(ctx context.Context) ([]Repository, error)

	// Create makes a new repository on the store and returns its normalized
	// form. Owner may be empty for stores without ownership. A name collision
	// yields a *CreateError wrapping ErrAlreadyExists.
	Create(ctx context.Context, owner, name string, opts CreateOptions) (Repository, error)

	// CloneSource resolves a repository to a URL usable by git clone. It does
	// not run git. Stores that can check existence cheaply return a
	// *NotFoundError for missing repositories; others defer that to the clone
	// itself.
	CloneSource(ctx context.Context, owner, name string) (string, error)

	// DefaultOwner returns the owner assumed when a locator names none, or ""
	// when the store has no such notion.
	DefaultOwner() string
}
