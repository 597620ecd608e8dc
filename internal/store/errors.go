package store

import (
	"errors"
	"fmt"
)

// ErrAlreadyExists reports that a repository with the requested name already
// lives on the store. Create errors wrap it so callers can tell the benign
// case apart from real failures.
var ErrAlreadyExists = errors.New("repository already exists")

// FetchError records the failure of a single store's listing. Listing fans
// out across stores, so one FetchError never hides the results of the others.
type FetchError struct {
	Store string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("could not fetch from store %q: %v", e.Store, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// CreateError records a failed repository creation on a named store.
type CreateError struct {
	Store string
	Name  string
	Err   error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("could not create %q on store %q: %v", e.Name, e.Store, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

// NotFoundError reports that the named repository does not exist on the store.
type NotFoundError struct {
	Store string
	Name  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no repository %q on store %q", e.Name, e.Store)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
