package core

import (
	"fmt"
	"strings"

	"github.com/eldridgejm/pensieve/internal/store"
)

// Locator is a parsed repository locator with its store resolved.
//
// The textual form is "store:name" or "store:owner/name". When the owner is
// omitted the store's default answers: a GitHub store assumes the
// authenticated user, an agent store has no owners at all.
type Locator struct {
	Store store.Store
	Owner string
	Name  string
}

// FullName returns the owner-qualified repository name.
func (l Locator) FullName() string {
	if l.Owner == "" {
		return l.Name
	}
	return l.Owner + "/" + l.Name
}

// String returns the canonical "store:full_name" form, which parses back to
// the same locator.
func (l Locator) String() string {
	return l.Store.Name() + ":" + l.FullName()
}

// ParseError reports a malformed or unresolvable repository locator.
type ParseError struct {
	Locator string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bad locator %q: %s", e.Locator, e.Reason)
}

// ResolveLocator parses text against the configured stores.
func ResolveLocator(text string, stores map[string]store.Store) (Locator, error) {
	parseErr := func(reason string) (Locator, error) {
		return Locator{}, &ParseError{Locator: text, Reason: reason}
	}

	if strings.Count(text, ":") != 1 {
		return parseErr("must include store name")
	}
	storeName, rest, _ := strings.Cut(text, ":")

	st, ok := stores[storeName]
	if !ok {
		return parseErr(fmt.Sprintf("%q is not a valid store", storeName))
	}
	if rest == "" {
		return parseErr("missing repository name")
	}

	owner, name, hasOwner := strings.Cut(rest, "/")
	if !hasOwner {
		return Locator{Store: st, Owner: st.DefaultOwner(), Name: rest}, nil
	}
	if owner == "" {
		return parseErr("missing owner before /")
	}
	if name == "" {
		return parseErr("missing repository name")
	}
	return Locator{Store: st, Owner: owner, Name: name}, nil
}
