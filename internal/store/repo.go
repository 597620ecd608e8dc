package store

import "sort"

// Repository is a single repository as reported by a store, normalized into
// the shape the rest of the tool works with.
type Repository struct {
	// Store is the configured name of the store the repository lives on.
	Store string `json:"store_name"`
	// Owner is the user or organization owning the repository. Empty for
	// stores that have no notion of ownership.
	Owner string `json:"owner,omitempty"`
	Name  string `json:"name"`
	// Description is nil when the store reported no usable description.
	Description *string `json:"description"`
	// Topics is nil when the store reported no usable topic list, and
	// non-nil (possibly empty) when it reported one. The distinction
	// survives JSON round-trips: nil marshals to null, empty to [].
	Topics []string `json:"topics"`
}

// FullName returns the owner-qualified name ("owner/name"), or just the name
// for repositories without an owner.
func (r Repository) FullName() string {
	if r.Owner == "" {
		return r.Name
	}
	return r.Owner + "/" + r.Name
}

// Locator returns the "store:full_name" form accepted by clone and new.
func (r Repository) Locator() string {
	return r.Store + ":" + r.FullName()
}

// HasTopic reports whether the repository carries the given topic.
func (r Repository) HasTopic(topic string) bool {
	for _, t := range r.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// NewRepository builds a normalized Repository from raw store metadata.
//
// Stores report metadata in loosely structured form: description may be
// absent, null, or (from misbehaving backends) a non-string; topics may be
// absent, null, a list, or live under the historical "tags" key. Malformed
// values degrade to nil rather than failing the whole listing.
func NewRepository(storeName, owner, name string, raw map[string]any) Repository {
	topicsRaw, ok := raw["topics"]
	if !ok {
		topicsRaw = raw["tags"]
	}
	return Repository{
		Store:       storeName,
		Owner:       owner,
		Name:        name,
		Description: normalizeDescription(raw["description"]),
		Topics:      normalizeTopics(topicsRaw),
	}
}

// normalizeDescription keeps string descriptions and discards everything
// else (absent, null, numbers, objects).
func normalizeDescription(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// normalizeTopics converts a raw topics value into a sorted, deduplicated
// slice. Non-list values yield nil; non-string elements within a list are
// dropped. An empty list stays an empty (non-nil) slice.
func normalizeTopics(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		// A decoded []string shows up when the value did not pass
		// through encoding/json's any representation.
		if ss, ok := v.([]string); ok {
			raw = make([]any, len(ss))
			for i, s := range ss {
				raw[i] = s
			}
		} else {
			return nil
		}
	}

	topics := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, el := range raw {
		s, ok := el.(string)
		if !ok || seen[s] {
			continue
		}
		seen[s] = true
		topics = append(topics, s)
	}
	sort.Strings(topics)
	return topics
}
