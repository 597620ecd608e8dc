package store

import (
	"encoding/json"
	"testing"
)

func TestNewRepository(t *testing.T) {
	t.Run("full metadata", func(t *testing.T) {
		raw := map[string]any{
			"description": "a notebook",
			"topics":      []any{"research", "notes"},
		}
		r := NewRepository("home", "", "lab", raw)

		if r.Store != "home" || r.Name != "lab" {
			t.Fatalf("got %s:%s, want home:lab", r.Store, r.Name)
		}
		if r.Description == nil || *r.Description != "a notebook" {
			t.Errorf("description = %v, want %q", r.Description, "a notebook")
		}
		if len(r.Topics) != 2 || r.Topics[0] != "notes" || r.Topics[1] != "research" {
			t.Errorf("topics = %v, want sorted [notes research]", r.Topics)
		}
	})

	t.Run("missing description", func(t *testing.T) {
		r := NewRepository("home", "", "lab", map[string]any{})
		if r.Description != nil {
			t.Errorf("description = %q, want nil", *r.Description)
		}
	})

	t.Run("null description", func(t *testing.T) {
		r := NewRepository("home", "", "lab", map[string]any{"description": nil})
		if r.Description != nil {
			t.Errorf("description = %q, want nil", *r.Description)
		}
	})

	t.Run("non-string description degrades", func(t *testing.T) {
		r := NewRepository("home", "", "lab", map[string]any{"description": 2.0})
		if r.Description != nil {
			t.Errorf("description = %q, want nil", *r.Description)
		}
	})

	t.Run("topics under legacy tags key", func(t *testing.T) {
		r := NewRepository("home", "", "lab", map[string]any{"tags": []any{"old"}})
		if len(r.Topics) != 1 || r.Topics[0] != "old" {
			t.Errorf("topics = %v, want [old]", r.Topics)
		}
	})

	t.Run("topics key wins over tags", func(t *testing.T) {
		raw := map[string]any{"topics": []any{"new"}, "tags": []any{"old"}}
		r := NewRepository("home", "", "lab", raw)
		if len(r.Topics) != 1 || r.Topics[0] != "new" {
			t.Errorf("topics = %v, want [new]", r.Topics)
		}
	})

	t.Run("non-list topics degrade to nil", func(t *testing.T) {
		r := NewRepository("home", "", "lab", map[string]any{"topics": "oops"})
		if r.Topics != nil {
			t.Errorf("topics = %v, want nil", r.Topics)
		}
	})

	t.Run("empty topics stay empty not nil", func(t *testing.T) {
		r := NewRepository("home", "", "lab", map[string]any{"topics": []any{}})
		if r.Topics == nil {
			t.Fatal("topics = nil, want empty slice")
		}
		if len(r.Topics) != 0 {
			t.Errorf("topics = %v, want empty", r.Topics)
		}
	})

	t.Run("non-string topic elements dropped", func(t *testing.T) {
		r := NewRepository("home", "", "lab", map[string]any{"topics": []any{"ok", 3.0, nil}})
		if len(r.Topics) != 1 || r.Topics[0] != "ok" {
			t.Errorf("topics = %v, want [ok]", r.Topics)
		}
	})

	t.Run("duplicate topics collapse", func(t *testing.T) {
		r := NewRepository("home", "", "lab", map[string]any{"topics": []any{"a", "a", "b"}})
		if len(r.Topics) != 2 {
			t.Errorf("topics = %v, want [a b]", r.Topics)
		}
	})
}

func TestRepositoryFullName(t *testing.T) {
	withOwner := Repository{Store: "github", Owner: "acme", Name: "tool"}
	if got := withOwner.FullName(); got != "acme/tool" {
		t.Errorf("FullName() = %q, want %q", got, "acme/tool")
	}
	if got := withOwner.Locator(); got != "github:acme/tool" {
		t.Errorf("Locator() = %q, want %q", got, "github:acme/tool")
	}

	bare := Repository{Store: "home", Name: "lab"}
	if got := bare.FullName(); got != "lab" {
		t.Errorf("FullName() = %q, want %q", got, "lab")
	}
	if got := bare.Locator(); got != "home:lab" {
		t.Errorf("Locator() = %q, want %q", got, "home:lab")
	}
}

func TestRepositoryHasTopic(t *testing.T) {
	r := Repository{Topics: []string{"a", "b"}}
	if !r.HasTopic("a") {
		t.Error("HasTopic(a) = false, want true")
	}
	if r.HasTopic("c") {
		t.Error("HasTopic(c) = true, want false")
	}
	if (Repository{}).HasTopic("a") {
		t.Error("HasTopic on no topics = true, want false")
	}
}

// The nil/empty topics distinction must survive a JSON round-trip: nil
// marshals to null and comes back nil, an empty slice marshals to [] and
// comes back empty.
func TestRepositoryTopicsRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		topics  []string
		marshal string
	}{
		{"nil topics", nil, `null`},
		{"empty topics", []string{}, `[]`},
		{"some topics", []string{"x"}, `["x"]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := Repository{Store: "s", Name: "n", Topics: tc.topics}
			data, err := json.Marshal(in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var m map[string]json.RawMessage
			if err := json.Unmarshal(data, &m); err != nil {
				t.Fatalf("unmarshal into map: %v", err)
			}
			if string(m["topics"]) != tc.marshal {
				t.Errorf("topics marshaled as %s, want %s", m["topics"], tc.marshal)
			}

			var out Repository
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if (out.Topics == nil) != (tc.topics == nil) {
				t.Errorf("nil-ness lost: got %v, want %v", out.Topics, tc.topics)
			}
			if len(out.Topics) != len(tc.topics) {
				t.Errorf("topics = %v, want %v", out.Topics, tc.topics)
			}
		})
	}
}
