package selection

import (
	"encoding/json"
	"sort"
)

// Set is an immutable set of ids. The zero value is the empty set.
type Set struct {
	m map[string]struct{}
}

// NewSet builds a set from ids, ignoring empty strings
func NewSet(ids ...string) Set {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			m[id] = struct{}{}
		}
	}
	return Set{m: m}
}

// Has reports whether id is in the set
func (s Set) Has(id string) bool {
	_, ok := s.m[id]
	return ok
}

// Len returns the number of ids
func (s Set) Len() int {
	return len(s.m)
}

// With returns a copy of the set including ids
func (s Set) With(ids ...string) Set {
	out := s.copy(len(ids))
	for _, id := range ids {
		if id != "" {
			out.m[id] = struct{}{}
		}
	}
	return out
}

// Without returns a copy of the set excluding ids
func (s Set) Without(ids ...string) Set {
	out := s.copy(0)
	for _, id := range ids {
		delete(out.m, id)
	}
	return out
}

// Slice returns the ids in sorted order
func (s Set) Slice() []string {
	out := make([]string, 0, len(s.m))
	for id := range s.m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold the same ids
func (s Set) Equal(other Set) bool {
	if len(s.m) != len(other.m) {
		return false
	}
	for id := range s.m {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

func (s Set) copy(extra int) Set {
	m := make(map[string]struct{}, len(s.m)+extra)
	for id := range s.m {
		m[id] = struct{}{}
	}
	return Set{m: m}
}

// MarshalJSON encodes the set as a sorted array
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes a set from an array of ids
func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = NewSet(ids...)
	return nil
}
