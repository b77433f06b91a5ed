package favorites

import "sort"

// Set is an immutable snapshot of favorite event keys. The zero value is an
// empty set.
type Set struct {
	keys map[string]struct{}
}

func NewSet(keys ...string) Set {
	m := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		m[k] = struct{}{}
	}
	return Set{keys: m}
}

func (s Set) Contains(key string) bool {
	_, ok := s.keys[key]
	return ok
}

func (s Set) Len() int {
	return len(s.keys)
}

// Keys returns the members in sorted order.
func (s Set) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// With returns a copy of s that also contains key.
func (s Set) With(key string) Set {
	next := s.clone()
	next.keys[key] = struct{}{}
	return next
}

// Without returns a copy of s that does not contain key.
func (s Set) Without(key string) Set {
	next := s.clone()
	delete(next.keys, key)
	return next
}

func (s Set) clone() Set {
	m := make(map[string]struct{}, len(s.keys)+1)
	for k := range s.keys {
		m[k] = struct{}{}
	}
	return Set{keys: m}
}
