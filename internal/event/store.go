package event

import (
	"sort"
)

// Store is the immutable set of events loaded for a session.
type Store struct {
	events     []Event
	duplicates []string
}

// NewStore copies events into a new Store.
func NewStore(events []Event) *Store {
	s := &Store{events: make([]Event, len(events))}
	copy(s.events, events)

	seen := make(map[string]int, len(events))
	for _, e := range events {
		seen[e.Key()]++
	}
	for key, n := range seen {
		if n > 1 {
			s.duplicates = append(s.duplicates, key)
		}
	}
	sort.Strings(s.duplicates)
	return s
}

// Events returns a copy of the loaded events in source order.
func (s *Store) Events() []Event {
	if s == nil {
		return nil
	}
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.events)
}

// DuplicateKeys lists derived keys shared by more than one event. Favorites and
// selection cannot tell such events apart.
func (s *Store) DuplicateKeys() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.duplicates))
	copy(out, s.duplicates)
	return out
}
