// Package favorites keeps the set of favorite events. The in-memory set is the
// source of truth; persistence is best effort and happens in the background.
package favorites

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/planair/planair/internal/event"
	"github.com/planair/planair/internal/reactive"
)

type Store struct {
	persister Persister
	logger    zerolog.Logger

	keys *reactive.Signal[Set]

	saveMu  sync.Mutex
	pending sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

func NewStore(p Persister, logger zerolog.Logger) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		persister: p,
		logger:    logger.With().Str("component", "favorites").Logger(),
		keys:      reactive.NewSignal(Set{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Keys is the observable favorites set.
func (s *Store) Keys() *reactive.Signal[Set] {
	return s.keys
}

func (s *Store) Snapshot() Set {
	return s.keys.Get()
}

func (s *Store) IsFavorite(e event.Event) bool {
	return s.keys.Get().Contains(e.Key())
}

// Load replaces the in-memory set with the persisted one. Failures leave an
// empty set and are only logged.
func (s *Store) Load(ctx context.Context) {
	set, err := s.persister.Load(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		if errors.Is(err, ErrCorrupt) {
			s.logger.Warn().Err(err).Msg("Discarding corrupt favorites")
		} else {
			s.logger.Error().Err(err).Msg("Failed to load favorites")
		}
		set = Set{}
	}
	s.keys.Set(set)
	s.logger.Debug().Int("count", set.Len()).Msg("Favorites loaded")
}

// Toggle flips membership of e and returns whether it is now a favorite. The
// new set is visible immediately; the save runs in the background.
func (s *Store) Toggle(e event.Event) bool {
	key := e.Key()
	var added bool
	s.keys.Update(func(cur Set) Set {
		if cur.Contains(key) {
			return cur.Without(key)
		}
		added = true
		return cur.With(key)
	})
	s.Save()
	return added
}

// Save schedules a background write of the current set.
func (s *Store) Save() {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.SaveNow(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Msg("Failed to save favorites")
		}
	}()
}

// SaveNow writes the current set and returns any error. Writes are serialised
// and each one takes the snapshot current at the time it runs.
func (s *Store) SaveNow(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.persister.Save(ctx, s.keys.Get())
}

// Wait blocks until scheduled saves have finished.
func (s *Store) Wait() {
	s.pending.Wait()
}

func (s *Store) Close() error {
	s.Wait()
	s.cancel()
	return s.persister.Close()
}
