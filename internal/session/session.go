// Package session owns the filter state, the loaded events, the favorites
// snapshot and the user location, and keeps the visible event list in step
// with all of them.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/planair/planair/internal/camera"
	"github.com/planair/planair/internal/event"
	"github.com/planair/planair/internal/favorites"
	"github.com/planair/planair/internal/filter"
	"github.com/planair/planair/internal/location"
	"github.com/planair/planair/internal/reactive"
)

const FavoritesChoice = "FAVORITES"

type Options struct {
	EventsPath string
	Favorites  *favorites.Store
	Location   location.Provider
	Logger     zerolog.Logger
	Loc        *time.Location

	// Initial is the starting filter. The zero value means filter.Default().
	Initial         *filter.State
	DefaultRadiusKm float64
	Camera          camera.Config
	DefaultName     string

	Permission  bool
	WatchEvents bool
}

type Session struct {
	id         string
	opts       Options
	logger     zerolog.Logger
	loc        *time.Location
	favs       *favorites.Store
	provider   location.Provider
	defaultKm  float64
	cameraCfg  camera.Config
	centerName string

	events     *reactive.Signal[*event.Store]
	filter     *reactive.Signal[filter.State]
	user       *reactive.Signal[*location.Coordinate]
	visible    *reactive.Signal[[]event.Event]
	selected   *reactive.Signal[*event.Event]
	permission *reactive.Signal[bool]

	// recompute
	mu sync.Mutex

	// favorites-only snapshot and reset anchors
	stateMu  sync.Mutex
	snapshot *filter.State
	anchors  filter.ResetOptions

	ctx     context.Context
	cancel  context.CancelFunc
	taskMu  sync.Mutex
	tasks   sync.WaitGroup
	watcher *event.Watcher
	unsub   []func()
	closed  bool
}

func New(opts Options) (*Session, error) {
	if opts.Favorites == nil {
		return nil, errors.New("favorites store is required")
	}
	if opts.Location == nil {
		opts.Location = location.Static{}
	}
	if opts.Loc == nil {
		opts.Loc = time.Local
	}
	if opts.DefaultRadiusKm <= 0 {
		opts.DefaultRadiusKm = filter.DefaultRadiusKm
	}
	if opts.Camera == (camera.Config{}) {
		opts.Camera = camera.DefaultConfig()
	}
	if opts.DefaultName == "" {
		opts.DefaultName = "Default location"
	}

	initial := filter.Default().WithRadius(opts.DefaultRadiusKm)
	if opts.Initial != nil {
		initial = *opts.Initial
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		id:         id,
		opts:       opts,
		logger:     opts.Logger.With().Str("session", id).Logger(),
		loc:        opts.Loc,
		favs:       opts.Favorites,
		provider:   opts.Location,
		defaultKm:  opts.DefaultRadiusKm,
		cameraCfg:  opts.Camera,
		centerName: opts.DefaultName,
		events:     reactive.NewSignal(event.NewStore(nil)),
		filter:     reactive.NewSignal(initial),
		user:       reactive.NewSignal[*location.Coordinate](nil),
		visible:    reactive.NewSignal([]event.Event{}),
		selected:   reactive.NewSignal[*event.Event](nil),
		permission: reactive.NewSignal(opts.Permission),
		anchors:    anchorsOf(initial),
		ctx:        ctx,
		cancel:     cancel,
	}

	recompute := func() { s.recompute() }
	s.unsub = append(s.unsub,
		s.events.Subscribe(func(*event.Store) { recompute() }),
		s.filter.Subscribe(func(filter.State) { recompute() }),
		s.favs.Keys().Subscribe(func(favorites.Set) { recompute() }),
		s.user.Subscribe(func(*location.Coordinate) { recompute() }),
	)
	s.recompute()

	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Start loads events and favorites in the background and fetches the user
// location when permission is granted. Cancelling ctx stops outstanding work.
func (s *Session) Start(ctx context.Context) {
	context.AfterFunc(ctx, s.cancel)

	s.goTask(s.loadEvents)
	s.goTask(func() { s.favs.Load(s.ctx) })

	if s.permission.Get() {
		s.RequestLocation(s.ctx)
	}

	if s.opts.WatchEvents && s.opts.EventsPath != "" {
		w, err := event.NewWatcher(s.opts.EventsPath, s.logger, func(string) {
			s.goTask(func() {
				s.logger.Info().Msg("Events file changed, reloading")
				s.loadEvents()
			})
		})
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to watch events file")
		} else {
			s.watcher = w
		}
	}
}

// Reload re-reads the events file in the background and publishes the result
// as a new Store.
func (s *Session) Reload() {
	s.goTask(s.loadEvents)
}

// goTask runs fn in the background unless the session is shutting down.
func (s *Session) goTask(fn func()) {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		fn()
	}()
}

func (s *Session) loadEvents() {
	store := event.Load(s.ctx, s.opts.EventsPath, s.logger)
	if s.ctx.Err() != nil {
		return
	}
	s.events.Set(store)
}

// Wait blocks until background tasks started so far have finished.
func (s *Session) Wait() {
	s.tasks.Wait()
	s.favs.Wait()
}

// Close stops background work and flushes favorites.
func (s *Session) Close() error {
	s.stateMu.Lock()
	if s.closed {
		s.stateMu.Unlock()
		return nil
	}
	s.closed = true
	s.stateMu.Unlock()

	if s.watcher != nil {
		s.watcher.Close()
	}
	s.taskMu.Lock()
	s.cancel()
	s.taskMu.Unlock()
	s.tasks.Wait()
	for _, fn := range s.unsub {
		fn()
	}
	return s.favs.Close()
}

func (s *Session) recompute() {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := filter.Apply(filter.Input{
		Events:    s.events.Get().Events(),
		State:     s.filter.Get(),
		Favorites: s.favs.Snapshot(),
		User:      s.user.Get(),
		Loc:       s.loc,
	})
	s.visible.Set(visible)
}

// Read-only views.

func (s *Session) Events() *event.Store { return s.events.Get() }

func (s *Session) Filter() filter.State { return s.filter.Get() }

func (s *Session) Favorites() favorites.Set { return s.favs.Snapshot() }

func (s *Session) UserLocation() *location.Coordinate { return s.user.Get() }

func (s *Session) Permission() bool { return s.permission.Get() }

func (s *Session) Location() *time.Location { return s.loc }

// Visible returns the events passing the current filter. The slice is shared
// and must not be modified.
func (s *Session) Visible() []event.Event { return s.visible.Get() }

func (s *Session) Selected() *event.Event { return s.selected.Get() }

func (s *Session) Camera() camera.Target {
	return camera.Frame(s.selected.Get(), s.visible.Get(), s.cameraCfg)
}

// OnVisibleChange registers fn for every new visible list. fn runs on the
// goroutine that caused the change and must not call back into the session.
func (s *Session) OnVisibleChange(fn func([]event.Event)) (cancel func()) {
	return s.visible.Subscribe(fn)
}

// OnSelectionChange registers fn for selection changes.
func (s *Session) OnSelectionChange(fn func(*event.Event)) (cancel func()) {
	return s.selected.Subscribe(fn)
}

// Selection.

func (s *Session) Select(e event.Event) {
	s.selected.Set(&e)
}

func (s *Session) ClearSelection() {
	s.selected.Set(nil)
}

// Favorites.

func (s *Session) ToggleFavorite(e event.Event) bool {
	added := s.favs.Toggle(e)
	s.logger.Debug().Str("key", e.Key()).Bool("favorite", added).Msg("Toggled favorite")
	return added
}

func (s *Session) IsFavorite(e event.Event) bool {
	return s.favs.IsFavorite(e)
}
