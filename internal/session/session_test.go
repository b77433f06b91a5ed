package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/planair/planair/internal/camera"
	"github.com/planair/planair/internal/event"
	"github.com/planair/planair/internal/favorites"
	"github.com/planair/planair/internal/filter"
	"github.com/planair/planair/internal/location"
)

// A sits at the origin used below; B is about 5 km north of it.
const eventsJSON = `[
  {"title": "A", "date": "10-05-2025", "start_time": "10:00", "category": "SPORT", "price": "0",
   "location": {"address": "Park", "coordinates": [21.0, 52.0]}},
  {"title": "B", "date": "15-05-2025", "start_time": "12:00", "category": "EDUKACJA", "price": "20",
   "location": {"address": "Library", "coordinates": [21.0, 52.0449658]}}
]`

var origin = location.Coordinate{Lat: 52, Lon: 21}

type fixture struct {
	dir       string
	events    string
	favorites string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:       dir,
		events:    filepath.Join(dir, "events.json"),
		favorites: filepath.Join(dir, "favorites.json"),
	}
	if err := os.WriteFile(f.events, []byte(eventsJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f fixture) start(t *testing.T, mutate func(*Options)) *Session {
	t.Helper()
	opts := Options{
		EventsPath: f.events,
		Favorites:  favorites.NewStore(favorites.NewJSONFile(f.favorites), zerolog.Nop()),
		Logger:     zerolog.Nop(),
		Loc:        time.UTC,
	}
	if mutate != nil {
		mutate(&opts)
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	s.Start(context.Background())
	s.Wait()
	return s
}

func visibleTitles(s *Session) []string {
	var out []string
	for _, e := range s.Visible() {
		out = append(out, e.Title)
	}
	return out
}

func expectVisible(t *testing.T, s *Session, want ...string) {
	t.Helper()
	got := visibleTitles(s)
	if len(got) != len(want) {
		t.Fatalf("Visible = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Visible = %v, want %v", got, want)
		}
	}
}

func findEvent(t *testing.T, s *Session, title string) event.Event {
	t.Helper()
	for _, e := range s.Events().Events() {
		if e.Title == title {
			return e
		}
	}
	t.Fatalf("event %q not loaded", title)
	return event.Event{}
}

func TestNewRequiresFavorites(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("New without favorites store should fail")
	}
}

func TestStartLoadsEverything(t *testing.T) {
	f := newFixture(t)
	s := f.start(t, nil)

	if s.Events().Len() != 2 {
		t.Fatalf("loaded %d events, want 2", s.Events().Len())
	}
	expectVisible(t, s, "A", "B")
	if s.ID() == "" {
		t.Error("session should have an id")
	}
}

func TestMissingEventsFile(t *testing.T) {
	f := newFixture(t)
	f.events = filepath.Join(f.dir, "missing.json")
	s := f.start(t, nil)

	if s.Events().Len() != 0 || len(s.Visible()) != 0 {
		t.Error("missing events file should give an empty session")
	}
}

func TestMutationsRecomputeImmediately(t *testing.T) {
	f := newFixture(t)
	s := f.start(t, nil)

	sport := event.CategorySport
	s.SetCategory(&sport)
	expectVisible(t, s, "A")

	s.SetCategory(nil)
	s.SetPriceRange(filter.PricePaid)
	expectVisible(t, s, "B")

	s.SetPriceRange(filter.PriceAll)
	day := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	s.SetStartDate(&day)
	expectVisible(t, s, "B")
	s.SetStartDate(nil)
	s.SetEndDate(&day)
	expectVisible(t, s, "A")
	s.SetEndDate(nil)

	s.SetOrigin(filter.PointOrigin(filter.OriginMapPoint, origin, "Pin"))
	s.SetRadius(3)
	expectVisible(t, s, "A")
	s.SetRadius(10)
	expectVisible(t, s, "A", "B")
}

func TestOnVisibleChange(t *testing.T) {
	f := newFixture(t)
	s := f.start(t, nil)

	var calls [][]event.Event
	cancel := s.OnVisibleChange(func(v []event.Event) { calls = append(calls, v) })
	s.SetPriceRange(filter.PriceFree)
	cancel()
	s.SetPriceRange(filter.PriceAll)

	if len(calls) != 1 || len(calls[0]) != 1 || calls[0][0].Title != "A" {
		t.Errorf("calls = %v", calls)
	}
}

func TestFavoritesOnlyRoundTrip(t *testing.T) {
	f := newFixture(t)
	s := f.start(t, nil)

	sport := event.CategorySport
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	s.SetCategory(&sport)
	s.SetPriceRange(filter.PriceFree)
	s.SetStartDate(&day)
	before := s.Filter()

	s.ToggleFavoritesOnly()
	on := s.Filter()
	if !on.FavoritesOnly || on.Category != nil || on.Price != filter.PriceAll || on.StartDate != nil {
		t.Fatalf("favorites-only state = %+v", on)
	}
	expectVisible(t, s)

	s.ToggleFavorite(findEvent(t, s, "B"))
	expectVisible(t, s, "B")

	s.ToggleFavoritesOnly()
	if !reflect.DeepEqual(s.Filter(), before) {
		t.Errorf("filter after round trip = %+v, want %+v", s.Filter(), before)
	}
	expectVisible(t, s, "A")
}

func TestPrepareForFilterEditing(t *testing.T) {
	f := newFixture(t)
	s := f.start(t, nil)

	paid := filter.PricePaid
	s.SetPriceRange(paid)
	s.ToggleFavoritesOnly()
	s.PrepareForFilterEditing()

	if st := s.Filter(); st.FavoritesOnly || st.Price != paid {
		t.Errorf("state = %+v, want favorites-only off with price restored", st)
	}

	// A second call is a no-op.
	s.PrepareForFilterEditing()
	if s.Filter().Price != paid {
		t.Error("PrepareForFilterEditing changed a normal filter")
	}
}

func TestApplyIntroChoice(t *testing.T) {
	tests := []struct {
		choice    string
		category  *event.Category
		favorites bool
		title     string
	}{
		{"FAVORITES", nil, true, "Favorites"},
		{"SPORT", categoryPtr(event.CategorySport), false, "Sport"},
		{"Kultura", categoryPtr(event.CategoryCulture), false, "Culture"},
		{"nonsense", nil, false, "All"},
	}

	for _, tt := range tests {
		t.Run(tt.choice, func(t *testing.T) {
			f := newFixture(t)
			s := f.start(t, nil)
			s.Select(findEvent(t, s, "A"))

			s.ApplyIntroChoice(tt.choice)
			st := s.Filter()
			if st.FavoritesOnly != tt.favorites {
				t.Errorf("FavoritesOnly = %v, want %v", st.FavoritesOnly, tt.favorites)
			}
			if !reflect.DeepEqual(st.Category, tt.category) {
				t.Errorf("Category = %v, want %v", st.Category, tt.category)
			}
			if st.Title() != tt.title {
				t.Errorf("Title = %q, want %q", st.Title(), tt.title)
			}
			if s.Selected() != nil {
				t.Error("entry choice should clear the selection")
			}
		})
	}
}

func TestResetFiltersKeepsAnchors(t *testing.T) {
	f := newFixture(t)
	s := f.start(t, nil)

	s.ApplyIntroChoice("SPORT")
	s.SetPriceRange(filter.PricePaid)
	s.SetRadius(2)
	day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	s.SetEndDate(&day)
	s.SetCategory(nil)

	s.ResetFilters()
	st := s.Filter()
	if st.Category == nil || *st.Category != event.CategorySport {
		t.Errorf("anchored category lost: %+v", st)
	}
	if st.Price != filter.PriceAll || st.RadiusKm != filter.DefaultRadiusKm || st.EndDate != nil {
		t.Errorf("reset did not restore defaults: %+v", st)
	}
	expectVisible(t, s, "A")
}

func TestResetToDefaults(t *testing.T) {
	f := newFixture(t)
	s := f.start(t, func(o *Options) { o.DefaultRadiusKm = 7 })

	s.SetPriceRange(filter.PriceFree)
	s.ResetToDefaults(filter.ResetOptions{})
	st := s.Filter()
	if st.Price != filter.PriceAll || st.RadiusKm != 7 {
		t.Errorf("state = %+v", st)
	}
}

func TestApplyFilter(t *testing.T) {
	f := newFixture(t)
	s := f.start(t, nil)
	s.Select(findEvent(t, s, "A"))

	st := filter.Default().WithPrice(filter.PricePaid)
	s.ApplyFilter(st)
	if !reflect.DeepEqual(s.Filter(), st) {
		t.Errorf("Filter = %+v", s.Filter())
	}
	if s.Selected() != nil {
		t.Error("ApplyFilter should clear the selection")
	}
	expectVisible(t, s, "B")

	s.SetPriceRange(filter.PriceFree)
	s.ResetFilters()
	if s.Filter().Price != filter.PriceAll {
		t.Error("price is not an anchor")
	}
}

func TestLocationPermissionAndFetch(t *testing.T) {
	f := newFixture(t)
	provider := location.ProviderFunc(func(ctx context.Context) (*location.Coordinate, error) {
		c := origin
		return &c, nil
	})
	s := f.start(t, func(o *Options) { o.Location = provider })

	s.SetOrigin(filter.UserOrigin())
	s.SetRadius(3)
	// Unknown location fails open.
	expectVisible(t, s, "A", "B")

	s.SetLocationPermission(true)
	s.Wait()

	if u := s.UserLocation(); u == nil || *u != origin {
		t.Fatalf("UserLocation = %v", u)
	}
	c, ok := s.Filter().Origin.Coordinate()
	if !ok || c != origin {
		t.Errorf("origin coordinate = %v, %v", c, ok)
	}
	expectVisible(t, s, "A")
}

func TestLocationFallback(t *testing.T) {
	tests := []struct {
		name       string
		permission bool
		provider   location.Provider
	}{
		{"no permission", false, location.Static{Coordinate: &origin}},
		{"provider error", true, location.ProviderFunc(func(context.Context) (*location.Coordinate, error) {
			return nil, errors.New("gps off")
		})},
		{"no fix", true, location.Static{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			s := f.start(t, func(o *Options) {
				o.Location = tt.provider
				o.Permission = tt.permission
			})

			s.SetOrigin(filter.UserOrigin())
			s.RequestLocation(context.Background())
			s.Wait()

			if kind := s.Filter().Origin.Kind; kind != filter.OriginDefault {
				t.Errorf("origin kind = %v, want default", kind)
			}
			if s.UserLocation() != nil {
				t.Error("user location should stay unknown")
			}
		})
	}
}

func TestLocationFailureKeepsMapPoint(t *testing.T) {
	f := newFixture(t)
	s := f.start(t, nil)

	pin := filter.PointOrigin(filter.OriginMapPoint, origin, "Pin")
	s.SetOrigin(pin)
	s.RequestLocation(context.Background())
	s.Wait()

	if s.Filter().Origin.Kind != filter.OriginMapPoint {
		t.Error("fallback should only replace a user-location origin")
	}
}

func TestUseDefaultLocation(t *testing.T) {
	f := newFixture(t)
	center := location.Coordinate{Lat: 52.0449658, Lon: 21}
	s := f.start(t, func(o *Options) {
		o.Camera = camera.Config{DefaultCenter: center, OffsetDp: 100}
		o.DefaultName = "Library"
	})

	s.UseDefaultLocation()
	s.SetRadius(1)

	o := s.Filter().Origin
	if o.Kind != filter.OriginDefault || o.Name != "Library" {
		t.Errorf("origin = %+v", o)
	}
	expectVisible(t, s, "B")
}

func TestSelectionAndCamera(t *testing.T) {
	f := newFixture(t)
	s := f.start(t, nil)

	if got := s.Camera(); got.Mode != camera.ModeBounds {
		t.Errorf("two visible points should frame bounds, got %v", got)
	}

	a := findEvent(t, s, "A")
	s.Select(a)
	if sel := s.Selected(); sel == nil || sel.Key() != a.Key() {
		t.Fatalf("Selected = %v", sel)
	}
	got := s.Camera()
	if got.Mode != camera.ModeCenter || got.Zoom != camera.ZoomSelected || got.Center != origin {
		t.Errorf("Camera = %v", got)
	}

	// Selection does not filter.
	expectVisible(t, s, "A", "B")

	s.ClearSelection()
	if s.Selected() != nil {
		t.Error("ClearSelection left a selection")
	}

	s.SetPriceRange(filter.PriceFree)
	if got := s.Camera(); got.Zoom != camera.ZoomSingle {
		t.Errorf("single visible event should zoom %v, got %v", camera.ZoomSingle, got.Zoom)
	}
}

func TestFavoritesPersistAcrossSessions(t *testing.T) {
	f := newFixture(t)
	s := f.start(t, nil)

	b := findEvent(t, s, "B")
	if !s.ToggleFavorite(b) || !s.IsFavorite(b) {
		t.Fatal("toggle should add the favorite")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	next := f.start(t, nil)
	if !next.IsFavorite(b) {
		t.Error("favorite not restored")
	}
	next.ToggleFavoritesOnly()
	expectVisible(t, next, "B")
}

func TestWatchReloadsEvents(t *testing.T) {
	f := newFixture(t)
	s := f.start(t, func(o *Options) { o.WatchEvents = true })
	expectVisible(t, s, "A", "B")

	updated := `[{"title": "C", "date": "20-05-2025", "category": "KULTURA", "price": "0"}]`
	if err := os.WriteFile(f.events, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if titles := visibleTitles(s); len(titles) == 1 && titles[0] == "C" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("events not reloaded, visible = %v", visibleTitles(s))
}

func TestReload(t *testing.T) {
	f := newFixture(t)
	s := f.start(t, nil)

	if err := os.WriteFile(f.events, []byte(`[{"title": "C", "date": "20-05-2025"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	s.Reload()
	s.Wait()
	expectVisible(t, s, "C")

	s.Close()
	s.Reload()
	expectVisible(t, s, "C")
}

func categoryPtr(c event.Category) *event.Category { return &c }
