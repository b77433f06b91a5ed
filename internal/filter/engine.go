package filter

import (
	"time"

	"github.com/planair/planair/internal/event"
	"github.com/planair/planair/internal/location"
)

// KeySet answers favorites membership by derived event key.
type KeySet interface {
	Contains(key string) bool
}

// Input is everything the engine looks at. It is a plain snapshot; nothing in
// it is mutated.
type Input struct {
	Events    []event.Event
	State     State
	Favorites KeySet
	User      *location.Coordinate
	Loc       *time.Location
}

// Apply returns the events that pass every applicable criterion, in their
// original order. It has no side effects.
func Apply(in Input) []event.Event {
	visible := make([]event.Event, 0, len(in.Events))
	for _, e := range in.Events {
		if Matches(e, in) {
			visible = append(visible, e)
		}
	}
	return visible
}

// Matches evaluates a single event. Favorites-only mode is exclusive: when it
// is on, membership is the only criterion.
func Matches(e event.Event, in Input) bool {
	s := in.State
	if s.FavoritesOnly {
		return in.Favorites != nil && in.Favorites.Contains(e.Key())
	}
	return MatchesCategory(e, s) &&
		MatchesPrice(e, s) &&
		WithinRadius(e, s, in.User) &&
		WithinDates(e, s, in.Loc)
}

func MatchesCategory(e event.Event, s State) bool {
	return s.Category == nil || e.Category == *s.Category
}

func MatchesPrice(e event.Event, s State) bool {
	switch s.Price {
	case PriceFree:
		return e.IsFree()
	case PricePaid:
		return !e.IsFree()
	default:
		return true
	}
}

// WithinRadius applies the spatial gate. A user-location origin uses the live
// position and lets everything through while that position is unknown. Other
// origins constrain only when they carry a coordinate. Events without
// coordinates fail whenever a concrete origin is in effect.
func WithinRadius(e event.Event, s State, user *location.Coordinate) bool {
	var origin location.Coordinate
	switch s.Origin.Kind {
	case OriginUserLocation:
		if user == nil {
			return true
		}
		origin = *user
	default:
		c, ok := s.Origin.Coordinate()
		if !ok {
			return true
		}
		origin = c
	}

	ec, ok := e.Coords()
	if !ok {
		return false
	}
	return Distance(origin, location.Coordinate{Lat: ec.Lat, Lon: ec.Lon}) <= s.RadiusKm
}

// WithinDates applies the inclusive day-granular date range. Events whose
// date cannot be parsed fail whenever a bound is set.
func WithinDates(e event.Event, s State, loc *time.Location) bool {
	if s.StartDate == nil && s.EndDate == nil {
		return true
	}
	if loc == nil {
		loc = time.Local
	}
	day, err := event.ParseDate(e.Date, loc)
	if err != nil {
		return false
	}
	if s.StartDate != nil && day.Before(event.StartOfDay(*s.StartDate, loc)) {
		return false
	}
	if s.EndDate != nil && day.After(event.EndOfDay(*s.EndDate, loc)) {
		return false
	}
	return true
}
