package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/planair/planair/internal/event"
	"github.com/planair/planair/internal/location"
)

// DefaultRadiusKm is the radius used when no other value has been chosen.
const DefaultRadiusKm = 20.0

type PriceRange int

const (
	PriceAll PriceRange = iota
	PriceFree
	PricePaid
)

func (p PriceRange) String() string {
	switch p {
	case PriceFree:
		return "Free"
	case PricePaid:
		return "Paid"
	default:
		return "All"
	}
}

// ParsePriceRange accepts all, free or paid, case-insensitively.
func ParsePriceRange(s string) (PriceRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return PriceAll, nil
	case "free":
		return PriceFree, nil
	case "paid":
		return PricePaid, nil
	default:
		return PriceAll, fmt.Errorf("invalid price range: %s", s)
	}
}

type OriginKind int

const (
	OriginDefault OriginKind = iota
	OriginUserLocation
	OriginMapPoint
)

func (k OriginKind) String() string {
	switch k {
	case OriginUserLocation:
		return "user location"
	case OriginMapPoint:
		return "map point"
	default:
		return "default location"
	}
}

// Origin is the reference point of the radius filter.
type Origin struct {
	Kind OriginKind
	Lat  *float64
	Lon  *float64
	Name string
}

// DefaultOrigin carries no coordinate and therefore constrains nothing.
func DefaultOrigin() Origin {
	return Origin{Kind: OriginDefault, Name: "Default location"}
}

// UserOrigin follows the live user location.
func UserOrigin() Origin {
	return Origin{Kind: OriginUserLocation, Name: "My location"}
}

// PointOrigin is an origin with an explicit coordinate.
func PointOrigin(kind OriginKind, c location.Coordinate, name string) Origin {
	lat, lon := c.Lat, c.Lon
	return Origin{Kind: kind, Lat: &lat, Lon: &lon, Name: name}
}

// Coordinate returns the explicit coordinate of the origin, if it has one.
func (o Origin) Coordinate() (location.Coordinate, bool) {
	if o.Lat == nil || o.Lon == nil {
		return location.Coordinate{}, false
	}
	return location.Coordinate{Lat: *o.Lat, Lon: *o.Lon}, true
}

// State is an immutable snapshot of every filter criterion. All methods return
// modified copies.
type State struct {
	Category      *event.Category // nil means any
	RadiusKm      float64
	Price         PriceRange
	StartDate     *time.Time
	EndDate       *time.Time
	Origin        Origin
	FavoritesOnly bool
}

// Default returns the state that lets every event through.
func Default() State {
	return State{
		RadiusKm: DefaultRadiusKm,
		Price:    PriceAll,
		Origin:   DefaultOrigin(),
	}
}

func (s State) WithCategory(c *event.Category) State {
	if c != nil {
		v := *c
		c = &v
	}
	s.Category = c
	return s
}

func (s State) WithRadius(km float64) State {
	if km < 0 {
		km = 0
	}
	s.RadiusKm = km
	return s
}

func (s State) WithPrice(p PriceRange) State {
	s.Price = p
	return s
}

func (s State) WithStartDate(t *time.Time) State {
	s.StartDate = copyTime(t)
	return s
}

func (s State) WithEndDate(t *time.Time) State {
	s.EndDate = copyTime(t)
	return s
}

func (s State) WithOrigin(o Origin) State {
	s.Origin = o
	return s
}

// ToggleFavoritesOnly flips favorites-only mode. Entering it clears the
// category, since favorites-only bypasses every other criterion.
func (s State) ToggleFavoritesOnly() State {
	s.FavoritesOnly = !s.FavoritesOnly
	if s.FavoritesOnly {
		s.Category = nil
	}
	return s
}

// ResetOptions names the fields a reset keeps. Nil fields take defaults.
type ResetOptions struct {
	Category      *event.Category
	FavoritesOnly *bool
	Origin        *Origin
}

// Reset returns the default state with the preserved fields applied.
func Reset(opts ResetOptions) State {
	s := Default().WithCategory(opts.Category)
	if opts.FavoritesOnly != nil {
		s.FavoritesOnly = *opts.FavoritesOnly
	}
	if opts.Origin != nil {
		s.Origin = *opts.Origin
	}
	return s
}

// Title is a short label for the active selection, used in headers.
func (s State) Title() string {
	if s.FavoritesOnly {
		return "Favorites"
	}
	if s.Category == nil {
		return "All"
	}
	return s.Category.String()
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
