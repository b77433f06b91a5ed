// Package camera decides what part of the map should be shown for the current
// selection and visible events.
package camera

import (
	"fmt"
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/planair/planair/internal/event"
	"github.com/planair/planair/internal/location"
)

const (
	ZoomSelected = 17.0
	ZoomSingle   = 15.0
	ZoomNoCoords = 10.0
	ZoomEmpty    = 6.0

	// BoundsPadding is the fraction of each axis' span added on every side.
	BoundsPadding = 0.10

	DefaultOffsetDp = 200
)

// minPaddingDeg keeps a box around collinear points from collapsing.
const minPaddingDeg = 0.001

var validLat = r1.Interval{Lo: -math.Pi / 2, Hi: math.Pi / 2}

var DefaultCenter = location.Coordinate{Lat: 52.2370, Lon: 21.0170}

type Config struct {
	DefaultCenter location.Coordinate
	OffsetDp      int
}

func DefaultConfig() Config {
	return Config{DefaultCenter: DefaultCenter, OffsetDp: DefaultOffsetDp}
}

type Mode int

const (
	ModeCenter Mode = iota
	ModeBounds
)

// Bounds is a latitude/longitude box. West may exceed East when the box
// crosses the antimeridian.
type Bounds struct {
	South, West, North, East float64
}

func (b Bounds) Contains(c location.Coordinate) bool {
	return rectOf(b).ContainsLatLng(s2.LatLngFromDegrees(c.Lat, c.Lon))
}

// Target is where the map should look.
type Target struct {
	Mode     Mode
	Center   location.Coordinate
	Zoom     float64
	OffsetDp int
	Bounds   Bounds
}

func (t Target) String() string {
	if t.Mode == ModeBounds {
		return fmt.Sprintf("bounds %.4f,%.4f to %.4f,%.4f", t.Bounds.South, t.Bounds.West, t.Bounds.North, t.Bounds.East)
	}
	if t.OffsetDp != 0 {
		return fmt.Sprintf("%s zoom %.0f offset %ddp", t.Center, t.Zoom, t.OffsetDp)
	}
	return fmt.Sprintf("%s zoom %.0f", t.Center, t.Zoom)
}

// Frame returns the target for a selection (nil when nothing is selected) and
// the visible events. A selection without coordinates frames the visible
// events instead.
func Frame(selected *event.Event, visible []event.Event, cfg Config) Target {
	if selected != nil {
		if c, ok := selected.Coords(); ok {
			return Target{
				Mode:     ModeCenter,
				Center:   location.Coordinate{Lat: c.Lat, Lon: c.Lon},
				Zoom:     ZoomSelected,
				OffsetDp: cfg.OffsetDp,
			}
		}
	}

	if len(visible) == 0 {
		return Target{Mode: ModeCenter, Center: cfg.DefaultCenter, Zoom: ZoomEmpty}
	}

	var points []s2.LatLng
	seen := make(map[[2]float64]bool)
	for _, e := range visible {
		c, ok := e.Coords()
		if !ok {
			continue
		}
		k := [2]float64{c.Lat, c.Lon}
		if seen[k] {
			continue
		}
		seen[k] = true
		points = append(points, s2.LatLngFromDegrees(c.Lat, c.Lon))
	}

	switch len(points) {
	case 0:
		return Target{Mode: ModeCenter, Center: cfg.DefaultCenter, Zoom: ZoomNoCoords}
	case 1:
		return Target{Mode: ModeCenter, Center: toCoordinate(points[0]), Zoom: ZoomSingle}
	}

	rect := s2.RectFromLatLng(points[0])
	for _, p := range points[1:] {
		rect = rect.AddPoint(p)
	}
	size := rect.Size()
	rect = s2.Rect{
		Lat: rect.Lat.Expanded(pad(size.Lat).Radians()).Intersection(validLat),
		Lng: rect.Lng.Expanded(pad(size.Lng).Radians()),
	}

	return Target{
		Mode:   ModeBounds,
		Center: toCoordinate(rect.Center()),
		Bounds: Bounds{
			South: rect.Lo().Lat.Degrees(),
			West:  rect.Lo().Lng.Degrees(),
			North: rect.Hi().Lat.Degrees(),
			East:  rect.Hi().Lng.Degrees(),
		},
	}
}

func pad(span s1.Angle) s1.Angle {
	p := span * BoundsPadding
	if p.Degrees() < minPaddingDeg {
		return minPaddingDeg * s1.Degree
	}
	return p
}

func toCoordinate(ll s2.LatLng) location.Coordinate {
	return location.Coordinate{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}
}

func rectOf(b Bounds) s2.Rect {
	return s2.Rect{
		Lat: r1.Interval{Lo: (s1.Angle(b.South) * s1.Degree).Radians(), Hi: (s1.Angle(b.North) * s1.Degree).Radians()},
		Lng: s1.IntervalFromEndpoints((s1.Angle(b.West) * s1.Degree).Radians(), (s1.Angle(b.East) * s1.Degree).Radians()),
	}
}
