package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// ErrUnavailable is returned when a provider cannot determine a position.
var ErrUnavailable = errors.New("location unavailable")

// Coordinate is a position in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

func (c Coordinate) valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// ParseCoordinate parses "lat,lon".
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: expected lat,lon", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid latitude in %q: %w", s, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid longitude in %q: %w", s, err)
	}
	c := Coordinate{Lat: lat, Lon: lon}
	if !c.valid() {
		return Coordinate{}, fmt.Errorf("coordinate %q out of range", s)
	}
	return c, nil
}

// Provider yields the user's last known position. A nil coordinate with a nil
// error means the position is simply not known yet.
type Provider interface {
	LastKnown(ctx context.Context) (*Coordinate, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (*Coordinate, error)

func (f ProviderFunc) LastKnown(ctx context.Context) (*Coordinate, error) {
	return f(ctx)
}

// Static always reports the same position, or none.
type Static struct {
	Coordinate *Coordinate
}

func (s Static) LastKnown(ctx context.Context) (*Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Coordinate == nil {
		return nil, nil
	}
	c := *s.Coordinate
	return &c, nil
}

// File reads the last known position from a small JSON document such as
// {"lat": 52.23, "lon": 21.01}, kept up to date by an external helper.
type File struct {
	Path string
}

func (f File) LastKnown(ctx context.Context) (*Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read location file: %w", err)
	}
	var c Coordinate
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: failed to parse location file: %v", ErrUnavailable, err)
	}
	if !c.valid() {
		return nil, fmt.Errorf("%w: location file coordinate out of range", ErrUnavailable)
	}
	return &c, nil
}
