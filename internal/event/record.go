package event

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Record is a single event as it appears in the source file.
type Record struct {
	ID          any             `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description" yaml:"description"`
	Date        string          `json:"date" yaml:"date"`
	StartTime   string          `json:"start_time" yaml:"start_time"`
	Category    string          `json:"category" yaml:"category"`
	Price       Text            `json:"price" yaml:"price"`
	Location    *LocationRecord `json:"location,omitempty" yaml:"location,omitempty"`
	SourceLink  string          `json:"source_link,omitempty" yaml:"source_link,omitempty"`
	ImageURL    string          `json:"image_url,omitempty" yaml:"image_url,omitempty"`
}

type LocationRecord struct {
	City        string      `json:"city" yaml:"city"`
	District    string      `json:"district" yaml:"district"`
	Address     string      `json:"address" yaml:"address"`
	Coordinates PointRecord `json:"coordinates" yaml:"coordinates"`
}

// Text is a string field that also accepts a bare JSON number, so both
// "price": "15" and "price": 15 decode to "15".
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or number, got %s", data)
	}
	*t = Text(n.String())
	return nil
}

// PointRecord accepts either a bare [lon, lat] array or a GeoJSON-style
// {"type": "Point", "coordinates": [lon, lat]} object.
type PointRecord struct {
	Values []float64 `validate:"omitempty,min=2"`
}

type geoJSONPoint struct {
	Type        string    `json:"type" yaml:"type"`
	Coordinates []float64 `json:"coordinates" yaml:"coordinates"`
}

func (p *PointRecord) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		p.Values = nil
		return nil
	}
	var values []float64
	if err := json.Unmarshal(data, &values); err == nil {
		p.Values = values
		return nil
	}
	var point geoJSONPoint
	if err := json.Unmarshal(data, &point); err != nil {
		return fmt.Errorf("coordinates: %w", err)
	}
	p.Values = point.Coordinates
	return nil
}

func (p *PointRecord) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		return node.Decode(&p.Values)
	case yaml.MappingNode:
		var point geoJSONPoint
		if err := node.Decode(&point); err != nil {
			return fmt.Errorf("coordinates: %w", err)
		}
		p.Values = point.Coordinates
		return nil
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			p.Values = nil
			return nil
		}
	}
	return fmt.Errorf("coordinates: unexpected yaml node at line %d", node.Line)
}

// Validate checks the record structure. Missing text fields are allowed.
func (r Record) Validate() error {
	return validate.Struct(r)
}

// Conversion problems that do not invalidate the whole record.
type Issue struct {
	Field   string
	Message string
}

// ToEvent converts a validated record. Recoverable problems (unknown category,
// bad coordinates, malformed date) are returned as issues; the event is still
// usable.
func (r Record) ToEvent() (Event, []Issue) {
	var issues []Issue

	category, ok := ParseCategory(r.Category)
	if !ok {
		issues = append(issues, Issue{Field: "category", Message: fmt.Sprintf("unknown category %q, using %s", r.Category, CategoryOther)})
	}

	if _, err := ParseDate(r.Date, nil); err != nil {
		issues = append(issues, Issue{Field: "date", Message: err.Error()})
	}

	e := Event{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		StartTime:   r.StartTime,
		Category:    category,
		Price:       string(r.Price),
		SourceLink:  r.SourceLink,
		ImageURL:    r.ImageURL,
	}
	if r.ID != nil {
		e.ID = fmt.Sprint(r.ID)
	}

	if r.Location != nil {
		loc := &Location{
			City:     r.Location.City,
			District: r.Location.District,
			Address:  r.Location.Address,
		}
		if values := r.Location.Coordinates.Values; len(values) >= 2 {
			lon, lat := values[0], values[1]
			if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
				issues = append(issues, Issue{Field: "coordinates", Message: fmt.Sprintf("out of range: lon=%v lat=%v", lon, lat)})
			} else {
				loc.Coordinates = &Coordinates{Lon: lon, Lat: lat}
			}
		}
		e.Location = loc
	}

	return e, issues
}
