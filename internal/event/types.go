package event

import (
	"strings"
)

type Category int

const (
	CategoryOther Category = iota
	CategorySport
	CategoryCulture
	CategoryEducation
	CategorySocialActivity
)

// Categories lists the selectable categories in display order.
var Categories = []Category{
	CategorySport,
	CategoryCulture,
	CategoryEducation,
	CategorySocialActivity,
	CategoryOther,
}

func (c Category) String() string {
	switch c {
	case CategorySport:
		return "Sport"
	case CategoryCulture:
		return "Culture"
	case CategoryEducation:
		return "Education"
	case CategorySocialActivity:
		return "Social Activity"
	default:
		return "Other"
	}
}

// ParseCategory maps a source label to a Category. The second result is false
// when the label is not recognized and CategoryOther was substituted.
func ParseCategory(s string) (Category, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SPORT":
		return CategorySport, true
	case "KULTURA I ROZRYWKA", "KULTURA", "CULTURE":
		return CategoryCulture, true
	case "EDUKACJA", "EDUCATION":
		return CategoryEducation, true
	case "SPOTKANIA I INTEGRACJE", "AKTYWNOSC_SPOLECZNA", "SOCIAL ACTIVITY", "SOCIALACTIVITY", "SOCIAL_ACTIVITY":
		return CategorySocialActivity, true
	case "OTHER", "INNE":
		return CategoryOther, true
	default:
		return CategoryOther, false
	}
}

// Coordinates is a point in degrees.
type Coordinates struct {
	Lon float64
	Lat float64
}

type Location struct {
	City        string
	District    string
	Address     string
	Coordinates *Coordinates
}

type Event struct {
	ID          string // optional, as supplied by the source
	Title       string
	Description string
	Date        string // dd-MM-yyyy, kept raw
	StartTime   string
	Category    Category
	Price       string
	Location    *Location
	SourceLink  string
	ImageURL    string
}

// Key is the identity used for favorites and selection. A source-supplied ID
// wins; otherwise the key is built from title, date and start time, and events
// sharing all three collapse to the same key.
func (e Event) Key() string {
	if e.ID != "" {
		return "id:" + e.ID
	}
	title := e.Title
	if title == "" {
		title = "no_title"
	}
	date := e.Date
	if date == "" {
		date = "no_date"
	}
	start := e.StartTime
	if start == "" {
		start = "no_start_time"
	}
	return title + "_" + date + "_" + start
}

// Coords returns the event coordinates, if any.
func (e Event) Coords() (Coordinates, bool) {
	if e.Location == nil || e.Location.Coordinates == nil {
		return Coordinates{}, false
	}
	return *e.Location.Coordinates, true
}
