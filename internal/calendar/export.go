// Package calendar exports events as iCalendar data.
package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/planair/planair/internal/event"
)

const productID = "-//PlanAir//Event Export//EN"

var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://planair.app/events"))

// UID is stable for a given event key, so re-exports update rather than
// duplicate calendar entries.
func UID(e event.Event) string {
	return uuid.NewSHA1(eventNamespace, []byte(e.Key())).String() + "@planair"
}

// Export writes one VEVENT per event and returns how many were written. Events
// whose date cannot be parsed are skipped.
func Export(w io.Writer, events []event.Event, loc *time.Location, now time.Time) (int, error) {
	if loc == nil {
		loc = time.Local
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	written := 0
	for _, e := range events {
		day, err := event.ParseDate(e.Date, loc)
		if err != nil {
			continue
		}

		ve := cal.AddEvent(UID(e))
		ve.SetDtStampTime(now.UTC())
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.SourceLink != "" {
			ve.SetURL(e.SourceLink)
		}
		if where := locationText(e); where != "" {
			ve.SetLocation(where)
		}
		if c, ok := e.Coords(); ok {
			ve.SetProperty(ical.ComponentPropertyGeo, fmt.Sprintf("%.6f;%.6f", c.Lat, c.Lon))
		}
		if e.Category != event.CategoryOther {
			ve.SetProperty(ical.ComponentPropertyCategories, e.Category.String())
		}

		if start, ok := startTime(day, e.StartTime, loc); ok {
			ve.SetStartAt(start)
		} else {
			ve.SetAllDayStartAt(day)
		}
		written++
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return 0, fmt.Errorf("failed to write calendar: %w", err)
	}
	return written, nil
}

func startTime(day time.Time, hhmm string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation("15:04", strings.TrimSpace(hhmm), loc)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
}

func locationText(e event.Event) string {
	if e.Location == nil {
		return ""
	}
	var parts []string
	for _, p := range []string{e.Location.Address, e.Location.District, e.Location.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
