package event

import (
	"fmt"
	"net/url"
	"strconv"
)

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (e Event) navigationLabel() string {
	if e.Location != nil && e.Location.Address != "" {
		return e.Location.Address
	}
	if e.Title != "" {
		return e.Title
	}
	return "Event location"
}

// NavigationURI returns a geo: URI that drops a labelled pin on the event in a
// maps application.
func (e Event) NavigationURI() (string, bool) {
	c, ok := e.Coords()
	if !ok {
		return "", false
	}
	lat, lon := formatDegrees(c.Lat), formatDegrees(c.Lon)
	return fmt.Sprintf("geo:%s,%s?q=%s,%s(%s)", lat, lon, lat, lon, url.PathEscape(e.navigationLabel())), true
}

// WebMapURL is the browser fallback for NavigationURI.
func (e Event) WebMapURL() (string, bool) {
	c, ok := e.Coords()
	if !ok {
		return "", false
	}
	q := url.Values{}
	q.Set("api", "1")
	q.Set("query", formatDegrees(c.Lat)+","+formatDegrees(c.Lon))
	return "https://www.google.com/maps/search/?" + q.Encode(), true
}
