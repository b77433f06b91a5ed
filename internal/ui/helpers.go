package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/planair/planair/internal/event"
	"github.com/planair/planair/internal/filter"
	"github.com/planair/planair/internal/session"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// radiusSteps are the radius values offered by radius_up and radius_down.
var radiusSteps = []float64{1, 2, 5, 10, 20, 50, 100, 250}

type introChoice struct {
	label string
	value string
}

func introChoices() []introChoice {
	choices := []introChoice{{label: "All events", value: ""}}
	for _, c := range event.Categories {
		choices = append(choices, introChoice{label: c.String(), value: c.String()})
	}
	return append(choices, introChoice{label: "My favorites", value: session.FavoritesChoice})
}

// cycleCategory moves through "any" followed by event.Categories.
func cycleCategory(current *event.Category, delta int) *event.Category {
	options := make([]*event.Category, 0, len(event.Categories)+1)
	options = append(options, nil)
	for i := range event.Categories {
		options = append(options, &event.Categories[i])
	}

	idx := 0
	if current != nil {
		for i, c := range options {
			if c != nil && *c == *current {
				idx = i
				break
			}
		}
	}
	idx = (idx + delta + len(options)) % len(options)
	return options[idx]
}

// stepRadius returns the next radius step above or below km.
func stepRadius(km float64, delta int) float64 {
	if delta > 0 {
		for _, step := range radiusSteps {
			if step > km {
				return step
			}
		}
		return radiusSteps[len(radiusSteps)-1]
	}
	for i := len(radiusSteps) - 1; i >= 0; i-- {
		if radiusSteps[i] < km {
			return radiusSteps[i]
		}
	}
	return radiusSteps[0]
}

// listRows is the number of event rows that fit between header and status bar.
func (m *Model) listRows() int {
	rows := m.height - 4
	if rows < 1 {
		return 1
	}
	return rows
}

func (m *Model) listWidth() int {
	w := m.width * 3 / 5
	if w < 40 {
		w = 40
	}
	return w
}

func (m *Model) formatBound(t *time.Time) string {
	if t == nil {
		return "any"
	}
	return t.Format(m.config.DateFormat)
}

// formatEventDate renders the event date in the configured layout, falling
// back to the raw value when it does not parse.
func (m *Model) formatEventDate(e event.Event) string {
	d, err := event.ParseDate(e.Date, m.session.Location())
	if err != nil {
		return e.Date
	}
	return d.Format(m.config.DateFormat)
}

func (m *Model) filterSummary(st filter.State) string {
	if st.FavoritesOnly {
		return "Favorites only"
	}
	parts := []string{
		"Category: " + st.Title(),
		"Price: " + st.Price.String(),
		fmt.Sprintf("From: %s", m.formatBound(st.StartDate)),
		fmt.Sprintf("To: %s", m.formatBound(st.EndDate)),
	}
	if _, ok := st.Origin.Coordinate(); ok || st.Origin.Kind == filter.OriginUserLocation {
		parts = append(parts, fmt.Sprintf("Within %g km of %s", st.RadiusKm, st.Origin.Name))
	} else {
		parts = append(parts, "Anywhere")
	}
	return strings.Join(parts, " | ")
}

func (m *Model) renderEventLine(e event.Event, highlighted bool, width int) string {
	marker := "  "
	if m.session.IsFavorite(e) {
		marker = "★ "
	}
	if sel := m.session.Selected(); sel != nil && sel.Key() == e.Key() {
		marker = "> "
	}

	line := fmt.Sprintf("%s%-10s %-5s %s", marker, m.formatEventDate(e), e.StartTime, e.Title)
	if lipgloss.Width(line) > width {
		line = truncate(line, width)
	}

	switch {
	case highlighted:
		return m.styles.Selected.Render(line)
	case m.session.IsFavorite(e):
		return m.styles.Favorite.Render(line)
	default:
		return m.styles.Normal.Render(line)
	}
}

// renderDetail renders the selected event, or the one under the cursor, for
// the right-hand pane.
func (m *Model) renderDetail(width int) string {
	e, ok := m.targetEvent()
	if !ok {
		return m.styles.Border.Width(width).Render(m.styles.Help.Render("(no events match the filter)"))
	}

	wrapWidth := width - 4
	if wrapWidth < 20 {
		wrapWidth = 20
	}

	var lines []string
	lines = append(lines, m.styles.Header.Render(wordwrap.String(e.Title, wrapWidth)))
	lines = append(lines, "")

	when := m.formatEventDate(e)
	if e.StartTime != "" {
		when += " " + e.StartTime
	}
	lines = append(lines, m.styles.Normal.Render(when))
	lines = append(lines, m.styles.Normal.Render(e.Category.String()))

	if e.IsFree() {
		lines = append(lines, m.styles.Free.Render("Free"))
	} else {
		lines = append(lines, m.styles.Paid.Render("Price: "+e.Price))
	}

	if e.Location != nil {
		place := strings.Join(nonEmpty(e.Location.Address, e.Location.District, e.Location.City), ", ")
		if place != "" {
			lines = append(lines, m.styles.Normal.Render(wordwrap.String(place, wrapWidth)))
		}
	}

	if e.Description != "" {
		lines = append(lines, "")
		for _, line := range strings.Split(wordwrap.String(e.Description, wrapWidth), "\n") {
			if line != "" {
				lines = append(lines, line)
			}
		}
	}

	if e.SourceLink != "" {
		lines = append(lines, "")
		lines = append(lines, m.styles.Help.Render(wordwrap.String(e.SourceLink, wrapWidth)))
	}

	if m.session.IsFavorite(e) {
		lines = append(lines, "")
		lines = append(lines, m.styles.Favorite.Render("★ Favorite"))
	}

	lines = append(lines, "")
	lines = append(lines, m.styles.Help.Render("Map: "+m.session.Camera().String()))

	return m.styles.Border.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func truncate(s string, width int) string {
	if width <= 1 {
		return ""
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
