package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *Model) viewIntro() string {
	lines := []string{
		m.styles.Header.Render("PlanAir"),
		"",
		m.styles.Normal.Render("What are you looking for?"),
		"",
	}
	for i, c := range introChoices() {
		label := "  " + c.label
		if i == m.introCursor {
			lines = append(lines, m.styles.Selected.Render(label))
		} else {
			lines = append(lines, m.styles.Normal.Render(label))
		}
	}
	lines = append(lines, "", m.styles.Help.Render("j/k to move, Enter to choose, Esc to skip"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) viewList() string {
	st := m.session.Filter()
	header := m.styles.Header.Render(fmt.Sprintf("PlanAir: %s", st.Title()))
	summary := m.styles.Help.Render(m.filterSummary(st))

	width := m.listWidth()
	var rows []string
	if len(m.events) == 0 {
		rows = append(rows, m.styles.Help.Render("No events"))
	}
	end := m.top + m.listRows()
	if end > len(m.events) {
		end = len(m.events)
	}
	for i := m.top; i < end; i++ {
		rows = append(rows, m.renderEventLine(m.events[i], i == m.cursor, width))
	}
	list := lipgloss.NewStyle().Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	detailWidth := m.width - width - 3
	if detailWidth < 30 {
		detailWidth = 30
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, list, " ", m.renderDetail(detailWidth))

	return lipgloss.JoinVertical(lipgloss.Left, header, summary, body, m.renderStatusBar())
}

func (m *Model) viewHelp() string {
	help := []string{
		m.styles.Header.Render("PlanAir Help"),
		"",
		m.styles.Normal.Render("Navigation:"),
		m.styles.Help.Render("  j/↓     - Next event"),
		m.styles.Help.Render("  k/↑     - Previous event"),
		m.styles.Help.Render("  Enter   - Select event"),
		m.styles.Help.Render("  Esc     - Clear selection"),
		"",
		m.styles.Normal.Render("Filters:"),
		m.styles.Help.Render("  c/C     - Next/previous category"),
		m.styles.Help.Render("  p       - Cycle price (all, free, paid)"),
		m.styles.Help.Render("  +/-     - Widen/narrow radius"),
		m.styles.Help.Render("  o       - Cycle radius origin"),
		m.styles.Help.Render("  s/e     - Set start/end date"),
		m.styles.Help.Render("  F       - Favorites only"),
		m.styles.Help.Render("  x       - Reset filters"),
		"",
		m.styles.Normal.Render("Actions:"),
		m.styles.Help.Render("  f       - Toggle favorite"),
		m.styles.Help.Render("  n       - Show navigation link"),
		m.styles.Help.Render("  l       - Refresh my location"),
		m.styles.Help.Render("  L       - Toggle location permission"),
		m.styles.Help.Render("  r       - Reload events"),
		m.styles.Help.Render("  ?       - Toggle help"),
		m.styles.Help.Render("  q       - Quit"),
		"",
		m.styles.Help.Render("Press any key to return..."),
	}

	return lipgloss.JoinVertical(lipgloss.Left, help...)
}

func (m *Model) viewDateInput() string {
	var sections []string

	title := "Start Date"
	if m.dateField == fieldEnd {
		title = "End Date"
	}
	sections = append(sections, m.styles.Header.Render(title))
	sections = append(sections, "")

	prompt := m.styles.Normal.Render("Enter a date (e.g., 'today', 'next friday', '10-05-2025'), empty to clear:")
	sections = append(sections, prompt)

	// Show input with cursor
	input := string(m.inputBuffer[:m.cursorPos]) + "█" + string(m.inputBuffer[m.cursorPos:])
	sections = append(sections, m.styles.Selected.Render(input))
	sections = append(sections, "")

	sections = append(sections, m.styles.Help.Render("Enter to apply, Esc to cancel"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderStatusBar() string {
	left := fmt.Sprintf(" Events: %d/%d | Favorites: %d",
		len(m.events),
		m.session.Events().Len(),
		m.session.Favorites().Len())
	if user := m.session.UserLocation(); user != nil {
		left += " | Me: " + user.String()
	}

	right := "? for help | q to quit"
	if m.message != "" {
		right = m.styles.Message.Render(m.message)
	}

	width := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if width < 0 {
		width = 0
	}

	middle := strings.Repeat(" ", width)

	return m.styles.Help.Render(left + middle + right)
}
