package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/planair/planair/internal/config"
	"github.com/planair/planair/internal/dateinput"
	"github.com/planair/planair/internal/event"
	"github.com/planair/planair/internal/filter"
	"github.com/planair/planair/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type ViewMode int

const (
	ViewIntro ViewMode = iota
	ViewList
	ViewHelp
	ViewDateInput
)

type dateField int

const (
	fieldStart dateField = iota
	fieldEnd
)

const messageTimeout = 3 * time.Second

type Model struct {
	// Core components
	config  *config.Config
	session *session.Session
	parser  *dateinput.Parser

	// View state
	mode        ViewMode
	events      []event.Event
	cursor      int
	top         int
	introCursor int

	// UI state
	width      int
	height     int
	message    string
	messageSeq int

	// Date input state
	dateField   dateField
	inputBuffer []rune
	cursorPos   int

	// Styles
	styles Styles
}

type Styles struct {
	Normal   lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style
	Favorite lipgloss.Style
	Free     lipgloss.Style
	Paid     lipgloss.Style
	Help     lipgloss.Style
	Message  lipgloss.Style
	Border   lipgloss.Style
}

func NewModel(cfg *config.Config, s *session.Session) *Model {
	m := &Model{
		config:  cfg,
		session: s,
		parser:  dateinput.NewParser(s.Location()),
		mode:    ViewIntro,
		styles:  NewStyles(cfg.Colors),
	}
	m.refresh()
	return m
}

func DefaultStyles() Styles {
	return Styles{
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color("220")).
			Bold(true),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true).
			Underline(true),
		Favorite: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true),
		Free: lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")),
		Paid: lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Message: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")),
	}
}

// NewStyles applies the configured colors on top of DefaultStyles.
func NewStyles(colors map[string]string) Styles {
	s := DefaultStyles()
	for name, spec := range colors {
		c := lipgloss.Color(spec)
		switch name {
		case "normal":
			s.Normal = s.Normal.Foreground(c)
		case "selected":
			s.Selected = s.Selected.Background(c)
		case "header":
			s.Header = s.Header.Foreground(c)
		case "favorite":
			s.Favorite = s.Favorite.Foreground(c)
		case "free":
			s.Free = s.Free.Foreground(c)
		case "paid":
			s.Paid = s.Paid.Foreground(c)
		case "help":
			s.Help = s.Help.Foreground(c)
		}
	}
	return s
}

// Subscribe notifies the program of visible-list changes. Sends happen on a
// new goroutine so the session is never blocked by the event loop; they may
// arrive out of order, so the model re-reads the session on each one.
func Subscribe(p *tea.Program, s *session.Session) (cancel func()) {
	return s.OnVisibleChange(func([]event.Event) {
		go p.Send(VisibleMsg{})
	})
}

func (m *Model) Init() tea.Cmd {
	if m.config.AutoRefresh && m.config.RefreshRate > 0 {
		return m.tickCmd()
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorVisible()
		return m, nil

	case VisibleMsg:
		m.refresh()
		return m, nil

	case tickMsg:
		if !m.config.WatchEvents {
			m.session.Reload()
		}
		m.refresh()
		return m, m.tickCmd()

	case messageTimeoutMsg:
		if msg.seq == m.messageSeq {
			m.message = ""
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) View() string {
	switch m.mode {
	case ViewIntro:
		return m.viewIntro()
	case ViewHelp:
		return m.viewHelp()
	case ViewDateInput:
		return m.viewDateInput()
	default:
		return m.viewList()
	}
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ViewHelp:
		m.mode = ViewList
		return m, nil
	case ViewIntro:
		return m.handleIntroKeys(msg)
	case ViewDateInput:
		return m.handleDateInputKeys(msg)
	}

	var cmd tea.Cmd
	switch m.config.ActionFor(msg.String()) {
	case "quit":
		return m, tea.Quit

	case "help":
		m.mode = ViewHelp

	case "next_event":
		m.moveCursor(1)

	case "prev_event":
		m.moveCursor(-1)

	case "select":
		if e, ok := m.cursorEvent(); ok {
			m.session.Select(e)
		}

	case "clear_selection":
		m.session.ClearSelection()

	case "toggle_favorite":
		if e, ok := m.targetEvent(); ok {
			if m.session.ToggleFavorite(e) {
				cmd = m.showMessage("Added to favorites")
			} else {
				cmd = m.showMessage("Removed from favorites")
			}
		}

	case "favorites_only":
		m.session.ToggleFavoritesOnly()

	case "next_category":
		m.session.PrepareForFilterEditing()
		m.session.SetCategory(cycleCategory(m.session.Filter().Category, 1))

	case "prev_category":
		m.session.PrepareForFilterEditing()
		m.session.SetCategory(cycleCategory(m.session.Filter().Category, -1))

	case "cycle_price":
		m.session.PrepareForFilterEditing()
		m.session.SetPriceRange((m.session.Filter().Price + 1) % 3)

	case "radius_up":
		m.session.SetRadius(stepRadius(m.session.Filter().RadiusKm, 1))

	case "radius_down":
		m.session.SetRadius(stepRadius(m.session.Filter().RadiusKm, -1))

	case "cycle_origin":
		cmd = m.cycleOrigin()

	case "set_start_date":
		m.beginDateInput(fieldStart)

	case "set_end_date":
		m.beginDateInput(fieldEnd)

	case "reset_filters":
		m.session.ResetFilters()
		cmd = m.showMessage("Filters reset")

	case "request_location":
		m.session.RequestLocation(context.Background())
		if !m.session.Permission() {
			cmd = m.showMessage("Location permission is off")
		}

	case "toggle_permission":
		granted := !m.session.Permission()
		m.session.SetLocationPermission(granted)
		if granted {
			cmd = m.showMessage("Location permission granted")
		} else {
			cmd = m.showMessage("Location permission revoked")
		}

	case "navigate":
		if e, ok := m.targetEvent(); ok {
			if uri, ok := e.NavigationURI(); ok {
				web, _ := e.WebMapURL()
				cmd = m.showMessage(uri + "  " + web)
			} else {
				cmd = m.showMessage("Event has no location")
			}
		}

	case "refresh":
		m.session.Reload()
		cmd = m.showMessage("Reloading events")
	}

	m.refresh()
	return m, cmd
}

func (m *Model) handleIntroKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	choices := introChoices()

	switch msg.String() {
	case "j", "down":
		if m.introCursor < len(choices)-1 {
			m.introCursor++
		}

	case "k", "up":
		if m.introCursor > 0 {
			m.introCursor--
		}

	case "enter":
		m.session.ApplyIntroChoice(choices[m.introCursor].value)
		m.mode = ViewList
		m.cursor, m.top = 0, 0
		m.refresh()

	case "esc":
		m.mode = ViewList

	case "q":
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) beginDateInput(field dateField) {
	m.session.PrepareForFilterEditing()
	m.dateField = field
	m.mode = ViewDateInput

	current := m.session.Filter().StartDate
	if field == fieldEnd {
		current = m.session.Filter().EndDate
	}
	m.inputBuffer = nil
	if current != nil {
		m.inputBuffer = []rune(current.Format(m.config.DateFormat))
	}
	m.cursorPos = len(m.inputBuffer)
}

func (m *Model) handleDateInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = ViewList
		return m, nil

	case tea.KeyEnter:
		m.mode = ViewList
		bound, err := m.parser.ParseBound(string(m.inputBuffer))
		if err != nil {
			return m, m.showMessage(fmt.Sprintf("Parse error: %v", err))
		}
		if m.dateField == fieldStart {
			m.session.SetStartDate(bound)
		} else {
			m.session.SetEndDate(bound)
		}
		m.refresh()
		return m, nil

	case tea.KeyBackspace:
		if m.cursorPos > 0 {
			m.inputBuffer = append(m.inputBuffer[:m.cursorPos-1], m.inputBuffer[m.cursorPos:]...)
			m.cursorPos--
		}

	case tea.KeyLeft:
		if m.cursorPos > 0 {
			m.cursorPos--
		}

	case tea.KeyRight:
		if m.cursorPos < len(m.inputBuffer) {
			m.cursorPos++
		}

	case tea.KeySpace:
		m.insertRunes(' ')

	case tea.KeyRunes:
		m.insertRunes(msg.Runes...)
	}

	return m, nil
}

func (m *Model) insertRunes(rs ...rune) {
	buf := make([]rune, 0, len(m.inputBuffer)+len(rs))
	buf = append(buf, m.inputBuffer[:m.cursorPos]...)
	buf = append(buf, rs...)
	buf = append(buf, m.inputBuffer[m.cursorPos:]...)
	m.inputBuffer = buf
	m.cursorPos += len(rs)
}

// cycleOrigin steps through the default origin, the configured center and
// the user location.
func (m *Model) cycleOrigin() tea.Cmd {
	origin := m.session.Filter().Origin
	switch {
	case origin.Kind == filter.OriginDefault && origin.Lat == nil:
		m.session.UseDefaultLocation()
		return m.showMessage("Radius around " + m.config.DefaultCenterName)

	case origin.Kind == filter.OriginDefault:
		if !m.session.Permission() {
			m.session.SetOrigin(filter.DefaultOrigin())
			return m.showMessage("Location permission is off")
		}
		m.session.SetOrigin(filter.UserOrigin())
		m.session.RequestLocation(context.Background())
		return m.showMessage("Radius around my location")

	default:
		m.session.SetOrigin(filter.DefaultOrigin())
		return m.showMessage("Radius filter off")
	}
}

func (m *Model) refresh() {
	m.setEvents(m.session.Visible())
}

func (m *Model) setEvents(events []event.Event) {
	m.events = events
	if m.cursor >= len(m.events) {
		m.cursor = len(m.events) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor >= len(m.events) {
		m.cursor = len(m.events) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureCursorVisible()
}

func (m *Model) ensureCursorVisible() {
	rows := m.listRows()
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+rows {
		m.top = m.cursor - rows + 1
	}
	if m.top < 0 {
		m.top = 0
	}
}

func (m *Model) cursorEvent() (event.Event, bool) {
	if m.cursor < 0 || m.cursor >= len(m.events) {
		return event.Event{}, false
	}
	return m.events[m.cursor], true
}

// targetEvent is the selected event, or the one under the cursor.
func (m *Model) targetEvent() (event.Event, bool) {
	if e := m.session.Selected(); e != nil {
		return *e, true
	}
	return m.cursorEvent()
}

func (m *Model) showMessage(msg string) tea.Cmd {
	m.message = msg
	m.messageSeq++
	seq := m.messageSeq
	return tea.Tick(messageTimeout, func(time.Time) tea.Msg {
		return messageTimeoutMsg{seq: seq}
	})
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.config.RefreshRate, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// VisibleMsg reports that the session's visible list changed.
type VisibleMsg struct{}

// Message types
type tickMsg struct{}
type messageTimeoutMsg struct {
	seq int
}
