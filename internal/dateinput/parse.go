// Package dateinput turns what a user types into a calendar day.
package dateinput

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/itlightning/dateparse"
)

var (
	weekdayRe   = regexp.MustCompile(`^(next|this)\s+(mon|monday|tue|tuesday|wed|wednesday|thu|thursday|fri|friday|sat|saturday|sun|sunday)$`)
	inRe        = regexp.MustCompile(`^in\s+(\d+)\s+(day|days|week|weeks|month|months)$`)
	fromNowRe   = regexp.MustCompile(`^(\d+)\s+(day|days|week|weeks|month|months)\s+from\s+(now|today)$`)
	dayFirstRe  = regexp.MustCompile(`^(\d{1,2})[-./](\d{1,2})[-./](\d{4})$`)
	isoRe       = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	monthNameRe = regexp.MustCompile(`^(jan|january|feb|february|mar|march|apr|april|may|jun|june|jul|july|aug|august|sep|september|oct|october|nov|november|dec|december)\s+(\d{1,2})(?:,?\s+(\d{4}))?$`)
)

// Parser resolves relative expressions against a fixed "now".
type Parser struct {
	now      time.Time
	location *time.Location
}

func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	return &Parser{now: time.Now().In(loc), location: loc}
}

func (p *Parser) SetNow(now time.Time) {
	p.now = now.In(p.location)
}

// Parse returns midnight of the day described by input.
func (p *Parser) Parse(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("empty input")
	}
	lower := strings.ToLower(input)

	if date, ok := p.parseRelativeDate(lower); ok {
		return date, nil
	}
	if date, ok, err := p.parseAbsoluteDate(lower); ok {
		return date, err
	}

	t, err := dateparse.ParseIn(input, p.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q", input)
	}
	return p.midnight(t), nil
}

// ParseBound is Parse for optional range bounds: empty input, "none", "any"
// and "clear" mean no bound.
func (p *Parser) ParseBound(input string) (*time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "none", "any", "clear", "-":
		return nil, nil
	}
	t, err := p.Parse(input)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (p *Parser) parseRelativeDate(lower string) (time.Time, bool) {
	switch lower {
	case "today":
		return p.today(), true
	case "tomorrow", "tmrw":
		return p.today().AddDate(0, 0, 1), true
	case "yesterday":
		return p.today().AddDate(0, 0, -1), true
	}

	if matches := weekdayRe.FindStringSubmatch(lower); matches != nil {
		return p.findNextWeekday(parseWeekday(matches[2]), matches[1] == "next"), true
	}

	if matches := inRe.FindStringSubmatch(lower); matches != nil {
		n, _ := strconv.Atoi(matches[1])
		return p.offset(n, matches[2]), true
	}

	if matches := fromNowRe.FindStringSubmatch(lower); matches != nil {
		n, _ := strconv.Atoi(matches[1])
		return p.offset(n, matches[2]), true
	}

	return time.Time{}, false
}

// parseAbsoluteDate reports ok when input has a known shape, and an error when
// that shape names a day that does not exist.
func (p *Parser) parseAbsoluteDate(lower string) (time.Time, bool, error) {
	if matches := dayFirstRe.FindStringSubmatch(lower); matches != nil {
		day, _ := strconv.Atoi(matches[1])
		month, _ := strconv.Atoi(matches[2])
		year, _ := strconv.Atoi(matches[3])
		date, err := p.date(year, time.Month(month), day)
		return date, true, err
	}

	if matches := isoRe.FindStringSubmatch(lower); matches != nil {
		year, _ := strconv.Atoi(matches[1])
		month, _ := strconv.Atoi(matches[2])
		day, _ := strconv.Atoi(matches[3])
		date, err := p.date(year, time.Month(month), day)
		return date, true, err
	}

	if matches := monthNameRe.FindStringSubmatch(lower); matches != nil {
		day, _ := strconv.Atoi(matches[2])
		year := p.now.Year()
		if matches[3] != "" {
			year, _ = strconv.Atoi(matches[3])
		}
		date, err := p.date(year, parseMonth(matches[1]), day)
		return date, true, err
	}

	return time.Time{}, false, nil
}

func (p *Parser) date(year int, month time.Month, day int) (time.Time, error) {
	d := time.Date(year, month, day, 0, 0, 0, 0, p.location)
	if d.Year() != year || d.Month() != month || d.Day() != day {
		return time.Time{}, fmt.Errorf("invalid date %02d-%02d-%04d", day, int(month), year)
	}
	return d, nil
}

func (p *Parser) offset(n int, unit string) time.Time {
	date := p.today()
	switch {
	case strings.HasPrefix(unit, "day"):
		return date.AddDate(0, 0, n)
	case strings.HasPrefix(unit, "week"):
		return date.AddDate(0, 0, n*7)
	default:
		return date.AddDate(0, n, 0)
	}
}

func (p *Parser) findNextWeekday(target time.Weekday, skipThisWeek bool) time.Time {
	date := p.today()
	daysUntilTarget := int(target - date.Weekday())

	if daysUntilTarget <= 0 || skipThisWeek {
		daysUntilTarget += 7
	}

	return date.AddDate(0, 0, daysUntilTarget)
}

func (p *Parser) today() time.Time {
	return p.midnight(p.now)
}

func (p *Parser) midnight(t time.Time) time.Time {
	y, m, d := t.In(p.location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, p.location)
}

func parseWeekday(s string) time.Weekday {
	switch s {
	case "mon", "monday":
		return time.Monday
	case "tue", "tuesday":
		return time.Tuesday
	case "wed", "wednesday":
		return time.Wednesday
	case "thu", "thursday":
		return time.Thursday
	case "fri", "friday":
		return time.Friday
	case "sat", "saturday":
		return time.Saturday
	default:
		return time.Sunday
	}
}

func parseMonth(s string) time.Month {
	switch s[:3] {
	case "feb":
		return time.February
	case "mar":
		return time.March
	case "apr":
		return time.April
	case "may":
		return time.May
	case "jun":
		return time.June
	case "jul":
		return time.July
	case "aug":
		return time.August
	case "sep":
		return time.September
	case "oct":
		return time.October
	case "nov":
		return time.November
	case "dec":
		return time.December
	default:
		return time.January
	}
}
