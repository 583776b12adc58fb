package calendar

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"

//go:embed holidays.json
var defaultHolidays []byte

var ErrInvalidHoliday = errors.New("invalid holiday date")

// HolidayCalendar is an immutable set of designated non-working dates keyed by year.
// A nil *HolidayCalendar has no holidays.
type HolidayCalendar struct {
	byYear map[int]map[string]struct{}
}

// New builds a calendar from year -> ISO dates. Every date must belong to its year.
func New(holidays map[int][]string) (*HolidayCalendar, error) {
	c := &HolidayCalendar{byYear: make(map[int]map[string]struct{}, len(holidays))}

	for year, dates := range holidays {
		set := make(map[string]struct{}, len(dates))
		for _, d := range dates {
			parsed, err := time.Parse(dateLayout, d)
			if err != nil {
				return nil, fmt.Errorf("%w %q: %v", ErrInvalidHoliday, d, err)
			}
			if parsed.Year() != year {
				return nil, fmt.Errorf("%w %q: listed under year %d", ErrInvalidHoliday, d, year)
			}
			set[d] = struct{}{}
		}
		c.byYear[year] = set
	}

	return c, nil
}

// Parse decodes a JSON object of the form {"2026": ["2026-01-01", ...]}.
func Parse(data []byte) (*HolidayCalendar, error) {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal holiday calendar: %w", err)
	}

	holidays := make(map[int][]string, len(raw))
	for key, dates := range raw {
		year, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday year %q: %w", key, err)
		}
		holidays[year] = dates
	}

	return New(holidays)
}

// Load reads a holiday calendar file. An empty path yields the built-in calendar.
func Load(path string) (*HolidayCalendar, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holiday calendar: %w", err)
	}

	return Parse(data)
}

// Default returns the calendar bundled with the binary.
func Default() (*HolidayCalendar, error) {
	return Parse(defaultHolidays)
}

// IsHoliday reports whether date is a designated holiday.
func (c *HolidayCalendar) IsHoliday(date time.Time) bool {
	if c == nil {
		return false
	}
	set, ok := c.byYear[date.Year()]
	if !ok {
		return false
	}
	_, ok = set[date.Format(dateLayout)]
	return ok
}

// Holidays returns the holidays of a year in ascending order.
func (c *HolidayCalendar) Holidays(year int) []string {
	if c == nil {
		return nil
	}
	result := make([]string, 0, len(c.byYear[year]))
	for d := range c.byYear[year] {
		result = append(result, d)
	}
	sort.Strings(result)
	return result
}

// IsWeekend reports whether date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	day := date.Weekday()
	return day == time.Saturday || day == time.Sunday
}

// IsWorkingDay reports whether date is neither a weekend nor a holiday.
func (c *HolidayCalendar) IsWorkingDay(date time.Time) bool {
	return !IsWeekend(date) && !c.IsHoliday(date)
}
