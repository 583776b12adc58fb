package attendance

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

// ClockTime is a local wall-clock time of day, in seconds since midnight.
type ClockTime int

func NewClockTime(hour, minute, second int) ClockTime {
	return ClockTime(hour*3600 + minute*60 + second)
}

// ClockOf returns the wall-clock time of t in t's own location.
func ClockOf(t time.Time) ClockTime {
	return NewClockTime(t.Hour(), t.Minute(), t.Second())
}

// ParseClockTime accepts "HH:MM:SS" or "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		var shortErr error
		t, shortErr = time.Parse("15:04", s)
		if shortErr != nil {
			return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
		}
	}
	return ClockOf(t), nil
}

func (c ClockTime) String() string {
	s := int(c)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

// Hours returns the time of day as a decimal hour, e.g. 09:15:00 -> 9.25.
func (c ClockTime) Hours() float64 {
	return float64(c) / 3600
}

// Sub returns the duration from u to c.
func (c ClockTime) Sub(u ClockTime) time.Duration {
	return time.Duration(c-u) * time.Second
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// DateOf returns the calendar date of t's wall clock as midnight UTC, the form
// every record date is kept in.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses "YYYY-MM-DD" into the normalized date form.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(t), nil
}

// FormatHMS renders decimal hours as "HH:MM:SS", rounded to the nearest second.
func FormatHMS(hours float64) string {
	if hours <= 0 {
		return "00:00:00"
	}
	total := int64(math.Round(hours * 3600))
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
