package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of a due date.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time component. It is stored as
// midnight UTC; the empty string and null decode to the zero Date.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

// String formats d as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

const secondsPerDay = 24 * 60 * 60

// DaysUntil returns the number of whole days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int((other.Unix() - d.Unix()) / secondsPerDay)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
