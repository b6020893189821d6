package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04:05"
)

// Date is a calendar day stored in a Postgres DATE column.
type Date struct{ time.Time }

// NewDate truncates t to its calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current UTC calendar day.
func Today() Date {
	return DateOf(time.Now().UTC())
}

// ParseDate accepts "YYYY-MM-DD" or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	var d Date
	return d, d.parse(s)
}

// AddDays shifts the date by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time.AddDate(0, 0, n))
}

// AddMonths shifts the date by n calendar months, clamping to the last day
// of the target month (Jan 31 + 1 month = Feb 28/29).
func (d Date) AddMonths(n int) Date {
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > lastDay {
		day = lastDay
	}
	return NewDate(first.Year(), first.Month(), day)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool { return d.Time.After(other.Time) }

// Equal compares calendar days.
func (d Date) Equal(other Date) bool { return d.Time.Equal(other.Time) }

// String renders the ISO date.
func (d Date) String() string { return d.Format(dateLayout) }

// parse accepts a bare date or a full RFC 3339 timestamp, whose calendar day
// is kept as written. Anything else is rejected.
func (d *Date) parse(s string) error {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("date %q: want YYYY-MM-DD", s)
	}
	*d = NewDate(t.Year(), t.Month(), t.Day())
	return nil
}

// Scan accepts time.Time or "YYYY-MM-DD".
func (d *Date) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		*d = DateOf(x)
		return nil
	case []byte:
		return d.parse(string(x))
	case string:
		return d.parse(x)
	case nil:
		d.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("date: unsupported Scan type %T", v)
	}
}

// Value sends "YYYY-MM-DD".
func (d Date) Value() (driver.Value, error) {
	return d.Format(dateLayout), nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.parse(s)
}

// ClockTime is a time of day stored in a Postgres TIME column.
type ClockTime struct{ time.Time }

// NewClockTime builds a time of day.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime{Time: time.Date(0, 1, 1, hour, minute, 0, 0, time.UTC)}
}

// ParseClockTime accepts "HH:MM" or "HH:MM:SS".
func ParseClockTime(s string) (ClockTime, error) {
	var c ClockTime
	return c, c.parse(s)
}

func (c *ClockTime) parse(s string) error {
	s = strings.TrimSpace(s)
	if len(s) == 5 {
		s += ":00"
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return fmt.Errorf("time of day: %w", err)
	}
	c.Time = t
	return nil
}

// String renders "HH:MM:SS".
func (c ClockTime) String() string { return c.Format(clockLayout) }

// Scan accepts time.Time or "HH:MM[:SS]".
func (c *ClockTime) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		c.Time = time.Date(0, 1, 1, x.Hour(), x.Minute(), x.Second(), 0, time.UTC)
		return nil
	case []byte:
		return c.parse(string(x))
	case string:
		return c.parse(x)
	case nil:
		c.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("time of day: unsupported Scan type %T", v)
	}
}

// Value sends "HH:MM:SS" so Postgres TIME accepts it.
func (c ClockTime) Value() (driver.Value, error) {
	return c.Format(clockLayout), nil
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Format(clockLayout))
}

func (c *ClockTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return c.parse(s)
}
