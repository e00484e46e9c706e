package util

import (
	"fmt"
	"time"
)

// Layouts for flight grouping keys.
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// LoadLocation resolves a timezone flag value. Empty and "Local" mean the
// system zone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, Europe/Berlin, America/Denver, Australia/Sydney", timezone, err)
	}
	return loc, nil
}

// DayKey returns the local calendar day of t.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// MonthKey returns the local calendar month of t.
func MonthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(MonthLayout)
}
