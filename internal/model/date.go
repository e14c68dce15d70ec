package model

import (
	"fmt"
	"strings"
	"time"
)

// dateLayout is the single canonical representation of a rental day.
// Every overlap decision in the system goes through this type; no other
// code is allowed to compare raw date strings or timestamps.
const dateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day and no timezone.  Two inputs
// naming the same day always compare equal regardless of how they were
// written (plain date, RFC3339 timestamp, any zone offset).
type Date string

// ParseDate normalizes s into a Date.  It accepts "2006-01-02" as well as
// RFC3339 timestamps, from which the time-of-day and offset are discarded.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date(t.Format(dateLayout)), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date(t.UTC().Format(dateLayout)), nil
	}
	return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
}

// DateOf truncates a timestamp to its UTC calendar day.
func DateOf(t time.Time) Date { return Date(t.UTC().Format(dateLayout)) }

// String returns the canonical YYYY-MM-DD form.
func (d Date) String() string { return string(d) }

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	t, _ := time.Parse(dateLayout, string(d))
	return t
}

// Before reports whether d is an earlier day than o.  Canonical dates are
// zero padded, so byte order equals calendar order.
func (d Date) Before(o Date) bool { return string(d) < string(o) }

// After reports whether d is a later day than o.
func (d Date) After(o Date) bool { return string(d) > string(o) }

// DaysInclusive counts the days in [start, end] counting both endpoints.
// A one-day rental is 1.
func DaysInclusive(start, end Date) int {
	return int(end.Time().Sub(start.Time())/(24*time.Hour)) + 1
}

// Overlaps reports whether the inclusive ranges [aStart, aEnd] and
// [bStart, bEnd] share at least one day.  Touching endpoints overlap: a
// rental returned on day D blocks a pickup on day D.
func Overlaps(aStart, aEnd, bStart, bEnd Date) bool {
	return !(aEnd.Before(bStart) || aStart.After(bEnd))
}
