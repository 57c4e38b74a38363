package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// Clock is a time of day in whole minutes since midnight. Values past
// midnight are kept as-is and only wrap when formatted.
type Clock int

// ParseClock parses "HH:MM".
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, NewValidationError("invalid time %q, want HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, NewValidationError("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || len(mm) != 2 {
		return 0, NewValidationError("invalid minute in %q", s)
	}
	return Clock(h*60 + m), nil
}

// Add advances the clock by the given minutes.
func (c Clock) Add(minutes int) Clock { return c + Clock(minutes) }

// String formats the clock as HH:MM, wrapping at 24h.
func (c Clock) String() string {
	v := int(c) % minutesPerDay
	if v < 0 {
		v += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", v/60, v%60)
}

// LegMinutes converts a travel duration in seconds to whole minutes.
// Every place that sums travel time uses it so totals and clocks agree.
func LegMinutes(seconds float64) int {
	return int(math.Round(seconds / 60))
}
