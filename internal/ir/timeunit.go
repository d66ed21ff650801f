package ir

import (
	"fmt"
	"strings"
)

// TimeUnit is a calendar unit used by date arithmetic, truncation and
// dimension post-operations.
type TimeUnit string

const (
	UnitSecond  TimeUnit = "second"
	UnitMinute  TimeUnit = "minute"
	UnitHour    TimeUnit = "hour"
	UnitDay     TimeUnit = "day"
	UnitWeek    TimeUnit = "week"
	UnitMonth   TimeUnit = "month"
	UnitQuarter TimeUnit = "quarter"
	UnitYear    TimeUnit = "year"
)

var timeUnits = []TimeUnit{UnitSecond, UnitMinute, UnitHour, UnitDay, UnitWeek, UnitMonth, UnitQuarter, UnitYear}

// AllTimeUnits returns the units from finest to coarsest.
func AllTimeUnits() []TimeUnit {
	return append([]TimeUnit(nil), timeUnits...)
}

// ParseTimeUnit resolves a unit name; plural forms ("days") are accepted.
// Units are spliced into SQL text, so anything else is rejected.
func ParseTimeUnit(name string) (TimeUnit, error) {
	norm := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "s")
	for _, u := range timeUnits {
		if string(u) == norm {
			return u, nil
		}
	}
	return "", fmt.Errorf("unknown time unit %q", name)
}

// AppliesTo reports whether a timeframe in this unit is meaningful for ft.
// Sub-day units need a time component.
func (u TimeUnit) AppliesTo(ft FieldType) bool {
	switch ft {
	case TypeTimestamp:
		return true
	case TypeDate:
		return u != UnitSecond && u != UnitMinute && u != UnitHour
	case TypeTime:
		return u == UnitSecond || u == UnitMinute || u == UnitHour
	}
	return false
}
