// Package timesheet holds the pure calculations the engine is built
// on: worked-hours derivation, reporting week boundaries, and the
// entry status transition table. Nothing here touches storage, so the
// same code serves live totals and canonical persisted values.
package timesheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ComputeHours derives worked hours from wall-clock in/out times
// ("15:04") and a lunch deduction in hours.
//
// Spans where timeOut <= timeIn (including entries crossing midnight)
// yield zero, as does a lunch longer than the worked span. The result
// is never negative and is rounded to two decimals.
func ComputeHours(timeIn, timeOut string, lunchHours float64) (float64, error) {
	in, err := parseClock(timeIn)
	if err != nil {
		return 0, fmt.Errorf("invalid time_in: %w", err)
	}
	out, err := parseClock(timeOut)
	if err != nil {
		return 0, fmt.Errorf("invalid time_out: %w", err)
	}

	rawMinutes := out - in
	if rawMinutes < 0 {
		rawMinutes = 0
	}

	hours := float64(rawMinutes)/60 - lunchHours
	if hours < 0 {
		hours = 0
	}

	return Round2(hours), nil
}

// Round2 rounds to two decimal places, the precision payroll
// multiplication is carried out at.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// parseClock converts an "HH:MM" wall-clock string to minutes since
// midnight.
func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%q is not in HH:MM format", s)
	}

	hours, err := strconv.Atoi(hh)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%q has an invalid hour", s)
	}

	minutes, err := strconv.Atoi(mm)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%q has an invalid minute", s)
	}

	return hours*60 + minutes, nil
}
