package timesheet

import (
	"time"

	"github.com/kapoorritesh1111-create/timesheet-v2/internal/models"
)

// WeekBounds returns the inclusive [start, end] reporting week that
// contains date, per the given week-start convention. Both bounds are
// UTC midnights; end is start plus six days.
func WeekBounds(date time.Time, weekStart models.WeekStart) (time.Time, time.Time) {
	d := Midnight(date)

	offset := int(d.Weekday()) // days since Sunday
	if weekStart == models.WeekStartMonday {
		// days since Monday, with Sunday counting as six days in
		offset = (int(d.Weekday()) + 6) % 7
	}

	start := d.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// Midnight truncates t to a UTC date. Entry dates and week bounds are
// always stored in this form.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
