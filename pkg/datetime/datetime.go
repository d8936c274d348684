// Package datetime provides date and time utility functions.
package datetime

import (
	"time"

	"github.com/forfettario/fisco-forecast/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the
	// output date format.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// InYear reports whether the given date falls in the given calendar year.
func InYear(date time.Time, year int) bool {
	return date.Year() == year
}

// IsFuture reports whether date is strictly after now, comparing at day
// granularity so a transaction scheduled for today counts as realized.
func IsFuture(date, now time.Time) bool {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.After(n)
}

// MonthsElapsed returns the number of months of the view year that have
// elapsed as of now. A past year is fully elapsed; the current year counts
// the current month (never less than 1); a future year degrades to 1 so
// projections divide by a sane denominator instead of zero.
func MonthsElapsed(viewYear int, now time.Time) int {
	switch {
	case viewYear < now.Year():
		return constants.MonthsPerYear
	case viewYear == now.Year():
		month := int(now.Month())
		if month < 1 {
			return 1
		}
		return month
	default:
		return 1
	}
}

// MidJune returns the June 16 payment date for the given year.
func MidJune(year int) time.Time {
	return time.Date(year, time.June, 16, 0, 0, 0, 0, time.UTC)
}

// EndOfJune returns the June 30 payment date for the given year.
func EndOfJune(year int) time.Time {
	return time.Date(year, time.June, 30, 0, 0, 0, 0, time.UTC)
}

// EndOfAugust returns the August 20 payment date for the given year. August
// dues slide to the 20th under the ferragosto extension.
func EndOfAugust(year int) time.Time {
	return time.Date(year, time.August, 20, 0, 0, 0, 0, time.UTC)
}

// EndOfNovember returns the November 30 payment date for the given year.
func EndOfNovember(year int) time.Time {
	return time.Date(year, time.November, 30, 0, 0, 0, 0, time.UTC)
}
