package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const secondsPerDay = 86400

// ParseCalendarDate parses the DD.MM.YYYY dates used by the Linienfahrplan
// operating calendar into a midnight UTC time.
func ParseCalendarDate(value string) (time.Time, error) {
	parts := strings.Split(value, ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("calendar date %q is not in DD.MM.YYYY form", value)
	}

	day, dayErr := strconv.Atoi(parts[0])
	month, monthErr := strconv.Atoi(parts[1])
	year, yearErr := strconv.Atoi(parts[2])
	if dayErr != nil || monthErr != nil || yearErr != nil {
		return time.Time{}, fmt.Errorf("calendar date %q is not in DD.MM.YYYY form", value)
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// SecondsOfDay normalises an operating-day start time into [0, 86400).
// Times of 86400 and above belong to after-midnight service.
func SecondsOfDay(startSeconds int64) int64 {
	return ((startSeconds % secondsPerDay) + secondsPerDay) % secondsPerDay
}

// DayOffset reports how many calendar days after the operating day a start
// time falls. A trip starting at 25:30 runs on the next calendar date.
func DayOffset(startSeconds int64) int64 {
	if startSeconds < 0 {
		return 0
	}
	return startSeconds / secondsPerDay
}

// DepartureTime resolves an operating-day start time against the operating
// calendar date.
func DepartureTime(operatingDay time.Time, startSeconds int64) time.Time {
	return operatingDay.Add(time.Duration(startSeconds) * time.Second)
}
