package report

import (
	"fmt"
	"time"
)

// DayWindow converts a civil date (YYYY-MM-DD) into the half-open instant
// window [start, end) covering that day in loc. Start and end come from the
// zone's real rules, so the window is 23 or 25 hours long across a
// daylight-saving transition rather than a fixed offset's 24.
func DayWindow(date string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(time.DateOnly, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid report date %q: %w", date, err)
	}

	return start, start.AddDate(0, 0, 1), nil
}

// CivilDate maps an instant to its calendar day as perceived in loc.
func CivilDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}
