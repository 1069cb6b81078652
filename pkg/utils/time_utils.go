package utils

import "time"

// Korea Standard Time, used when the configured zone cannot be loaded.
var kstLoc = time.FixedZone("KST", 9*3600)

func LoadLocation(name string) *time.Location {
	if name == "" {
		return kstLoc
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return kstLoc
}

// StartOfDay is local midnight of the calendar day containing t, in UTC.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc).UTC()
}

func StartOfTomorrow(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day()+1, 0, 0, 0, 0, loc).UTC()
}

// AddMonth advances t by one calendar month with Go's normalization
// (Jan 31 becomes Mar 2 or Mar 3).
func AddMonth(t time.Time) time.Time {
	return t.AddDate(0, 1, 0)
}
