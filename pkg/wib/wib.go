package wib

import "time"

// Location is Asia/Jakarta, falling back to a fixed UTC+7 zone when tzdata is missing.
var Location = loadLocation()

func loadLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

// Now returns the current time in WIB.
func Now() time.Time {
	return time.Now().In(Location)
}

// StartOfDay truncates t to midnight WIB.
func StartOfDay(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
}
