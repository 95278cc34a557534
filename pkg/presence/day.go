package presence

import "time"

const dayKeyLayout = "2006-01-02"

// DayKey buckets an epoch-ms timestamp into a calendar-day key under loc.
func DayKey(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format(dayKeyLayout)
}

// DayBounds returns the inclusive [start, end] epoch-ms bounds of the
// calendar day containing ms. Bounds follow local wall-clock midnight, so
// they stay correct across DST shifts, and end belongs to the same day key
// (next midnight minus one millisecond).
func DayBounds(ms int64, loc *time.Location) (start, end int64) {
	t := time.UnixMilli(ms).In(loc)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	next := midnight.AddDate(0, 0, 1)
	return midnight.UnixMilli(), next.UnixMilli() - 1
}

// DayKeyOffset returns the day key n days away from the day containing ms
// (n may be negative). Offsets step whole calendar days, not 24h spans.
func DayKeyOffset(ms int64, n int, loc *time.Location) string {
	t := time.UnixMilli(ms).In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, n).Format(dayKeyLayout)
}

// TrailingDayKeys returns the n day keys ending at (and including) the day
// containing ms, ascending.
func TrailingDayKeys(ms int64, n int, loc *time.Location) []string {
	if n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		out = append(out, DayKeyOffset(ms, -i, loc))
	}
	return out
}
