package timestats

// WeekRollup summarizes the trailing week's daily aggregates. Days without
// any events do not appear in daily and are excluded from the average
// denominator rather than counted as zero-duration days.
type WeekRollup struct {
	TotalOnlineMS int64
	AverageMS     float64
	BestMS        int64
	DaysWithData  int
}

func RollupWeek(daily map[string]DailyAggregate) WeekRollup {
	var r WeekRollup
	for _, agg := range daily {
		r.TotalOnlineMS += agg.OnlineMS
		if agg.OnlineMS > r.BestMS {
			r.BestMS = agg.OnlineMS
		}
		r.DaysWithData++
	}
	if r.DaysWithData > 0 {
		r.AverageMS = float64(r.TotalOnlineMS) / float64(r.DaysWithData)
	}
	return r
}
