package timestats

import (
	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/presence"
)

// DailyAggregate carries one calendar day's derived durations. It is always
// recomputed from the event log, never stored as source of truth.
type DailyAggregate struct {
	Day       string `json:"-"`
	OnlineMS  int64  `json:"online"`
	OfflineMS int64  `json:"offline"`
}

// AggregateDay walks one day's events (ascending by timestamp) and
// accumulates the gap between consecutive events into the bucket of the
// earlier event's status. For the current day only, the open tail interval
// is extended to nowMS; a past day whose last session was never closed by
// an explicit event simply stops at that event (the midnight finalizer
// exists to close those before they age into history).
func AggregateDay(events []presence.Event, isToday bool, nowMS int64) DailyAggregate {
	var agg DailyAggregate
	var lastTS int64
	var lastStatus presence.Status
	seen := false

	for _, ev := range events {
		if seen {
			addDuration(&agg, lastStatus, ev.Timestamp-lastTS)
		}
		lastTS = ev.Timestamp
		lastStatus = ev.Status
		seen = true
	}
	if isToday && seen {
		addDuration(&agg, lastStatus, nowMS-lastTS)
	}
	if len(events) > 0 {
		agg.Day = events[0].Day
	}
	return agg
}

func addDuration(agg *DailyAggregate, status presence.Status, d int64) {
	if d <= 0 {
		return
	}
	if status == presence.StatusOnline {
		agg.OnlineMS += d
	} else {
		agg.OfflineMS += d
	}
}

// GroupByDay splits an ascending event sequence into per-day ascending
// sequences keyed by day.
func GroupByDay(events []presence.Event) map[string][]presence.Event {
	byDay := map[string][]presence.Event{}
	for _, ev := range events {
		byDay[ev.Day] = append(byDay[ev.Day], ev)
	}
	return byDay
}
