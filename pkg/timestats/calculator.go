package timestats

import (
	"errors"
	"log/slog"
	"time"

	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/presence"
	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/snapshots"
)

// trailing window for the weekly rollup, today included.
const weekDays = 7

// Report is the stats payload the chart clients consume.
type Report struct {
	Today       DailyAggregate            `json:"today"`
	PreviousDay int64                     `json:"previousDay"`
	WeekAverage float64                   `json:"weekAverage"`
	WeekBest    int64                     `json:"weekBest"`
	DailyStats  map[string]DailyAggregate `json:"dailyStats"`
}

// Calculator derives presence statistics from the event log on demand and
// lazily persists finished days into the snapshot store.
type Calculator struct {
	log   presence.EventLog
	snaps *snapshots.Store
	loc   *time.Location
	now   func() time.Time
}

func NewCalculator(log presence.EventLog, snaps *snapshots.Store, loc *time.Location) *Calculator {
	return &Calculator{log: log, snaps: snaps, loc: loc, now: time.Now}
}

// Stats computes the trailing-week report. Stats are informational: on a
// log read failure it degrades to a zeroed report instead of failing the
// caller.
func (c *Calculator) Stats() Report {
	nowMS := c.now().UnixMilli()
	today := presence.DayKey(nowMS, c.loc)
	yesterday := presence.DayKeyOffset(nowMS, -1, c.loc)
	from := presence.DayKeyOffset(nowMS, -(weekDays - 1), c.loc)

	report := Report{DailyStats: map[string]DailyAggregate{}}

	events, err := c.log.Range(from, today)
	if err != nil {
		slog.Warn("stats degraded to zero, event log unreadable", "error", err)
		return report
	}

	for day, dayEvents := range GroupByDay(events) {
		agg := AggregateDay(dayEvents, day == today, nowMS)
		agg.Day = day
		report.DailyStats[day] = agg
		if day != today {
			c.snapshotDay(agg)
		}
	}

	report.Today = report.DailyStats[today]
	report.PreviousDay = report.DailyStats[yesterday].OnlineMS
	rollup := RollupWeek(report.DailyStats)
	report.WeekAverage = rollup.AverageMS
	report.WeekBest = rollup.BestMS
	return report
}

// History returns the persisted daily snapshots, oldest first.
func (c *Calculator) History() []snapshots.Snapshot {
	return c.snaps.All()
}

func (c *Calculator) snapshotDay(agg DailyAggregate) {
	if c.snaps.Has(agg.Day) {
		return
	}
	err := c.snaps.Insert(snapshots.Snapshot{
		Day:                 agg.Day,
		OnlineMS:            agg.OnlineMS,
		HumanReadableOnline: FormatDuration(agg.OnlineMS),
	})
	if err != nil {
		if errors.Is(err, snapshots.ErrDuplicateDay) {
			slog.Debug("snapshot already recorded", "day", agg.Day)
			return
		}
		slog.Warn("snapshot insert failed", "day", agg.Day, "error", err)
	}
}
