package presence

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Tracker owns the presence state for the single tracked user. All writes
// (status reports and boundary finalization) are serialized behind one
// mutex; reads take a cheap snapshot.
type Tracker struct {
	mu        sync.Mutex
	log       EventLog
	statePath string
	loc       *time.Location
	now       func() time.Time

	state State
	hub   *hub
}

func NewTracker(log EventLog, statePath string, loc *time.Location) (*Tracker, error) {
	st, err := loadState(statePath)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		log:       log,
		statePath: statePath,
		loc:       loc,
		now:       time.Now,
		state:     st,
		hub:       newHub(),
	}, nil
}

// Current returns the persisted presence state as last committed.
func (t *Tracker) Current() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Subscribe registers an observer for state changes. The returned
// subscription must be closed when the observer goes away.
func (t *Tracker) Subscribe() *Subscription {
	return t.hub.subscribe()
}

// Report applies one status report from the reporter. A transition appends
// an event with a server-assigned timestamp; a repeat of the current status
// appends nothing. lastOnline (client-supplied, optional) only matters on
// the online to offline edge; every other transition leaves the last-online
// mark untouched.
func (t *Tracker) Report(status Status, lastOnline *int64) (State, error) {
	if status != StatusOnline && status != StatusOffline {
		return State{}, ErrInvalidStatus
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	nowMS := t.now().UnixMilli()
	next := t.state
	transition := status != t.state.Status

	if status == StatusOffline && t.state.Status == StatusOnline {
		mark := nowMS
		if lastOnline != nil {
			mark = *lastOnline
		}
		next.LastOnline = &mark
	}
	next.Status = status

	if err := saveState(t.statePath, next); err != nil {
		return State{}, fmt.Errorf("persist state: %w", err)
	}
	if transition {
		ev := Event{Status: status, Timestamp: nowMS, Day: DayKey(nowMS, t.loc)}
		if err := t.log.Append(ev); err != nil {
			// Roll the state file back so state and log stay in step.
			if rbErr := saveState(t.statePath, t.state); rbErr != nil {
				slog.Warn("state rollback failed", "error", rbErr)
			}
			return State{}, fmt.Errorf("append transition event: %w", err)
		}
	}
	t.state = next
	t.hub.broadcast(next)
	return next, nil
}

// FinalizeBoundaries closes a session left open across a day boundary: when
// the newest logged event is still online and that day has ended, an
// offline event stamped at the day's final millisecond is appended so the
// finished day aggregates as a closed interval. Re-running is a no-op once
// the tail event is offline.
func (t *Tracker) FinalizeBoundaries() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	last, ok, err := t.log.Latest()
	if err != nil {
		return fmt.Errorf("read latest event: %w", err)
	}
	if !ok || last.Status != StatusOnline {
		return nil
	}
	_, dayEnd := DayBounds(last.Timestamp, t.loc)
	if t.now().UnixMilli() <= dayEnd {
		return nil
	}

	ev := Event{Status: StatusOffline, Timestamp: dayEnd, Day: last.Day}
	if err := t.log.Append(ev); err != nil {
		return fmt.Errorf("append boundary event: %w", err)
	}
	slog.Info("closed stale session at day boundary", "day", last.Day, "boundary", dayEnd)

	// The singleton still claiming online would contradict the closed log.
	if t.state.Status == StatusOnline {
		next := State{Status: StatusOffline, LastOnline: &dayEnd}
		if err := saveState(t.statePath, next); err != nil {
			return fmt.Errorf("persist finalized state: %w", err)
		}
		t.state = next
		t.hub.broadcast(next)
	}
	return nil
}

// Run finalizes at startup and then on every tick until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if err := t.FinalizeBoundaries(); err != nil {
		slog.Warn("boundary finalize failed", "error", err)
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if err := t.FinalizeBoundaries(); err != nil {
				slog.Warn("boundary finalize failed", "error", err)
			}
		}
	}
}
