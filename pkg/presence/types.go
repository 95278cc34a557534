package presence

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidStatus is returned when a status report carries anything
	// other than "online" or "offline". Nothing is mutated.
	ErrInvalidStatus = errors.New("invalid status")
)

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusOnline:
		return StatusOnline, nil
	case StatusOffline:
		return StatusOffline, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Event records a single status transition. Events are append-only and
// ordered by server-assigned timestamps; they are never rewritten.
type Event struct {
	Status    Status `json:"status"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
	Day       string `json:"date"`      // YYYY-MM-DD in the configured zone
}

// State is the single mutable presence record. LastOnline is the moment the
// user was last seen online, set only when an online session ends.
type State struct {
	Status     Status `json:"status"`
	LastOnline *int64 `json:"last_online"` // epoch milliseconds, null until first offline transition
}

// EventLog is the append-only transition log the tracker writes to and the
// stats engine reads from. Implementations assign final timestamps so the
// retrieved sequence is always non-decreasing.
type EventLog interface {
	Append(ev Event) error
	// Latest returns the most recent event, ok=false when the log holds
	// none within its hot window.
	Latest() (Event, bool, error)
	// Range returns all events with fromDay <= Day <= toDay, ascending by
	// timestamp.
	Range(fromDay, toDay string) ([]Event, error)
}
