package eventlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/presence"
)

const (
	currentVersion  = 1
	hotFileName     = "events.json"
	saveInterval    = 2 * time.Second
	defaultHotDays  = 30
	archiveInterval = 6 * time.Hour
)

type persisted struct {
	Version int              `json:"version"`
	Events  []presence.Event `json:"events"`
}

// Store is the append-only presence event log. Recent days live in a single
// JSON file; finished days past the hot window are compacted into
// zstd-compressed JSONL day segments (see archive.go). The store assigns
// the final event order: appends never move backwards in time.
type Store struct {
	mu      sync.Mutex
	dir     string
	hotDays int
	loc     *time.Location

	events []presence.Event

	dirty    bool
	lastSave time.Time
}

func NewStore(dir string, hotDays int, loc *time.Location) *Store {
	if hotDays <= 0 {
		hotDays = defaultHotDays
	}
	s := &Store{dir: dir, hotDays: hotDays, loc: loc, events: []presence.Event{}}
	_ = os.MkdirAll(dir, 0o700)
	s.load()
	return s
}

func (s *Store) load() {
	b, err := os.ReadFile(filepath.Join(s.dir, hotFileName))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("event log load failed", "error", err)
		}
		return
	}
	var p persisted
	if err := json.Unmarshal(b, &p); err != nil {
		slog.Warn("event log decode failed, starting empty", "error", err)
		return
	}
	sort.SliceStable(p.Events, func(i, j int) bool { return p.Events[i].Timestamp < p.Events[j].Timestamp })
	s.events = p.Events
}

// Append adds one transition event. The timestamp is clamped so the log
// stays non-decreasing even if the wall clock steps backwards; the day key
// is recomputed whenever the clamp moved the event.
func (s *Store) Append(ev presence.Event) error {
	if ev.Status != presence.StatusOnline && ev.Status != presence.StatusOffline {
		return presence.ErrInvalidStatus
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.events); n > 0 && ev.Timestamp < s.events[n-1].Timestamp {
		ev.Timestamp = s.events[n-1].Timestamp
		ev.Day = ""
	}
	if ev.Day == "" {
		ev.Day = presence.DayKey(ev.Timestamp, s.loc)
	}
	s.events = append(s.events, ev)
	s.dirty = true
	return s.saveLocked(false)
}

// Latest returns the newest event in the hot window. Archived events are
// not consulted: a day only leaves the hot window long after it finished.
func (s *Store) Latest() (presence.Event, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return presence.Event{}, false, nil
	}
	return s.events[len(s.events)-1], true, nil
}

// Range returns every event with fromDay <= Day <= toDay ascending by
// timestamp, merging archived day segments with the hot file.
func (s *Store) Range(fromDay, toDay string) ([]presence.Event, error) {
	if fromDay > toDay {
		return nil, nil
	}
	archived, err := s.scanArchive(fromDay, toDay)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	out := archived
	for _, ev := range s.events {
		if ev.Day >= fromDay && ev.Day <= toDay {
			out = append(out, ev)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// Flush forces any buffered events to disk.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(true)
}

func (s *Store) saveLocked(force bool) error {
	if !s.dirty {
		return nil
	}
	if !force && time.Since(s.lastSave) < saveInterval {
		return nil
	}
	b, err := json.MarshalIndent(persisted{Version: currentVersion, Events: s.events}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode event log: %w", err)
	}
	path := filepath.Join(s.dir, hotFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write event log temp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename event log: %w", err)
	}
	s.dirty = false
	s.lastSave = time.Now()
	return nil
}
