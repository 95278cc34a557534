package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrDuplicateDay signals that a snapshot already exists for the day.
// Snapshots are write-once; the stored value is never overwritten.
var ErrDuplicateDay = errors.New("snapshot already recorded for day")

const currentVersion = 1

// Snapshot is a finalized daily aggregate persisted for long-range trend
// charts, in the shape the chart client consumes.
type Snapshot struct {
	Day                 string `json:"date"`
	OnlineMS            int64  `json:"online"`
	HumanReadableOnline string `json:"humanReadableOnline"`
}

type persisted struct {
	Version int                 `json:"version"`
	Days    map[string]Snapshot `json:"days"`
}

type Store struct {
	mu   sync.RWMutex
	path string
	days map[string]Snapshot
}

func NewStore(path string) *Store {
	s := &Store{path: path, days: map[string]Snapshot{}}
	s.load()
	return s
}

func (s *Store) load() {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("snapshot store load failed", "error", err)
		}
		return
	}
	var p persisted
	if err := json.Unmarshal(b, &p); err != nil {
		slog.Warn("snapshot store decode failed, starting empty", "error", err)
		return
	}
	if p.Days != nil {
		s.days = p.Days
	}
}

// Insert records a day's snapshot once. A second insert for the same day
// returns ErrDuplicateDay and leaves the stored value untouched.
func (s *Store) Insert(snap Snapshot) error {
	if snap.Day == "" {
		return errors.New("snapshot day cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.days[snap.Day]; ok {
		return ErrDuplicateDay
	}
	s.days[snap.Day] = snap
	if err := s.saveLocked(); err != nil {
		delete(s.days, snap.Day)
		return err
	}
	return nil
}

// Has reports whether a snapshot exists for the day.
func (s *Store) Has(day string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.days[day]
	return ok
}

// All returns every snapshot ascending by day.
func (s *Store) All() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, 0, len(s.days))
	for _, snap := range s.days {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

func (s *Store) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	b, err := json.MarshalIndent(persisted{Version: currentVersion, Days: s.days}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshots: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write snapshot temp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename snapshot file: %w", err)
	}
	return nil
}
