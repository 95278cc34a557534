package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/Rudrajiii/leetcode-status-tracker-extension/pkg/presence"
)

type segmentMeta struct {
	path string
	day  string
}

// Archive compacts whole days that have fallen out of the hot window into
// per-day zstd JSONL segments under <dir>/archive/YYYY/MM/DD-<seq>.jsonl.zst.
// Days in the hot window are never touched, so archived days are always
// finished (and, finalizer permitting, closed).
func (s *Store) Archive(now time.Time) error {
	cutoff := presence.DayKeyOffset(now.UnixMilli(), -s.hotDays, s.loc)

	s.mu.Lock()
	defer s.mu.Unlock()

	byDay := map[string][]presence.Event{}
	kept := s.events[:0:0]
	for _, ev := range s.events {
		if ev.Day <= cutoff {
			byDay[ev.Day] = append(byDay[ev.Day], ev)
			continue
		}
		kept = append(kept, ev)
	}
	if len(byDay) == 0 {
		return nil
	}

	for day, events := range byDay {
		if err := s.writeSegmentLocked(day, events); err != nil {
			return err
		}
	}
	s.events = kept
	s.dirty = true
	if err := s.saveLocked(true); err != nil {
		return err
	}
	slog.Info("event log archived", "days", len(byDay), "cutoff", cutoff)
	return nil
}

func (s *Store) writeSegmentLocked(day string, events []presence.Event) error {
	parts := strings.SplitN(day, "-", 3)
	if len(parts) != 3 {
		return fmt.Errorf("malformed day key %q", day)
	}
	dir := filepath.Join(s.dir, "archive", parts[0], parts[1])
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	tmp := filepath.Join(dir, fmt.Sprintf("open-%s-%d.jsonl.zst.tmp", parts[2], time.Now().UnixNano()))
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create archive segment: %w", err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("init zstd writer: %w", err)
	}
	for _, ev := range events {
		line, err := json.Marshal(ev)
		if err != nil {
			_ = enc.Close()
			_ = f.Close()
			return fmt.Errorf("encode archived event: %w", err)
		}
		if _, err := enc.Write(append(line, '\n')); err != nil {
			_ = enc.Close()
			_ = f.Close()
			return fmt.Errorf("write archive segment: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finish archive segment: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close archive segment: %w", err)
	}
	final := filepath.Join(dir, fmt.Sprintf("%s-%d.jsonl.zst", parts[2], time.Now().UnixNano()))
	return os.Rename(tmp, final)
}

func (s *Store) scanArchive(fromDay, toDay string) ([]presence.Event, error) {
	segs, err := s.listSegments()
	if err != nil {
		return nil, err
	}
	var out []presence.Event
	for _, seg := range segs {
		if seg.day < fromDay || seg.day > toDay {
			continue
		}
		if err := scanSegment(seg.path, &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) listSegments() ([]segmentMeta, error) {
	root := filepath.Join(s.dir, "archive")
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat archive dir: %w", err)
	}
	out := []segmentMeta{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, ".jsonl.zst") || strings.HasPrefix(name, "open-") {
			return nil
		}
		// archive/YYYY/MM/DD-<seq>.jsonl.zst
		dd, _, ok := strings.Cut(strings.TrimSuffix(name, ".jsonl.zst"), "-")
		if !ok {
			return nil
		}
		mmDir := filepath.Dir(path)
		yyDir := filepath.Dir(mmDir)
		day := filepath.Base(yyDir) + "-" + filepath.Base(mmDir) + "-" + dd
		out = append(out, segmentMeta{path: path, day: day})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk archive dir: %w", err)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].day == out[j].day {
			return out[i].path < out[j].path
		}
		return out[i].day < out[j].day
	})
	return out, nil
}

func scanSegment(path string, out *[]presence.Event) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archive segment: %w", err)
	}
	defer f.Close()
	zr, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("init zstd reader: %w", err)
	}
	defer zr.Close()
	sc := bufio.NewScanner(zr)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var ev presence.Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			slog.Warn("skipping undecodable archived event", "path", path, "error", err)
			continue
		}
		*out = append(*out, ev)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan archive segment: %w", err)
	}
	return nil
}

// Run archives at startup and then periodically until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	if err := s.Archive(time.Now()); err != nil {
		slog.Warn("event log archive failed", "error", err)
	}
	tick := time.NewTicker(archiveInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = s.Flush()
			return
		case <-tick.C:
			if err := s.Archive(time.Now()); err != nil {
				slog.Warn("event log archive failed", "error", err)
			}
		}
	}
}
