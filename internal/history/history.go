// Package history keeps date-keyed frequency tables with bounded retention
// and answers calendar window queries over them.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// DateLayout is the ISO calendar-date key format.
const DateLayout = "2006-01-02"

// ErrCorrupt reports a persisted history that could not be decoded.
var ErrCorrupt = errors.New("history is corrupt")

// Counts maps a token or brand to its non-negative count.
type Counts map[string]int

// Clone returns an independent copy of c with non-positive entries dropped.
func (c Counts) Clone() Counts {
	out := make(Counts, len(c))
	for k, v := range c {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Series maps an ISO date to that day's counts.
type Series map[string]Counts

// Store persists one Series.
type Store interface {
	Load() (Series, error)
	Save(Series) error
}

// Day formats t as a history key using t's own calendar date.
func Day(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDay parses an ISO date key into UTC midnight.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// civil strips t to its calendar date at UTC midnight so date arithmetic
// is immune to zone offsets and DST.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Upsert replaces the entry for day with a copy of counts. Reruns for the
// same day overwrite instead of accumulating.
func (s Series) Upsert(day string, counts Counts) error {
	if _, err := ParseDay(day); err != nil {
		return err
	}
	s[day] = counts.Clone()
	return nil
}

// Dates returns the retained dates in ascending order.
func (s Series) Dates() []string {
	dates := make([]string, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Trim keeps the newest horizon dates and returns the dropped ones, oldest
// first. A non-positive horizon keeps everything.
func (s Series) Trim(horizon int) []string {
	if horizon <= 0 || len(s) <= horizon {
		return nil
	}
	dates := s.Dates()
	dropped := dates[:len(dates)-horizon]
	for _, d := range dropped {
		delete(s, d)
	}
	return dropped
}

// DropBefore removes every date earlier than the calendar date of cutoff
// and returns the removed dates, oldest first.
func (s Series) DropBefore(cutoff time.Time) []string {
	limit := Day(civil(cutoff))
	var dropped []string
	for _, d := range s.Dates() {
		if d >= limit {
			break
		}
		dropped = append(dropped, d)
		delete(s, d)
	}
	return dropped
}

// Clone returns a deep copy of s.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	for d, c := range s {
		out[d] = c.Clone()
	}
	return out
}

// Normalize converts decoded raw values into a Series. Counts are rounded
// to integers; date keys that do not parse and counts that are negative,
// not finite, too large for an int or not numbers at all are dropped and
// tallied in the returned count. A nil table is kept as an empty day.
func Normalize(raw map[string]map[string]any) (Series, int) {
	out := make(Series, len(raw))
	dropped := 0
	for day, table := range raw {
		if _, err := ParseDay(day); err != nil {
			dropped += 1 + len(table)
			continue
		}
		counts := make(Counts, len(table))
		for k, v := range table {
			n, ok := toCount(v)
			if !ok || k == "" {
				dropped++
				continue
			}
			if n == 0 {
				continue
			}
			counts[k] = n
		}
		out[day] = counts
	}
	return out, dropped
}

func toCount(v any) (int, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case json.Number:
		var err error
		if f, err = x.Float64(); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxInt {
		return 0, false
	}
	return int(math.Round(f)), true
}
