package history

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Window selects the retained dates that contribute to an aggregate.
// Contains receives civil dates; a day after today never matches.
type Window struct {
	Name     string
	Label    string
	contains func(day, today time.Time) bool
}

// Contains reports whether day falls inside w as of today.
func (w Window) Contains(day, today time.Time) bool {
	day, today = civil(day), civil(today)
	if day.After(today) {
		return false
	}
	return w.contains(day, today)
}

// Today matches the current date only.
func Today() Window {
	return Window{Name: "today", Label: "Today", contains: func(day, today time.Time) bool {
		return day.Equal(today)
	}}
}

// Rolling matches today and the n-1 days before it.
func Rolling(n int) Window {
	if n < 1 {
		n = 1
	}
	return Window{
		Name:  fmt.Sprintf("rolling%d", n),
		Label: fmt.Sprintf("Last %d days", n),
		contains: func(day, today time.Time) bool {
			return !day.Before(today.AddDate(0, 0, -(n - 1)))
		},
	}
}

// WeekToDate matches the ISO week of today; it resets every Monday.
func WeekToDate() Window {
	return Window{Name: "week", Label: "Week to date", contains: func(day, today time.Time) bool {
		dy, dw := day.ISOWeek()
		ty, tw := today.ISOWeek()
		return dy == ty && dw == tw
	}}
}

// MonthToDate matches the calendar month of today.
func MonthToDate() Window {
	return Window{Name: "month", Label: "Month to date", contains: func(day, today time.Time) bool {
		return day.Year() == today.Year() && day.Month() == today.Month()
	}}
}

// YearToDate matches the calendar year of today.
func YearToDate() Window {
	return Window{Name: "year", Label: "Year to date", contains: func(day, today time.Time) bool {
		return day.Year() == today.Year()
	}}
}

// DefaultWindows returns the report windows in display order.
func DefaultWindows() []Window {
	return []Window{Today(), WeekToDate(), Rolling(7), MonthToDate(), YearToDate()}
}

// ResolveWindow maps a window name (today, week, rolling7, month, year, or
// rollingN) to a Window.
func ResolveWindow(name string) (Window, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "today":
		return Today(), nil
	case "week", "wtd":
		return WeekToDate(), nil
	case "month", "mtd":
		return MonthToDate(), nil
	case "year", "ytd":
		return YearToDate(), nil
	}
	var n int
	if _, err := fmt.Sscanf(name, "rolling%d", &n); err == nil && n > 0 {
		return Rolling(n), nil
	}
	return Window{}, fmt.Errorf("unknown window %q (valid: today, week, rolling7, month, year)", name)
}

// Span returns the first and last dates a window can cover as of today.
func (w Window) Span(today time.Time) (from, to time.Time) {
	today = civil(today)
	from = today
	for d := today.AddDate(0, 0, -1); w.Contains(d, today); d = d.AddDate(0, 0, -1) {
		from = d
	}
	return from, today
}

// Entry is one ranked key.
type Entry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Tally is a summed aggregate that remembers the order keys were first
// seen so rankings are stable across runs.
type Tally struct {
	counts map[string]int
	order  []string
	days   []string
}

// Aggregate sums every retained date that w contains as of today. Dates are
// scanned ascending and keys lexically within a date, which fixes the
// discovery order used for tie-breaking.
func (s Series) Aggregate(w Window, today time.Time) Tally {
	t := Tally{counts: make(map[string]int)}
	for _, d := range s.Dates() {
		day, err := ParseDay(d)
		if err != nil || !w.Contains(day, today) {
			continue
		}
		t.days = append(t.days, d)
		table := s[d]
		keys := make([]string, 0, len(table))
		for k := range table {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, ok := t.counts[k]; !ok {
				t.order = append(t.order, k)
			}
			t.counts[k] += table[k]
		}
	}
	return t
}

// Count returns the summed count for key.
func (t Tally) Count(key string) int {
	return t.counts[key]
}

// Len returns the number of distinct keys.
func (t Tally) Len() int {
	return len(t.order)
}

// Days returns the dates that contributed, ascending.
func (t Tally) Days() []string {
	return t.days
}

// Counts returns a copy of the summed table.
func (t Tally) Counts() Counts {
	return Counts(t.counts).Clone()
}

// Top returns the k highest counts, ties broken by discovery order.
// A non-positive k returns every key.
func (t Tally) Top(k int) []Entry {
	rank := make(map[string]int, len(t.order))
	entries := make([]Entry, 0, len(t.order))
	for i, key := range t.order {
		rank[key] = i
		entries = append(entries, Entry{Key: key, Count: t.counts[key]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return rank[entries[i].Key] < rank[entries[j].Key]
	})
	if k > 0 && len(entries) > k {
		entries = entries[:k]
	}
	return entries
}
