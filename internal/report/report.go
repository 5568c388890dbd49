// Package report ranks windowed aggregates into a serializable snapshot.
package report

import (
	"sort"
	"time"

	"github.com/architeketh/retail-trends-bot/internal/headline"
	"github.com/architeketh/retail-trends-bot/internal/history"
)

// DefaultTopK is used when a Builder has no positive TopK.
const DefaultTopK = 15

// Snapshot is everything the renderers need for one run.
type Snapshot struct {
	Date        string          `json:"date"`
	GeneratedAt time.Time       `json:"generated_at"`
	TopK        int             `json:"top_k"`
	Windows     []WindowReport  `json:"windows"`
	Sources     []history.Entry `json:"sources,omitempty"`
}

// WindowReport is the ranked output of one window.
type WindowReport struct {
	Name     string          `json:"name"`
	Label    string          `json:"label"`
	From     string          `json:"from"`
	To       string          `json:"to"`
	Days     int             `json:"days"`
	Keywords []history.Entry `json:"keywords"`
	Brands   []history.Entry `json:"brands"`
}

// Window returns the report with the given name.
func (s Snapshot) Window(name string) (WindowReport, bool) {
	for _, w := range s.Windows {
		if w.Name == name {
			return w, true
		}
	}
	return WindowReport{}, false
}

// Builder has no state beyond its configuration; Build never writes.
type Builder struct {
	TopK    int
	Windows []history.Window
}

// Build aggregates both series over every window as of today.
func (b Builder) Build(tokens, brands history.Series, today time.Time) Snapshot {
	k := b.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	windows := b.Windows
	if len(windows) == 0 {
		windows = history.DefaultWindows()
	}

	snap := Snapshot{
		Date:        history.Day(today),
		GeneratedAt: time.Now().UTC().Truncate(time.Second),
		TopK:        k,
		Windows:     make([]WindowReport, 0, len(windows)),
	}
	for _, w := range windows {
		tt := tokens.Aggregate(w, today)
		bt := brands.Aggregate(w, today)
		from, to := w.Span(today)
		snap.Windows = append(snap.Windows, WindowReport{
			Name:     w.Name,
			Label:    w.Label,
			From:     history.Day(from),
			To:       history.Day(to),
			Days:     max(len(tt.Days()), len(bt.Days())),
			Keywords: tt.Top(k),
			Brands:   bt.Top(k),
		})
	}
	return snap
}

// Sources counts valid records per source, busiest first. Ties keep
// first-seen order.
func Sources(records []headline.Record) []history.Entry {
	counts := map[string]int{}
	var order []string
	for _, r := range records {
		if !r.Valid() {
			continue
		}
		name := r.Source
		if name == "" {
			name = "unknown"
		}
		if _, ok := counts[name]; !ok {
			order = append(order, name)
		}
		counts[name]++
	}

	out := make([]history.Entry, 0, len(order))
	for _, name := range order {
		out = append(out, history.Entry{Key: name, Count: counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
