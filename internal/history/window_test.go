package history

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDay(s)
	if err != nil {
		t.Fatalf("ParseDay(%q): %v", s, err)
	}
	return d
}

func TestWindowContains(t *testing.T) {
	// 2025-03-12 is a Wednesday; its ISO week starts Monday 2025-03-10.
	today := "2025-03-12"
	tests := []struct {
		window Window
		day    string
		want   bool
	}{
		{Today(), "2025-03-12", true},
		{Today(), "2025-03-11", false},

		{WeekToDate(), "2025-03-10", true},
		{WeekToDate(), "2025-03-09", false}, // Sunday of the previous ISO week
		{Rolling(7), "2025-03-09", true},
		{Rolling(7), "2025-03-06", true},
		{Rolling(7), "2025-03-05", false},

		{MonthToDate(), "2025-03-01", true},
		{MonthToDate(), "2025-02-28", false},
		{YearToDate(), "2025-01-01", true},
		{YearToDate(), "2024-12-31", false},

		// Dates after today never count.
		{WeekToDate(), "2025-03-13", false},
		{YearToDate(), "2025-12-31", false},
	}
	for _, tt := range tests {
		got := tt.window.Contains(date(t, tt.day), date(t, today))
		if got != tt.want {
			t.Errorf("%s.Contains(%s) as of %s = %v, want %v", tt.window.Name, tt.day, today, got, tt.want)
		}
	}
}

func TestWeekToDateDiffersFromRollingAtWeekStart(t *testing.T) {
	s := Series{
		"2025-03-08": {"sat": 1},
		"2025-03-09": {"sun": 1},
		"2025-03-10": {"mon": 1},
	}
	monday := date(t, "2025-03-10")

	week := s.Aggregate(WeekToDate(), monday)
	if week.Len() != 1 || week.Count("mon") != 1 {
		t.Errorf("expected week-to-date to reset on Monday, got %v", week.Top(0))
	}
	rolling := s.Aggregate(Rolling(7), monday)
	if rolling.Len() != 3 {
		t.Errorf("expected rolling7 to span the weekend, got %v", rolling.Top(0))
	}
}

func TestWeekToDateISOYearBoundary(t *testing.T) {
	// 2024-12-30 (Mon) and 2025-01-01 (Wed) share ISO week 2025-W01.
	s := Series{
		"2024-12-29": {"x": 1},
		"2024-12-30": {"x": 2},
		"2025-01-01": {"x": 4},
	}
	got := s.Aggregate(WeekToDate(), date(t, "2025-01-01"))
	if got.Count("x") != 6 {
		t.Errorf("expected 6 across the year boundary, got %d", got.Count("x"))
	}
	ytd := s.Aggregate(YearToDate(), date(t, "2025-01-01"))
	if ytd.Count("x") != 4 {
		t.Errorf("expected year-to-date to reset on Jan 1, got %d", ytd.Count("x"))
	}
}

func TestContainsIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	today := time.Date(2025, 3, 12, 23, 30, 0, 0, loc)
	if !Today().Contains(date(t, "2025-03-12"), today) {
		t.Error("expected late-evening local time to match its own calendar date")
	}
}

func TestAggregateSums(t *testing.T) {
	s := Series{
		"2025-03-10": {"walmart": 2, "target": 1},
		"2025-03-11": {"walmart": 1, "amazon": 4},
		"2025-02-28": {"walmart": 10},
	}
	got := s.Aggregate(MonthToDate(), date(t, "2025-03-11"))

	want := Counts{"walmart": 3, "target": 1, "amazon": 4}
	if diff := cmp.Diff(want, got.Counts()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"2025-03-10", "2025-03-11"}, got.Days()); diff != "" {
		t.Errorf("days mismatch (-want +got):\n%s", diff)
	}
}

func TestTopTieBreakByDiscoveryOrder(t *testing.T) {
	s := Series{
		"2025-03-10": {"zeta": 2, "beta": 1},
		"2025-03-11": {"alpha": 2, "beta": 1},
	}
	got := s.Aggregate(WeekToDate(), date(t, "2025-03-11")).Top(0)

	// alpha sorts first but is only seen on the later date, so it ranks last.
	want := []Entry{{"beta", 2}, {"zeta", 2}, {"alpha", 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestTopStableAcrossRuns(t *testing.T) {
	s := Series{"2025-03-10": {"d": 1, "c": 1, "b": 1, "a": 1, "e": 3}}
	first := s.Aggregate(Today(), date(t, "2025-03-10")).Top(3)
	for i := 0; i < 20; i++ {
		again := s.Aggregate(Today(), date(t, "2025-03-10")).Top(3)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differed:\n%s", i, diff)
		}
	}
	want := []Entry{{"e", 3}, {"a", 1}, {"b", 1}}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestYearToDateAfterTrimKeepsSameYearEntries(t *testing.T) {
	today := date(t, "2025-12-31")
	s := Series{}
	want := 0
	for d := date(t, "2024-06-01"); !d.After(today); d = d.AddDate(0, 0, 1) {
		s.Upsert(Day(d), Counts{"k": 1})
		if d.Year() == 2025 {
			want++
		}
	}
	s.Trim(366)

	got := s.Aggregate(YearToDate(), today).Count("k")
	if got != want {
		t.Errorf("expected year-to-date %d after trimming to 366 days, got %d", want, got)
	}
}

func TestResolveWindow(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"today", "today", false},
		{"week", "week", false},
		{"WTD", "week", false},
		{"rolling7", "rolling7", false},
		{"rolling30", "rolling30", false},
		{"month", "month", false},
		{"ytd", "year", false},
		{"rolling0", "", true},
		{"fortnight", "", true},
	}
	for _, tt := range tests {
		w, err := ResolveWindow(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ResolveWindow(%q): expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveWindow(%q): unexpected error: %v", tt.name, err)
			continue
		}
		if w.Name != tt.want {
			t.Errorf("ResolveWindow(%q) = %s, want %s", tt.name, w.Name, tt.want)
		}
	}
}

func TestSpan(t *testing.T) {
	today := date(t, "2025-03-12")
	tests := []struct {
		window Window
		from   string
	}{
		{Today(), "2025-03-12"},
		{WeekToDate(), "2025-03-10"},
		{Rolling(7), "2025-03-06"},
		{MonthToDate(), "2025-03-01"},
		{YearToDate(), "2025-01-01"},
	}
	for _, tt := range tests {
		from, to := tt.window.Span(today)
		if Day(from) != tt.from || Day(to) != "2025-03-12" {
			t.Errorf("%s.Span = %s..%s, want %s..2025-03-12", tt.window.Name, Day(from), Day(to), tt.from)
		}
	}
}
