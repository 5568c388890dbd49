package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/architeketh/retail-trends-bot/internal/config"
	"github.com/architeketh/retail-trends-bot/internal/history"
	"github.com/architeketh/retail-trends-bot/internal/report"
)

func TestParseSince(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"invalid", 0, true},
		{"", 0, true},
		{"d", 0, true},
	}

	for _, tt := range tests {
		got, err := parseSince(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("parseSince(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseSince(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSince(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestResolveToday(t *testing.T) {
	cfg := &config.Config{Timezone: "America/New_York"}
	// 03:00 UTC on the 11th is still the 10th in New York.
	now := time.Date(2025, 3, 11, 3, 0, 0, 0, time.UTC)

	got, err := resolveToday(cfg, "", now)
	if err != nil {
		t.Fatalf("resolveToday: %v", err)
	}
	if history.Day(got) != "2025-03-10" {
		t.Errorf("expected local date 2025-03-10, got %s", history.Day(got))
	}

	got, err = resolveToday(cfg, "2024-12-31", now)
	if err != nil {
		t.Fatalf("resolveToday with flag: %v", err)
	}
	if history.Day(got) != "2024-12-31" {
		t.Errorf("expected flag date, got %s", history.Day(got))
	}

	if _, err := resolveToday(cfg, "31/12/2024", now); err == nil {
		t.Error("expected error for malformed --date")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(50 * time.Hour); got != "2d" {
		t.Errorf("expected 2d, got %s", got)
	}
	if got := formatDuration(3 * time.Hour); got != "3h" {
		t.Errorf("expected 3h, got %s", got)
	}
	if got := formatDuration(5 * time.Minute); got != "5m" {
		t.Errorf("expected 5m, got %s", got)
	}
}

func TestPrintSnapshot(t *testing.T) {
	snap := report.Snapshot{
		Windows: []report.WindowReport{
			{
				Name: "today", Label: "Today", From: "2025-03-10", To: "2025-03-10", Days: 1,
				Keywords: []history.Entry{{Key: "prices", Count: 3}, {Key: "layoffs", Count: 1}},
				Brands:   []history.Entry{{Key: "walmart", Count: 2}},
			},
		},
	}

	var buf bytes.Buffer
	if err := printSnapshot(&buf, snap, "keywords"); err != nil {
		t.Fatalf("printSnapshot: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Today", "prices", "layoffs", "3"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "walmart") {
		t.Errorf("expected brands to be omitted for --series keywords:\n%s", out)
	}
	if strings.Index(out, "prices") > strings.Index(out, "layoffs") {
		t.Errorf("expected rank order preserved:\n%s", out)
	}
}

func TestPrintSnapshotEmpty(t *testing.T) {
	snap := report.Snapshot{Windows: []report.WindowReport{{Name: "week", Label: "Week to date"}}}
	var buf bytes.Buffer
	if err := printSnapshot(&buf, snap, "all"); err != nil {
		t.Fatalf("printSnapshot: %v", err)
	}
	if !strings.Contains(buf.String(), "no keyword data") || !strings.Contains(buf.String(), "no brand data") {
		t.Errorf("expected empty markers, got:\n%s", buf.String())
	}
}

func TestPrintSeriesStats(t *testing.T) {
	var buf bytes.Buffer
	printSeriesStats(&buf, "brands", history.Series{
		"2025-03-10": {"walmart": 2},
		"2025-03-11": {"walmart": 1, "target": 1},
	})
	want := "brands: 2 day(s) from 2025-03-10 to 2025-03-11, 2 distinct, 4 total\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
