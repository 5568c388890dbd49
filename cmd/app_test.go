package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/architeketh/retail-trends-bot/internal/config"
	"github.com/architeketh/retail-trends-bot/internal/history"
	"github.com/architeketh/retail-trends-bot/internal/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		History: config.HistoryConfig{Dir: filepath.Join(dir, "history")},
		Paths: config.PathsConfig{
			Input:     filepath.Join(dir, "headlines.json"),
			OutputDir: filepath.Join(dir, "site"),
		},
	}
}

func TestLoadViewCorruptHistoryShowsEmpty(t *testing.T) {
	cfg := testConfig(t)
	dir := cfg.HistoryDir()
	os.MkdirAll(dir, 0o755)
	tokensPath := filepath.Join(dir, tokensFile)
	if err := os.WriteFile(tokensPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, brandsFile), []byte(`{"2025-03-10": {"Walmart": 2}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	log, err := logging.New("info", "", &buf)
	if err != nil {
		t.Fatal(err)
	}
	st, err := openStores(cfg, log)
	if err != nil {
		t.Fatalf("openStores: %v", err)
	}
	defer st.Close()

	snap, _, err := loadView(cfg, st, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), log)
	if err != nil {
		t.Fatalf("expected corrupt history to be shown as empty, got %v", err)
	}
	today, ok := snap.Window("today")
	if !ok {
		t.Fatal("expected a today window")
	}
	if len(today.Keywords) != 0 {
		t.Errorf("expected no keywords, got %v", today.Keywords)
	}
	if diff := cmp.Diff([]history.Entry{{Key: "Walmart", Count: 2}}, today.Brands); diff != "" {
		t.Errorf("brands mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "unreadable") {
		t.Errorf("expected a warning, got %q", buf.String())
	}
	if data, _ := os.ReadFile(tokensPath); string(data) != "{not json" {
		t.Errorf("expected the corrupt file left in place, got %q", data)
	}
}

func TestPruneSeriesOlderThanUsesDates(t *testing.T) {
	today := time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC)
	s := history.Series{
		"2024-12-01": {"a": 1},
		"2025-01-15": {"a": 1},
		"2025-03-02": {"a": 1},
		"2025-03-30": {"a": 1},
	}

	dropped := pruneSeries(s, 0, today.AddDate(0, 0, -30))

	if diff := cmp.Diff([]string{"2024-12-01", "2025-01-15"}, dropped); diff != "" {
		t.Errorf("dropped mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"2025-03-02", "2025-03-30"}, s.Dates()); diff != "" {
		t.Errorf("retained mismatch (-want +got):\n%s", diff)
	}
}

func TestPruneSeriesKeep(t *testing.T) {
	s := history.Series{
		"2025-03-01": {"a": 1},
		"2025-03-02": {"a": 1},
		"2025-03-03": {"a": 1},
	}
	dropped := pruneSeries(s, 2, time.Time{})
	if diff := cmp.Diff([]string{"2025-03-01"}, dropped); diff != "" {
		t.Errorf("dropped mismatch (-want +got):\n%s", diff)
	}
}
