package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/architeketh/retail-trends-bot/internal/classify"
	"github.com/architeketh/retail-trends-bot/internal/headline"
	"github.com/architeketh/retail-trends-bot/internal/history"
	"github.com/architeketh/retail-trends-bot/internal/report"
)

func testSnapshot() report.Snapshot {
	return report.Snapshot{
		Date: "2025-03-12",
		TopK: 5,
		Windows: []report.WindowReport{
			{Name: "today", Label: "Today", Keywords: []history.Entry{{Key: "prices", Count: 2}}, Brands: []history.Entry{{Key: "Walmart", Count: 1}}},
			{Name: "week", Label: "Week to date", Keywords: []history.Entry{{Key: "tariffs", Count: 5}}, Brands: []history.Entry{{Key: "Amazon", Count: 3}}},
			{Name: "year", Label: "Year to date"},
		},
	}
}

func testBuckets(t *testing.T) classify.Buckets {
	t.Helper()
	cat, err := classify.New(classify.DefaultRules())
	if err != nil {
		t.Fatal(err)
	}
	return cat.Bucket([]headline.Record{
		{Title: "Walmart opens new warehouse", Link: "https://a", Source: "A"},
		{Title: "Target expands shipping hubs", Link: "https://b", Source: "B"},
		{Title: "Vintage resale boom", Link: "https://c", Source: "C"},
	})
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a := NewApp(RunOpts{Snapshot: testSnapshot(), Buckets: testBuckets(t)})
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return a
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(a *App, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = a.Update(key(k))
	}
	return cmd
}

func TestWindowTabsWrap(t *testing.T) {
	a := newTestApp(t)
	press(a, "right")
	if w, _ := a.currentWindow(); w.Name != "week" {
		t.Errorf("expected week after right, got %s", w.Name)
	}
	press(a, "right", "right")
	if w, _ := a.currentWindow(); w.Name != "today" {
		t.Errorf("expected wrap to today, got %s", w.Name)
	}
	press(a, "left")
	if w, _ := a.currentWindow(); w.Name != "year" {
		t.Errorf("expected wrap back to year, got %s", w.Name)
	}
	press(a, "2")
	if w, _ := a.currentWindow(); w.Name != "week" {
		t.Errorf("expected 2 to select week, got %s", w.Name)
	}
}

func TestSeriesToggle(t *testing.T) {
	a := newTestApp(t)
	if got := a.currentEntries(); got[0].Key != "prices" {
		t.Errorf("expected keywords first, got %v", got)
	}
	press(a, "tab")
	if got := a.currentEntries(); got[0].Key != "Walmart" {
		t.Errorf("expected brands after tab, got %v", got)
	}
}

func TestCategoryNavigation(t *testing.T) {
	a := newTestApp(t)
	press(a, "c")
	if a.mode != modeCategories {
		t.Fatalf("expected categories mode, got %v", a.mode)
	}

	// Labels: Supply Chain, Big Box, Vintage.
	if got := a.visibleHeadlines(); len(got) != 2 {
		t.Errorf("expected 2 supply chain headlines, got %d", len(got))
	}
	press(a, "j", "j", "j")
	if a.catCursor != 2 {
		t.Errorf("expected cursor clamped at last category, got %d", a.catCursor)
	}
	if got := a.visibleHeadlines(); len(got) != 1 || got[0].Link != "https://c" {
		t.Errorf("expected the vintage headline, got %v", got)
	}

	press(a, "esc")
	if a.mode != modeCharts {
		t.Errorf("expected esc to return to charts, got %v", a.mode)
	}
}

func TestSearchFiltersHeadlines(t *testing.T) {
	a := newTestApp(t)
	press(a, "c", "/")
	if a.mode != modeSearch {
		t.Fatalf("expected search mode, got %v", a.mode)
	}
	press(a, "t", "a", "r")
	if got := a.visibleHeadlines(); len(got) != 1 || got[0].Link != "https://b" {
		t.Errorf("expected only the Target headline, got %v", got)
	}
	press(a, "esc")
	if len(a.visibleHeadlines()) != 2 {
		t.Error("expected esc to clear the filter")
	}
}

func TestOpenUsesSelectedHeadline(t *testing.T) {
	a := newTestApp(t)
	var opened string
	a.open = func(url string) error { opened = url; return nil }

	press(a, "c", "tab", "j")
	cmd := press(a, "o")
	if cmd == nil {
		t.Fatal("expected an open command")
	}
	cmd()
	if opened != "https://b" {
		t.Errorf("expected second supply chain headline opened, got %q", opened)
	}
}

func TestReload(t *testing.T) {
	a := newTestApp(t)
	press(a, "right") // week

	calls := 0
	a.reload = func() (report.Snapshot, classify.Buckets, error) {
		calls++
		snap := testSnapshot()
		snap.Windows[1].Keywords = []history.Entry{{Key: "layoffs", Count: 9}}
		return snap, classify.Buckets{}, nil
	}

	press(a, "r")
	if !a.refreshing {
		t.Fatal("expected refreshing state")
	}
	if cmd := press(a, "r"); cmd != nil {
		t.Error("expected a second reload to be ignored while one is running")
	}

	msg := a.reloadCmd()()
	a.Update(msg)
	if a.refreshing || calls != 1 {
		t.Errorf("expected reload finished, refreshing=%v calls=%d", a.refreshing, calls)
	}
	if w, _ := a.currentWindow(); w.Name != "week" || w.Keywords[0].Key != "layoffs" {
		t.Errorf("expected selected window kept with new data, got %+v", w)
	}
}

func TestReloadError(t *testing.T) {
	a := newTestApp(t)
	a.Update(errMsg{err: errors.New("history locked")})
	if a.err == nil {
		t.Fatal("expected error to be shown")
	}
	press(a, "right")
	if a.err != nil {
		t.Error("expected keypress to clear the error")
	}
}

func TestHelpReturnsToPreviousMode(t *testing.T) {
	a := newTestApp(t)
	press(a, "c", "?")
	if a.mode != modeHelp {
		t.Fatalf("expected help, got %v", a.mode)
	}
	press(a, "?")
	if a.mode != modeCategories {
		t.Errorf("expected return to categories, got %v", a.mode)
	}
}

func TestViewRenders(t *testing.T) {
	a := newTestApp(t)
	if out := a.View(); out == "" {
		t.Error("expected charts view")
	}
	press(a, "c")
	if out := a.View(); out == "" {
		t.Error("expected categories view")
	}
}

func TestQuit(t *testing.T) {
	a := newTestApp(t)
	cmd := press(a, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
