package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/architeketh/retail-trends-bot/internal/browser"
	"github.com/architeketh/retail-trends-bot/internal/classify"
	"github.com/architeketh/retail-trends-bot/internal/headline"
	"github.com/architeketh/retail-trends-bot/internal/history"
	"github.com/architeketh/retail-trends-bot/internal/report"
)

type focusPane int

const (
	focusCategories focusPane = iota
	focusHeadlines
)

type mode int

const (
	modeCharts mode = iota
	modeCategories
	modeSearch
	modeHelp
)

type series int

const (
	seriesKeywords series = iota
	seriesBrands
)

func (s series) String() string {
	if s == seriesBrands {
		return "Top brands"
	}
	return "Top keywords"
}

// ReloadFunc rebuilds the dashboard data, typically from persisted history.
type ReloadFunc func() (report.Snapshot, classify.Buckets, error)

type App struct {
	snapshot report.Snapshot
	buckets  classify.Buckets
	reload   ReloadFunc
	open     func(string) error

	mode       mode
	helpReturn mode
	series     series
	focus      focusPane
	tabs       tabBar
	catCursor  int
	itemCursor int

	width  int
	height int

	// Sub-components
	searchInput textinput.Model
	spinner     spinner.Model

	refreshing bool
	err        error
}

// RunOpts holds all parameters for launching the dashboard.
type RunOpts struct {
	Snapshot report.Snapshot
	Buckets  classify.Buckets
	Reload   ReloadFunc
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Filter headlines..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	a := &App{
		reload:      opts.Reload,
		open:        browser.Open,
		searchInput: ti,
		spinner:     sp,
	}
	a.setData(opts.Snapshot, opts.Buckets)
	return a
}

func (a *App) setData(snap report.Snapshot, buckets classify.Buckets) {
	current := ""
	if w, ok := a.currentWindow(); ok {
		current = w.Name
	}

	a.snapshot = snap
	a.buckets = buckets
	labels := make([]string, len(snap.Windows))
	for i, w := range snap.Windows {
		labels[i] = w.Label
	}
	a.tabs = newTabBar(labels)
	for i, w := range snap.Windows {
		if w.Name == current {
			a.tabs.selectIndex(i)
		}
	}
	a.catCursor = min(a.catCursor, max(0, buckets.Len()-1))
	a.itemCursor = 0
}

func (a *App) Init() tea.Cmd {
	return nil
}

func (a *App) reloadCmd() tea.Cmd {
	reload := a.reload
	return func() tea.Msg {
		snap, buckets, err := reload()
		if err != nil {
			return errMsg{err: err}
		}
		return reloadedMsg{snapshot: snap, buckets: buckets}
	}
}

func (a *App) openCmd(url string) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case reloadedMsg:
		a.refreshing = false
		a.setData(msg.snapshot, msg.buckets)
		return a, nil

	case errMsg:
		a.refreshing = false
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeHelp:
		switch msg.String() {
		case "?", "esc", "q":
			a.mode = a.helpReturn
		}
		return a, nil
	case modeCategories:
		return a.handleCategoryKey(msg)
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "right", "l":
		a.tabs.next()
	case "left", "h":
		a.tabs.prev()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		a.tabs.selectIndex(int(msg.String()[0] - '1'))
	case "tab":
		if a.series == seriesKeywords {
			a.series = seriesBrands
		} else {
			a.series = seriesKeywords
		}
	case "c":
		a.mode = modeCategories
	case "?":
		a.helpReturn, a.mode = a.mode, modeHelp
	case "r":
		return a, a.startReload()
	}
	return a, nil
}

func (a *App) handleCategoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "esc", "c":
		a.mode = modeCharts
	case "tab":
		if a.focus == focusCategories {
			a.focus = focusHeadlines
		} else {
			a.focus = focusCategories
		}
	case "j", "down":
		if a.focus == focusCategories {
			if a.catCursor < a.buckets.Len()-1 {
				a.catCursor++
				a.itemCursor = 0
			}
		} else if a.itemCursor < len(a.visibleHeadlines())-1 {
			a.itemCursor++
		}
	case "k", "up":
		if a.focus == focusCategories {
			if a.catCursor > 0 {
				a.catCursor--
				a.itemCursor = 0
			}
		} else if a.itemCursor > 0 {
			a.itemCursor--
		}
	case "o", "enter":
		items := a.visibleHeadlines()
		if a.itemCursor < len(items) {
			return a, a.openCmd(items[a.itemCursor].Link)
		}
	case "/":
		a.mode = modeSearch
		a.focus = focusHeadlines
		a.searchInput.Focus()
		return a, textinput.Blink
	case "?":
		a.helpReturn, a.mode = a.mode, modeHelp
	case "r":
		return a, a.startReload()
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeCategories
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.itemCursor = 0
		return a, nil
	case "enter":
		a.mode = modeCategories
		a.searchInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	a.itemCursor = 0
	return a, cmd
}

func (a *App) startReload() tea.Cmd {
	if a.reload == nil || a.refreshing {
		return nil
	}
	a.refreshing = true
	return tea.Batch(a.reloadCmd(), a.spinner.Tick)
}

func (a *App) currentWindow() (report.WindowReport, bool) {
	if a.tabs.cursor < len(a.snapshot.Windows) {
		return a.snapshot.Windows[a.tabs.cursor], true
	}
	return report.WindowReport{}, false
}

func (a *App) currentEntries() []history.Entry {
	w, ok := a.currentWindow()
	if !ok {
		return nil
	}
	if a.series == seriesBrands {
		return w.Brands
	}
	return w.Keywords
}

func (a *App) categories() []labelCount {
	labels := a.buckets.Labels()
	out := make([]labelCount, len(labels))
	for i, l := range labels {
		out[i] = labelCount{label: l, count: len(a.buckets.Records(l))}
	}
	return out
}

// visibleHeadlines returns the selected category's records, narrowed by the
// search query.
func (a *App) visibleHeadlines() []headline.Record {
	labels := a.buckets.Labels()
	if a.catCursor >= len(labels) {
		return nil
	}
	records := a.buckets.Records(labels[a.catCursor])
	q := strings.ToLower(strings.TrimSpace(a.searchInput.Value()))
	if q == "" {
		return records
	}
	var out []headline.Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Title), q) {
			out = append(out, r)
		}
	}
	return out
}

func (a *App) header() string {
	date := a.snapshot.Date
	if t, err := history.ParseDay(date); err == nil {
		date = t.Format("Mon Jan 2, 2006")
	}
	left := headerStyle.Render("retail-trends")
	right := headerDateStyle.Render(date)
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + fmt.Sprintf("%*s", gap, "") + right
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  retail-trends")
	}
	if a.mode == modeHelp {
		return a.renderHelp()
	}

	contentHeight := a.height - 3 - 2 // header, tabs, status, borders
	if contentHeight < 3 {
		contentHeight = 3
	}

	var content, hints string
	var left string
	if a.mode == modeCharts {
		content = a.renderCharts(contentHeight)
		hints = "←/→ window  tab keywords/brands  c categories  r reload  ? help  q quit"
		if w, ok := a.currentWindow(); ok {
			left = fmt.Sprintf(" %s · %d days", w.Label, w.Days)
		}
	} else {
		content = a.renderCategories(contentHeight)
		hints = "j/k move  tab pane  o open  / filter  c charts  q quit"
		if a.mode == modeSearch {
			hints = "esc clear  enter done"
		}
		left = fmt.Sprintf(" %d categories · %d headlines", a.buckets.Len(), len(a.visibleHeadlines()))
	}

	top := a.tabs.render(a.width)
	if a.mode == modeSearch || (a.mode == modeCategories && a.searchInput.Value() != "") {
		top = a.searchInput.View()
	}

	status := renderStatusBar(left, hints, a.width)
	if a.refreshing {
		status = a.spinner.View() + " " + status
	}
	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.header(), top, content, status)
}

func (a *App) renderCharts(height int) string {
	title := a.series.String()
	if w, ok := a.currentWindow(); ok {
		title += fmt.Sprintf(" · %s (%s → %s)", w.Label, w.From, w.To)
	}
	inner := a.width - 4
	body := renderBars(a.currentEntries(), inner, height-2)
	content := paneTitleStyle.Render(truncateStr(title, inner)) + "\n" + body
	return paneActiveStyle.Width(a.width - 2).Height(height).Render(content)
}

func (a *App) renderCategories(height int) string {
	listWidth := int(float64(a.width) * 0.3)
	itemsWidth := a.width - listWidth - 1

	cats := renderCategoryList(a.categories(), a.catCursor, height, listWidth-4)
	items := renderHeadlineList(a.visibleHeadlines(), a.itemCursor, height, itemsWidth-4)

	catStyle, itemStyle := paneActiveStyle, paneStyle
	if a.focus == focusHeadlines {
		catStyle, itemStyle = paneStyle, paneActiveStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		catStyle.Width(listWidth-2).Height(height).Render(cats),
		itemStyle.Width(itemsWidth-2).Height(height).Render(items),
	)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("retail-trends")
	dim := helpDimStyle

	help := title + dim.Render(" · Keyboard Shortcuts") + "\n\n" +
		dim.Render("Charts") + "\n" +
		"  ←/→, h/l     Previous/next window\n" +
		"  1-9           Jump to window\n" +
		"  tab           Toggle keywords and brands\n" +
		"  c             Show categories\n\n" +
		dim.Render("Categories") + "\n" +
		"  j/k, ↑/↓     Move\n" +
		"  tab           Switch between categories and headlines\n" +
		"  o, enter      Open headline in browser\n" +
		"  /             Filter headlines\n" +
		"  esc, c        Back to charts\n\n" +
		dim.Render("General") + "\n" +
		"  r             Reload from history\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the dashboard.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

