package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/architeketh/retail-trends-bot/internal/headline"
)

// Layouts seen in RSS and Atom published fields.
var publishedLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
}

func parsePublished(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func publishedLabel(raw string) string {
	if t, ok := parsePublished(raw); ok {
		return relativeTime(t)
	}
	return raw
}

func renderListItem(r headline.Record, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(r.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(r.Title, width-4))
	}

	meta := "  " + itemSourceStyle.Render(r.Source)
	if when := publishedLabel(r.Published); when != "" {
		meta += " " + itemTimeStyle.Render("· "+when)
	}

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// scrollWindow returns the [start, end) range of n items that keeps cursor
// visible when only visible items fit.
func scrollWindow(n, cursor, visible int) (int, int) {
	if visible < 1 {
		visible = 1
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > n {
		end = n
		start = max(0, end-visible)
	}
	return start, end
}

func renderHeadlineList(records []headline.Record, cursor, height, width int) string {
	if len(records) == 0 {
		return lipglossCenter("No headlines", width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	start, end := scrollWindow(len(records), cursor, height/3)

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(records[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

type labelCount struct {
	label string
	count int
}

func renderCategoryList(cats []labelCount, cursor, height, width int) string {
	if len(cats) == 0 {
		return lipglossCenter("No categories", width, height)
	}

	start, end := scrollWindow(len(cats), cursor, height)

	var b strings.Builder
	for i := start; i < end; i++ {
		line := fmt.Sprintf("%s (%d)", truncateStr(cats[i].label, width-8), cats[i].count)
		if i == cursor {
			b.WriteString(itemSelectedStyle.Render("> " + line))
		} else {
			b.WriteString(itemTitleStyle.Render("  " + line))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", max(height/3, 0)) + strings.Repeat(" ", pad) + s
}
