package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/architeketh/retail-trends-bot/internal/history"
)

const barGlyph = "█"

// barLength scales count against the largest count so the top entry fills
// width. Any positive count gets at least one cell.
func barLength(count, maxCount, width int) int {
	if count <= 0 || maxCount <= 0 || width <= 0 {
		return 0
	}
	n := count * width / maxCount
	if n == 0 {
		n = 1
	}
	return n
}

// renderBars draws one horizontal bar per entry, in the given order.
func renderBars(entries []history.Entry, width, height int) string {
	if len(entries) == 0 {
		return lipglossCenter("No data for this window", width, height)
	}
	if height > 0 && len(entries) > height {
		entries = entries[:height]
	}

	maxCount := 0
	labelW := 0
	for _, e := range entries {
		maxCount = max(maxCount, e.Count)
		labelW = max(labelW, utf8.RuneCountInString(e.Key))
	}
	labelW = min(labelW, max(width/3, 4))
	countW := len(fmt.Sprint(maxCount))
	barW := width - labelW - countW - 2

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		label := fmt.Sprintf("%-*s", labelW, truncateStr(e.Key, labelW))
		bar := strings.Repeat(barGlyph, barLength(e.Count, maxCount, barW))
		lines = append(lines, barLabelStyle.Render(label)+" "+barStyle.Render(bar)+" "+barCountStyle.Render(fmt.Sprint(e.Count)))
	}
	return strings.Join(lines, "\n")
}
