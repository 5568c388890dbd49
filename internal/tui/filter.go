package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// tabBar is a single-selection row of window tabs.
type tabBar struct {
	labels []string
	cursor int
}

func newTabBar(labels []string) tabBar {
	return tabBar{labels: labels}
}

func (t *tabBar) next() {
	if len(t.labels) > 0 {
		t.cursor = (t.cursor + 1) % len(t.labels)
	}
}

func (t *tabBar) prev() {
	if len(t.labels) > 0 {
		t.cursor = (t.cursor - 1 + len(t.labels)) % len(t.labels)
	}
}

func (t *tabBar) selectIndex(i int) {
	if i >= 0 && i < len(t.labels) {
		t.cursor = i
	}
}

func (t *tabBar) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, label := range t.labels {
		style := tabInactiveStyle
		if i == t.cursor {
			style = tabActiveStyle
		}
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += style.Render(label)
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
