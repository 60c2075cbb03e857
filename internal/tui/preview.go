package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/seo-joon/benkyou/internal/render"
)

func renderPreview(card *render.Card, width, height, scroll int) string {
	if card == nil {
		return lipglossCenter("Select an example", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(card.Title)
	source := previewSourceStyle.Render(fmt.Sprintf("%s · %s", card.Source, card.Date))

	summary := card.Summary
	if summary == "" {
		summary = "(No summary available)"
	}
	body := previewBodyStyle.Width(contentWidth).Render(wordwrap.String(summary, contentWidth))

	parts := []string{title, source, "", body}
	if badges := renderBadges(card.Badges, contentWidth); badges != "" {
		parts = append(parts, "", badges)
	}

	link := "(no link)"
	if card.URL != "" {
		link = "Read more: " + card.URL
	}
	parts = append(parts, "", previewLinkStyle.Width(contentWidth).Render(link))

	content := lipgloss.JoinVertical(lipgloss.Left, parts...)

	// Apply scroll offset
	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	// Pad to fill height
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

// renderBadges lays concept badges out in rows no wider than width.
func renderBadges(badges []string, width int) string {
	var rows []string
	row := ""
	for _, b := range badges {
		chip := badgeStyle.Render(b)
		candidate := chip
		if row != "" {
			candidate = row + " " + chip
		}
		if lipgloss.Width(candidate) > width && row != "" {
			rows = append(rows, row)
			candidate = chip
		}
		row = candidate
	}
	if row != "" {
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}
