package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/seo-joon/benkyou/internal/fetcher"
)

type statusInfo struct {
	count   int
	track   string
	days    int
	phase   fetcher.Phase
	message string
	badge   string
}

func renderStatusBar(s statusInfo, width int) string {
	left := fmt.Sprintf(" %d examples · %s · %dd", s.count, trackLabel(s.track), s.days)
	if s.phase == fetcher.PhaseLoading {
		left += " (loading...)"
	}
	if s.message != "" {
		left += " · " + s.message
	}

	right := ""
	if s.badge != "" {
		right = " " + s.badge + " "
	}

	// statusBarStyle pads one cell on each side
	gap := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}
