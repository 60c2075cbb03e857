package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/seo-joon/benkyou/internal/render"
)

// entry pairs a rendered card with the raw publish time used for the
// compact age column.
type entry struct {
	card      render.Card
	published time.Time
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return render.NoDate
	}
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

func renderListItem(e entry, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(e.card.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(e.card.Title, width-4))
	}

	age := "· " + relativeTime(e.published)
	source := truncateStr(e.card.Source, width-4-runewidth.StringWidth(age))
	meta := "  " + itemSourceStyle.Render(source) + " " + itemTimeStyle.Render(age)

	return title + "\n" + meta
}

// truncateStr cuts s to n terminal cells, ending in "..." when there is room.
func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= n {
		return s
	}
	if n <= 3 {
		return runewidth.Truncate(s, n, "")
	}
	return runewidth.Truncate(s, n, "...")
}

func renderList(entries []entry, cursor int, height int, width int, placeholder string) string {
	if len(entries) == 0 {
		if placeholder == "" {
			placeholder = "Press r to load examples"
		}
		return lipglossCenter(placeholderStyle.Render(placeholder), width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	// Calculate scroll offset
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(entries) {
		end = len(entries)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(entries[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
