package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/seo-joon/benkyou/internal/filter"
	"github.com/seo-joon/benkyou/internal/popover"
)

const (
	// Screen rows above the content area: header, track bar, controls.
	controlsRow     = 2
	contentTop      = controlsRow + 1
	popoverMaxWidth = 44
	// Border top and bottom plus the title and action rows.
	popoverChrome = 4

	noConcepts      = "No concepts available"
	loadingConcepts = "Loading concepts..."
)

type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// toggleText is the concept control on the controls row.
func (a *App) toggleText() string {
	arrow := "▾"
	if a.picker.Expanded() {
		arrow = "▴"
	}
	return " Concepts: " + a.picker.Label() + " " + arrow + " "
}

func (a *App) toggleRect() rect {
	return rect{x: 0, y: controlsRow, w: lipgloss.Width(a.toggleText()), h: 1}
}

func (a *App) popoverVisible() int {
	n := max(1, len(a.state.Catalog()))
	room := a.height - contentTop - popoverChrome - a.footerHeight()
	return max(1, min(n, room))
}

func (a *App) popoverRect() rect {
	return rect{
		x: 0,
		y: contentTop,
		w: min(popoverMaxWidth, max(a.width, 12)),
		h: a.popoverVisible() + popoverChrome,
	}
}

func (a *App) popoverOffset(visible int) int {
	if a.conceptCursor >= visible {
		return a.conceptCursor - visible + 1
	}
	return 0
}

// pointerTarget classifies a click for the popover state machine.
func (a *App) pointerTarget(x, y int) popover.Target {
	switch {
	case a.toggleRect().contains(x, y):
		return popover.TargetToggle
	case a.picker.IsOpen() && a.popoverRect().contains(x, y):
		return popover.TargetInside
	default:
		return popover.TargetOutside
	}
}

// conceptAt maps a click inside the open popover to the concept row under
// it.
func (a *App) conceptAt(x, y int) (int, bool) {
	r := a.popoverRect()
	if !r.contains(x, y) {
		return 0, false
	}
	visible := a.popoverVisible()
	row := y - r.y - 3
	if row < 0 || row >= visible {
		return 0, false
	}
	idx := a.popoverOffset(visible) + row
	if idx >= len(a.state.Catalog()) {
		return 0, false
	}
	return idx, true
}

func (a *App) renderPopover() string {
	r := a.popoverRect()
	inner := r.w - 4
	concepts := a.state.Catalog()
	visible := a.popoverVisible()

	title := popoverTitleStyle.Render("Concepts") + " " + controlLabelStyle.Render(a.picker.Label())
	actions := controlLabelStyle.Render("a all · n none · esc close")
	lines := []string{title, actions}

	if len(concepts) == 0 {
		lines = append(lines, placeholderStyle.Render(noConcepts))
	}
	start := a.popoverOffset(visible)
	end := min(len(concepts), start+visible)
	for i := start; i < end; i++ {
		c := concepts[i]
		box := "[ ]"
		if a.state.IsSelected(c) {
			box = conceptCheckedStyle.Render("[x]")
		}
		label := truncateStr(filter.Label(c), inner-6)
		line := "  " + box + " " + label
		if i == a.conceptCursor {
			line = conceptCursorStyle.Render("> ") + box + " " + conceptCursorStyle.Render(label)
		}
		lines = append(lines, line)
	}

	return popoverStyle.Width(r.w - 2).Render(strings.Join(lines, "\n"))
}

func (a *App) renderControls() string {
	toggle := controlLabelStyle.Render(" Concepts: ") +
		controlValueStyle.Render(a.picker.Label()) +
		controlLabelStyle.Render(strings.TrimPrefix(a.toggleText(), " Concepts: "+a.picker.Label()))

	var days string
	if a.mode == modeDays {
		days = a.daysInput.View()
	} else {
		days = controlLabelStyle.Render("Days: ") + controlValueStyle.Render(strconv.Itoa(a.state.Days()))
	}

	row := toggle + "  " + days
	return lipgloss.NewStyle().Width(a.width).Render(row)
}
