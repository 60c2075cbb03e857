package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/seo-joon/benkyou/internal/filter"
)

// trackBar is the row of track tabs. Exactly one track is active.
type trackBar struct {
	tracks     []string
	active     string
	filterMode bool
	cursor     int
}

func newTrackBar(tracks []string, active string) trackBar {
	if len(tracks) == 0 {
		tracks = []string{filter.AllTracks}
	}
	t := trackBar{tracks: tracks}
	t.setActive(active)
	return t
}

func (t *trackBar) setActive(track string) {
	track = filter.NormalizeTrack(track)
	t.active = track
	for i, s := range t.tracks {
		if s == track {
			t.cursor = i
			return
		}
	}
	// A saved track the config no longer lists still gets a tab.
	t.tracks = append(t.tracks, track)
	t.cursor = len(t.tracks) - 1
}

func (t *trackBar) move(delta int) {
	t.cursor = min(len(t.tracks)-1, max(0, t.cursor+delta))
}

func (t *trackBar) current() string {
	return t.tracks[t.cursor]
}

func trackLabel(track string) string {
	if track == filter.AllTracks {
		return "All"
	}
	return filter.Label(track)
}

func (t *trackBar) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")
	var parts []string

	for i, s := range t.tracks {
		style := tabInactiveStyle
		if s == t.active {
			style = tabActiveStyle
		}
		label := trackLabel(s)
		if t.filterMode && i == t.cursor {
			label = "[" + label + "]"
		}
		parts = append(parts, style.Render(label))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
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
