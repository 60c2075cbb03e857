// Package filter holds the feed filter state (track, selected concepts and
// day window) and turns it into the query sent to the examples endpoint.
package filter

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	AllTracks   = "all"
	DefaultDays = 7
	MinDays     = 1
	MaxDays     = 365
	PageLimit   = 30
)

// Query is the canonical descriptor for one examples request.
type Query struct {
	Track    string // empty means every track
	Concepts []string
	Days     int
	Limit    int
}

// Values encodes the query the way /api/examples expects it. An empty
// concept list leaves the filter out entirely.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Track != "" {
		v.Set("track", q.Track)
	}
	for _, c := range q.Concepts {
		v.Add("concept", c)
	}
	v.Set("days", strconv.Itoa(q.Days))
	v.Set("limit", strconv.Itoa(q.Limit))
	return v
}

// State is the filter as edited by the user. The zero value is not ready
// for use; call New.
type State struct {
	track    string
	days     int
	catalog  []string
	selected map[string]bool
}

func New() *State {
	return &State{
		track:    AllTracks,
		days:     DefaultDays,
		selected: make(map[string]bool),
	}
}

func (s *State) Track() string { return s.track }

// SetTrack switches the track and reports whether it changed. Selections
// are pruned once the new track's catalog arrives via ApplyCatalog.
func (s *State) SetTrack(track string) bool {
	track = NormalizeTrack(track)
	if track == s.track {
		return false
	}
	s.track = track
	return true
}

// ApplyCatalog replaces the selectable concepts and drops any selection
// that is not part of the new set.
func (s *State) ApplyCatalog(concepts []string) {
	seen := make(map[string]bool, len(concepts))
	catalog := make([]string, 0, len(concepts))
	for _, c := range concepts {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		catalog = append(catalog, c)
	}
	s.catalog = catalog
	for c := range s.selected {
		if !seen[c] {
			delete(s.selected, c)
		}
	}
}

// Catalog returns the selectable concepts in display order.
func (s *State) Catalog() []string {
	return append([]string(nil), s.catalog...)
}

func (s *State) inCatalog(concept string) bool {
	for _, c := range s.catalog {
		if c == concept {
			return true
		}
	}
	return false
}

// Toggle flips a concept and returns its new checked state. Concepts outside
// the catalog are ignored.
func (s *State) Toggle(concept string) bool {
	if !s.inCatalog(concept) {
		return false
	}
	s.SetChecked(concept, !s.selected[concept])
	return s.selected[concept]
}

func (s *State) SetChecked(concept string, checked bool) {
	if !s.inCatalog(concept) {
		return
	}
	if checked {
		s.selected[concept] = true
	} else {
		delete(s.selected, concept)
	}
}

func (s *State) IsSelected(concept string) bool { return s.selected[concept] }

func (s *State) SelectAll() {
	for _, c := range s.catalog {
		s.selected[c] = true
	}
}

func (s *State) SelectNone() {
	clear(s.selected)
}

// Selected returns the checked concepts in catalog order, each once.
func (s *State) Selected() []string {
	var out []string
	for _, c := range s.catalog {
		if s.selected[c] {
			out = append(out, c)
		}
	}
	return out
}

func (s *State) Count() int { return len(s.selected) }

func (s *State) Days() int { return s.days }

// SetDays stores n clamped into [MinDays, MaxDays].
func (s *State) SetDays(n int) {
	s.days = ClampDays(n)
}

// SetDaysInput stores raw user input; see ParseDays.
func (s *State) SetDaysInput(raw string) {
	s.days = ParseDays(raw)
}

// Query builds the request descriptor for the current state. It has no side
// effects, so repeated calls on unchanged state are identical.
func (s *State) Query() Query {
	q := Query{
		Concepts: s.Selected(),
		Days:     ClampDays(s.days),
		Limit:    PageLimit,
	}
	if s.track != AllTracks {
		q.Track = s.track
	}
	return q
}

// ClampDays forces n into [MinDays, MaxDays].
func ClampDays(n int) int {
	return min(MaxDays, max(MinDays, n))
}

// ParseDays reads the leading integer of raw (surrounding blanks allowed,
// trailing junk ignored) and clamps it. Input with no leading integer yields
// DefaultDays.
func ParseDays(raw string) int {
	s := strings.TrimSpace(raw)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		digits++
		if n <= MaxDays {
			n = n*10 + int(r-'0')
		}
	}
	if digits == 0 {
		return DefaultDays
	}
	if neg {
		n = -n
	}
	return ClampDays(n)
}

// NormalizeTrack lowercases a track tag; blank means AllTracks.
func NormalizeTrack(track string) string {
	track = strings.ToLower(strings.TrimSpace(track))
	if track == "" {
		return AllTracks
	}
	return track
}

// Label is the display form of a concept id.
func Label(concept string) string {
	return strings.ReplaceAll(concept, "_", " ")
}
