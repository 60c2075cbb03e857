// Package render turns example items into cards: a view model shared by the
// terminal UI and an HTML fragment for exported pages.
package render

import (
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/seo-joon/benkyou/internal/api"
	"github.com/seo-joon/benkyou/internal/filter"
)

const (
	NoDate     = "—"
	Untitled   = "Untitled"
	DateLayout = "Jan 2, 2006 3:04 PM"
)

// Card holds display-ready text. Fields are raw (unescaped); each output
// path applies its own escaping.
type Card struct {
	Source  string
	Date    string
	Title   string
	URL     string
	Summary string
	Badges  []string
}

// NewCard builds the card for e with dates shown in loc.
func NewCard(e api.Example, loc *time.Location) Card {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = Untitled
	}
	badges := make([]string, 0, len(e.Concepts))
	for _, c := range e.Concepts {
		badges = append(badges, filter.Label(c))
	}
	return Card{
		Source:  e.Source,
		Date:    FormatDate(e.Published, loc),
		Title:   title,
		URL:     e.URL,
		Summary: e.Summary,
		Badges:  badges,
	}
}

// FormatDate renders t in loc, or NoDate when t is unset.
func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return NoDate
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// SafeURL returns raw if it is an absolute http(s) URL, otherwise "".
func SafeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// Terminal strips escape sequences and control characters from feed text
// and collapses whitespace, so it can be printed without steering the
// terminal.
func Terminal(s string) string {
	s = ansi.Strip(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// ForTerminal returns a copy of c with every field passed through Terminal.
func (c Card) ForTerminal() Card {
	out := Card{
		Source:  Terminal(c.Source),
		Date:    c.Date,
		Title:   Terminal(c.Title),
		URL:     Terminal(c.URL),
		Summary: Terminal(c.Summary),
		Badges:  make([]string, len(c.Badges)),
	}
	for i, b := range c.Badges {
		out.Badges[i] = Terminal(b)
	}
	return out
}
