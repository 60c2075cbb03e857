package render

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// EscapeHTML replaces &, <, > and " with their entities.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// HTML renders c as an <article> fragment. Every field is escaped; links
// open in a new tab without an opener reference.
func HTML(c Card) string {
	var b strings.Builder
	b.WriteString(`<article class="card">`)
	b.WriteString(`<div class="meta"><span class="source">`)
	b.WriteString(EscapeHTML(c.Source))
	b.WriteString(`</span><time>`)
	b.WriteString(EscapeHTML(c.Date))
	b.WriteString(`</time></div>`)

	b.WriteString(`<h3>`)
	if href := SafeURL(c.URL); href != "" {
		b.WriteString(`<a href="`)
		b.WriteString(EscapeHTML(href))
		b.WriteString(`" target="_blank" rel="noopener noreferrer">`)
		b.WriteString(EscapeHTML(c.Title))
		b.WriteString(`</a>`)
	} else {
		b.WriteString(`<span>`)
		b.WriteString(EscapeHTML(c.Title))
		b.WriteString(`</span>`)
	}
	b.WriteString(`</h3>`)

	b.WriteString(`<p class="summary">`)
	b.WriteString(EscapeHTML(c.Summary))
	b.WriteString(`</p>`)

	b.WriteString(`<div class="badges">`)
	for _, badge := range c.Badges {
		b.WriteString(`<span class="badge">`)
		b.WriteString(EscapeHTML(badge))
		b.WriteString(`</span>`)
	}
	b.WriteString(`</div></article>`)
	return b.String()
}

// Page wraps cards into a standalone document. emptyText is shown when there
// are no cards.
func Page(title string, cards []Card, emptyText string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\"><title>")
	b.WriteString(EscapeHTML(title))
	b.WriteString("</title>\n<style>")
	b.WriteString(pageCSS)
	b.WriteString("</style></head>\n<body><main id=\"results\">\n")
	if len(cards) == 0 {
		b.WriteString(`<div class="empty">`)
		b.WriteString(EscapeHTML(emptyText))
		b.WriteString("</div>\n")
	}
	for _, c := range cards {
		b.WriteString(HTML(c))
		b.WriteString("\n")
	}
	b.WriteString("</main></body></html>\n")
	return b.String()
}

const pageCSS = `body{font-family:system-ui,sans-serif;background:#f8fafc;margin:2rem}` +
	`.card{background:#fff;border:1px solid #e2e8f0;border-radius:.75rem;padding:1rem;margin-bottom:1rem}` +
	`.meta{display:flex;justify-content:space-between;font-size:.75rem;color:#64748b}` +
	`.badge{display:inline-block;font-size:.75rem;border:1px solid #e2e8f0;border-radius:9999px;padding:.1rem .5rem;margin-right:.25rem;background:#f1f5f9}` +
	`.empty{color:#64748b}`
