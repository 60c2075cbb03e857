// Package anki converts fetched examples into an Anki-importable CSV: one
// card per example, question = title, answer = its concepts.
package anki

import (
	"fmt"
	"strings"
	"time"

	"github.com/seo-joon/benkyou/internal/api"
	"github.com/seo-joon/benkyou/internal/filter"
)

const (
	// MinTitleWords is exclusive: a title needs more words than this.
	MinTitleWords = 5
	AnswerSep     = " ; "
)

type Row struct {
	Question string
	Answer   string
}

// Eligible reports whether e becomes a card: it needs a title of more than
// MinTitleWords words and at least one concept.
func Eligible(e api.Example) bool {
	return len(strings.Fields(e.Title)) > MinTitleWords && len(e.Concepts) > 0
}

// BuildRows converts items, in order, into rows. It returns
// ErrNothingToExport for an empty input and ErrNoEligibleItems when no item
// passes Eligible.
func BuildRows(items []api.Example) ([]Row, error) {
	if len(items) == 0 {
		return nil, ErrNothingToExport
	}
	var rows []Row
	for _, e := range items {
		if !Eligible(e) {
			continue
		}
		answers := make([]string, len(e.Concepts))
		for i, c := range e.Concepts {
			answers[i] = filter.Label(c)
		}
		rows = append(rows, Row{
			Question: strings.TrimSpace(e.Title),
			Answer:   strings.Join(answers, AnswerSep),
		})
	}
	if len(rows) == 0 {
		return nil, ErrNoEligibleItems
	}
	return rows, nil
}

// Encode writes rows as CSV with every field quoted, CRLF line endings and
// no header row.
func Encode(rows []Row) []byte {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(quote(r.Question))
		b.WriteByte(',')
		b.WriteString(quote(r.Answer))
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// FileName is the download name for an export made at now. The date is the
// UTC calendar day.
func FileName(app string, now time.Time) string {
	return fmt.Sprintf("%s-anki-%s.csv", app, now.UTC().Format(time.DateOnly))
}
