// Package fetcher runs example queries and owns the last fetched result set.
package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/seo-joon/benkyou/internal/api"
	"github.com/seo-joon/benkyou/internal/filter"
	"github.com/seo-joon/benkyou/internal/logging"
)

const (
	LoadingText = "Loading…"
	EmptyText   = "No matches. Try more concepts or increase days."
)

// Phase is what the results area shows. Exactly one applies at a time.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseResults
	PhaseEmpty
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseResults:
		return "results"
	case PhaseEmpty:
		return "empty"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

type Source interface {
	Examples(ctx context.Context, params url.Values) ([]api.Example, error)
}

// Request is one issued query. Seq grows monotonically per Fetcher.
type Request struct {
	Seq   uint64
	Query filter.Query
}

type Result struct {
	Request Request
	Items   []api.Example
	Err     error
}

type Fetcher struct {
	src     Source
	timeout time.Duration

	seq       uint64
	phase     Phase
	items     []api.Example
	err       error
	fetchedAt time.Time
}

// New returns a Fetcher. A positive timeout bounds every request so a hung
// server ends in PhaseFailed instead of an endless Loading.
func New(src Source, timeout time.Duration) *Fetcher {
	return &Fetcher{src: src, timeout: timeout}
}

// Begin issues a request for q and switches to PhaseLoading. Any request
// issued earlier is superseded.
func (f *Fetcher) Begin(q filter.Query) Request {
	f.seq++
	f.phase = PhaseLoading
	f.err = nil
	return Request{Seq: f.seq, Query: q}
}

// Fetch performs the request without touching the result set.
func (f *Fetcher) Fetch(ctx context.Context, req Request) Result {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	items, err := f.src.Examples(ctx, req.Query.Values())
	if err != nil {
		return Result{Request: req, Err: err}
	}
	if limit := req.Query.Limit; limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return Result{Request: req, Items: items}
}

// Complete applies res if it answers the most recently issued request and
// reports whether it did. Success replaces the result set wholesale; failure
// keeps it and moves to PhaseFailed.
func (f *Fetcher) Complete(res Result) bool {
	if res.Request.Seq != f.seq {
		logging.Logger().Debug("discarding superseded fetch", "seq", res.Request.Seq, "latest", f.seq)
		return false
	}
	if res.Err != nil {
		logging.Logger().Warn("example fetch failed", "err", res.Err)
		f.err = res.Err
		f.phase = PhaseFailed
		return true
	}

	f.items = res.Items
	f.err = nil
	f.fetchedAt = time.Now()
	if len(f.items) == 0 {
		f.phase = PhaseEmpty
	} else {
		f.phase = PhaseResults
	}
	logging.Logger().Info("examples fetched", "count", len(f.items), "days", res.Request.Query.Days, "concepts", len(res.Request.Query.Concepts))
	return true
}

// Run is Begin, Fetch and Complete back to back.
func (f *Fetcher) Run(ctx context.Context, q filter.Query) error {
	res := f.Fetch(ctx, f.Begin(q))
	f.Complete(res)
	return res.Err
}

// Clear empties the result set and the display.
func (f *Fetcher) Clear() {
	f.items = nil
	f.err = nil
	f.phase = PhaseIdle
}

// Items returns the current result set. Callers must treat it as read-only.
func (f *Fetcher) Items() []api.Example { return f.items }

func (f *Fetcher) Phase() Phase { return f.phase }

func (f *Fetcher) Err() error { return f.err }

func (f *Fetcher) FetchedAt() time.Time { return f.fetchedAt }

// Message is the placeholder text for phases that show no cards.
func (f *Fetcher) Message() string {
	switch f.phase {
	case PhaseLoading:
		return LoadingText
	case PhaseEmpty:
		return EmptyText
	case PhaseFailed:
		return fmt.Sprintf("Could not load examples: %v", f.err)
	default:
		return ""
	}
}
