// Package catalog keeps the list of concepts selectable for the current
// track.
package catalog

import (
	"context"

	"github.com/seo-joon/benkyou/internal/filter"
	"github.com/seo-joon/benkyou/internal/logging"
)

// Source looks up the concepts for a track.
type Source interface {
	Concepts(ctx context.Context, track string) ([]string, error)
}

// Request identifies one catalog lookup. Only the most recently issued
// request may replace the catalog.
type Request struct {
	Seq   uint64
	Track string
}

// Result is the outcome of a lookup, applied back on the UI goroutine.
type Result struct {
	Request  Request
	Concepts []string
	Err      error
}

type Catalog struct {
	src      Source
	seq      uint64
	track    string
	concepts []string
	loaded   bool
}

func New(src Source) *Catalog {
	return &Catalog{src: src}
}

// Begin issues a new request for track, superseding earlier ones.
func (c *Catalog) Begin(track string) Request {
	c.seq++
	return Request{Seq: c.seq, Track: filter.NormalizeTrack(track)}
}

// Fetch performs the lookup. It does not touch the catalog, so it is safe to
// run off the UI goroutine.
func (c *Catalog) Fetch(ctx context.Context, req Request) Result {
	concepts, err := c.src.Concepts(ctx, req.Track)
	return Result{Request: req, Concepts: concepts, Err: err}
}

// Apply installs a successful result if it answers the latest request. It
// reports whether the catalog changed; failures and superseded results leave
// it as it was.
func (c *Catalog) Apply(res Result) bool {
	if res.Request.Seq != c.seq {
		logging.Logger().Debug("discarding stale catalog", "track", res.Request.Track, "seq", res.Request.Seq, "latest", c.seq)
		return false
	}
	if res.Err != nil {
		logging.Logger().Warn("concept lookup failed", "track", res.Request.Track, "err", res.Err)
		return false
	}
	c.track = res.Request.Track
	c.concepts = append([]string(nil), res.Concepts...)
	c.loaded = true
	return true
}

// Current reports whether req is the most recently issued request.
func (c *Catalog) Current(req Request) bool { return req.Seq == c.seq }

// Load runs Begin, Fetch and Apply in one go for callers without an event
// loop. On failure the previous catalog is kept and the error returned.
func (c *Catalog) Load(ctx context.Context, track string) ([]string, error) {
	res := c.Fetch(ctx, c.Begin(track))
	if !c.Apply(res) {
		return nil, res.Err
	}
	return c.Concepts(), nil
}

func (c *Catalog) Concepts() []string {
	return append([]string(nil), c.concepts...)
}

// Track is the track the current concepts belong to.
func (c *Catalog) Track() string { return c.track }

// Loaded reports whether any lookup has succeeded yet.
func (c *Catalog) Loaded() bool { return c.loaded }
