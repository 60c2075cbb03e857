package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/seo-joon/benkyou/internal/api"
	"github.com/seo-joon/benkyou/internal/filter"
)

type stubSource struct {
	items  []api.Example
	err    error
	params url.Values
	block  bool
}

func (s *stubSource) Examples(ctx context.Context, params url.Values) ([]api.Example, error) {
	s.params = params
	if s.block {
		<-ctx.Done()
		return nil, fmt.Errorf("%w: %w", api.ErrNetwork, ctx.Err())
	}
	return s.items, s.err
}

func sampleItems(n int) []api.Example {
	items := make([]api.Example, n)
	for i := range items {
		items[i] = api.Example{Source: "RBA", Title: fmt.Sprintf("Item %d", i), URL: "https://example.com"}
	}
	return items
}

func TestRunReplacesResultSet(t *testing.T) {
	src := &stubSource{items: sampleItems(2)}
	f := New(src, time.Second)

	if err := f.Run(context.Background(), filter.New().Query()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if f.Phase() != PhaseResults || len(f.Items()) != 2 {
		t.Fatalf("expected 2 results, got phase %v with %d", f.Phase(), len(f.Items()))
	}
	if src.params.Get("limit") != "30" || src.params.Get("days") != "7" {
		t.Errorf("query not serialized: %v", src.params)
	}

	src.items = sampleItems(1)
	f.Run(context.Background(), filter.New().Query())
	if len(f.Items()) != 1 {
		t.Errorf("expected result set replaced, got %d items", len(f.Items()))
	}
}

func TestEmptyPhase(t *testing.T) {
	f := New(&stubSource{}, time.Second)
	f.Run(context.Background(), filter.New().Query())
	if f.Phase() != PhaseEmpty {
		t.Errorf("expected empty phase, got %v", f.Phase())
	}
	if f.Message() != EmptyText {
		t.Errorf("unexpected message %q", f.Message())
	}
}

func TestLoadingPhaseBetweenBeginAndComplete(t *testing.T) {
	src := &stubSource{items: sampleItems(1)}
	f := New(src, time.Second)

	req := f.Begin(filter.New().Query())
	if f.Phase() != PhaseLoading || f.Message() != LoadingText {
		t.Errorf("expected loading, got %v %q", f.Phase(), f.Message())
	}
	f.Complete(f.Fetch(context.Background(), req))
	if f.Phase() != PhaseResults {
		t.Errorf("expected results after completion, got %v", f.Phase())
	}
	if f.Message() != "" {
		t.Errorf("results phase should have no placeholder, got %q", f.Message())
	}
}

func TestFailureKeepsResultSet(t *testing.T) {
	src := &stubSource{items: sampleItems(3)}
	f := New(src, time.Second)
	f.Run(context.Background(), filter.New().Query())

	src.err = api.ErrParse
	err := f.Run(context.Background(), filter.New().Query())
	if !errors.Is(err, api.ErrParse) {
		t.Fatalf("expected parse failure, got %v", err)
	}
	if f.Phase() != PhaseFailed {
		t.Errorf("expected failed phase, got %v", f.Phase())
	}
	if len(f.Items()) != 3 {
		t.Errorf("result set changed on failure: %d items", len(f.Items()))
	}
	if !errors.Is(f.Err(), api.ErrParse) {
		t.Errorf("Err() = %v", f.Err())
	}
}

func TestLastIssuedWins(t *testing.T) {
	src := &stubSource{}
	f := New(src, time.Second)

	q := filter.New().Query()
	older := f.Begin(q)
	newer := f.Begin(q)

	newRes := Result{Request: newer, Items: sampleItems(1)}
	oldRes := Result{Request: older, Items: sampleItems(5)}

	if !f.Complete(newRes) {
		t.Fatal("latest result should apply")
	}
	if f.Complete(oldRes) {
		t.Error("superseded result should be discarded")
	}
	if len(f.Items()) != 1 {
		t.Errorf("stale response overwrote results: %d items", len(f.Items()))
	}

	// A superseded failure must not flip the phase either
	if f.Complete(Result{Request: older, Err: api.ErrNetwork}) {
		t.Error("superseded failure should be discarded")
	}
	if f.Phase() != PhaseResults {
		t.Errorf("phase changed by stale failure: %v", f.Phase())
	}
}

func TestSupersededWhileLoadingStaysLoading(t *testing.T) {
	f := New(&stubSource{}, time.Second)
	q := filter.New().Query()
	older := f.Begin(q)
	f.Begin(q)

	f.Complete(Result{Request: older, Items: sampleItems(2)})
	if f.Phase() != PhaseLoading {
		t.Errorf("expected still loading for the newer request, got %v", f.Phase())
	}
}

func TestResultTruncatedToLimit(t *testing.T) {
	f := New(&stubSource{items: sampleItems(45)}, time.Second)
	f.Run(context.Background(), filter.New().Query())
	if len(f.Items()) != filter.PageLimit {
		t.Errorf("expected %d items, got %d", filter.PageLimit, len(f.Items()))
	}
}

func TestTimeoutEndsLoading(t *testing.T) {
	f := New(&stubSource{block: true}, 20*time.Millisecond)
	err := f.Run(context.Background(), filter.New().Query())
	if !errors.Is(err, api.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
	if f.Phase() != PhaseFailed {
		t.Errorf("expected failed phase after timeout, got %v", f.Phase())
	}
}

func TestClear(t *testing.T) {
	f := New(&stubSource{items: sampleItems(2)}, time.Second)
	f.Run(context.Background(), filter.New().Query())
	f.Clear()
	if len(f.Items()) != 0 || f.Phase() != PhaseIdle {
		t.Errorf("expected cleared state, got %d items phase %v", len(f.Items()), f.Phase())
	}
}
