package tui

import (
	"context"
	"errors"
	"net/url"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/seo-joon/benkyou/internal/api"
	"github.com/seo-joon/benkyou/internal/config"
	"github.com/seo-joon/benkyou/internal/fetcher"
	"github.com/seo-joon/benkyou/internal/popover"
	"github.com/seo-joon/benkyou/internal/prefs"
)

type fakeBackend struct {
	mu          sync.Mutex
	concepts    map[string][]string
	conceptsErr error
	items       []api.Example
	queries     []url.Values
}

func (f *fakeBackend) Concepts(_ context.Context, track string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conceptsErr != nil {
		return nil, f.conceptsErr
	}
	return f.concepts[track], nil
}

func (f *fakeBackend) Examples(_ context.Context, params url.Values) ([]api.Example, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, params)
	return f.items, nil
}

func (f *fakeBackend) Session(context.Context) (api.Session, error) {
	return api.Session{Authenticated: true, User: &api.User{Name: "Mina", Login: "mina"}}, nil
}

func (f *fakeBackend) Logout(context.Context) error { return nil }

func (f *fakeBackend) lastQuery() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return nil
	}
	return f.queries[len(f.queries)-1]
}

type memStore struct {
	exports   int
	lastFetch time.Time
}

func (m *memStore) RecordExport(string, int, time.Time) error {
	m.exports++
	return nil
}

func (m *memStore) SetLastFetch(t time.Time) error {
	m.lastFetch = t
	return nil
}

func newBackend() *fakeBackend {
	return &fakeBackend{
		concepts: map[string][]string{
			"all":      {"copyright", "inflation", "censorship"},
			"arts":     {"censorship", "copyright"},
			"commerce": {"inflation", "oligopoly"},
		},
		items: []api.Example{
			{Source: "Wire", Title: "Short one", URL: "https://example.com/1", Concepts: []string{"copyright"}},
			{Source: "Wire", Title: "Central bank holds rates amid inflation", URL: "https://example.com/2", Concepts: []string{"inflation", "central_bank"}},
		},
	}
}

func newTestApp(t *testing.T, b *fakeBackend, p prefs.Preferences) (*App, *memStore) {
	t.Helper()
	cfg := &config.Config{
		APIURL:         "http://localhost:8000",
		AppName:        "benkyou",
		RequestTimeout: "2s",
		ExportDir:      t.TempDir(),
		Tracks:         []string{"commerce", "arts"},
	}
	store := &memStore{}
	a := NewApp(RunOpts{Cfg: cfg, Backend: b, Store: store, Prefs: p, Location: time.UTC})
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return a, store
}

// runCmd executes cmd and any batch it expands to, dropping spinner ticks
// and empty messages.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil, spinner.TickMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, runCmd(t, c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

// settle feeds the messages produced by cmd back into the app until no
// command is left.
func settle(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	queue := runCmd(t, cmd)
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		_, next := a.Update(msg)
		queue = append(queue, runCmd(t, next)...)
	}
}

func press(t *testing.T, a *App, k string) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := a.Update(msg)
	settle(t, a, cmd)
}

func click(t *testing.T, a *App, x, y int) {
	t.Helper()
	_, cmd := a.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	settle(t, a, cmd)
}

func TestStartupRestoresPreferences(t *testing.T) {
	b := newBackend()
	saved := prefs.Preferences{Track: "arts", Days: 21, Concepts: []string{"copyright", "retired_concept"}}
	a, store := newTestApp(t, b, saved)

	settle(t, a, a.Init())

	if got := a.state.Selected(); !reflect.DeepEqual(got, []string{"copyright"}) {
		t.Errorf("Selected() = %v, want [copyright]", got)
	}
	if a.picker.Label() != "1 selected" {
		t.Errorf("label = %q", a.picker.Label())
	}

	q := b.lastQuery()
	if q == nil {
		t.Fatal("no examples request issued")
	}
	if q.Get("track") != "arts" || q.Get("days") != "21" || q.Get("limit") != "30" {
		t.Errorf("unexpected query %v", q)
	}
	if !reflect.DeepEqual(q["concept"], []string{"copyright"}) {
		t.Errorf("concept params = %v", q["concept"])
	}
	if len(a.entries) != 2 || a.fetcher.Phase() != fetcher.PhaseResults {
		t.Errorf("expected 2 results, got %d in %v", len(a.entries), a.fetcher.Phase())
	}
	if !a.badge.SignedIn() {
		t.Error("session badge not loaded")
	}
	if store.lastFetch.IsZero() {
		t.Error("fetch time not recorded")
	}
}

func TestSupersededFetchIgnored(t *testing.T) {
	b := newBackend()
	a, _ := newTestApp(t, b, prefs.Defaults())
	settle(t, a, a.Init())

	first := a.loadExamples()
	b.items = []api.Example{{Source: "S", Title: "newest", URL: "https://example.com/n"}}
	second := a.loadExamples()

	newer := runCmd(t, second)
	b.items = nil
	older := runCmd(t, first)

	for _, msg := range newer {
		a.Update(msg)
	}
	for _, msg := range older {
		a.Update(msg)
	}

	if len(a.entries) != 1 || a.entries[0].card.Title != "newest" {
		t.Errorf("stale completion overwrote results: %+v", a.entries)
	}
	if a.fetcher.Phase() != fetcher.PhaseResults {
		t.Errorf("phase = %v", a.fetcher.Phase())
	}
}

func TestPopoverKeys(t *testing.T) {
	a, _ := newTestApp(t, newBackend(), prefs.Defaults())
	settle(t, a, a.Init())

	press(t, a, "c")
	if !a.picker.IsOpen() {
		t.Fatal("c should open the concept picker")
	}
	press(t, a, "q")
	if !a.picker.IsOpen() {
		t.Error("other keys must not close the picker")
	}
	press(t, a, "esc")
	if a.picker.IsOpen() {
		t.Error("esc should close the picker")
	}

	for _, k := range []string{"c", "enter"} {
		press(t, a, "c")
		press(t, a, k)
		if a.picker.State() != popover.Closed {
			t.Errorf("%q should close the picker, state %v", k, a.picker.State())
		}
	}
}

func TestPopoverPointer(t *testing.T) {
	a, _ := newTestApp(t, newBackend(), prefs.Defaults())
	settle(t, a, a.Init())

	click(t, a, 2, controlsRow)
	if a.picker.State() != popover.Open {
		t.Fatal("clicking the toggle should open the picker")
	}
	click(t, a, 2, contentTop+1)
	if !a.picker.IsOpen() {
		t.Error("clicking inside should keep the picker open")
	}
	click(t, a, 90, 20)
	if a.picker.IsOpen() {
		t.Error("clicking outside should close the picker")
	}
	click(t, a, 2, controlsRow)
	click(t, a, 2, controlsRow)
	if a.picker.IsOpen() {
		t.Error("second toggle click should close the picker")
	}
}

func TestPopoverClickTogglesConcept(t *testing.T) {
	a, _ := newTestApp(t, newBackend(), prefs.Defaults())
	settle(t, a, a.Init())

	press(t, a, "c")
	// First concept row sits below the border, title and action rows.
	click(t, a, 4, contentTop+3)
	if !a.state.IsSelected("copyright") {
		t.Errorf("expected copyright checked, got %v", a.state.Selected())
	}
	if a.picker.Label() != "1 selected" {
		t.Errorf("label = %q", a.picker.Label())
	}
}

func TestPopoverSelectAllNone(t *testing.T) {
	a, _ := newTestApp(t, newBackend(), prefs.Defaults())
	settle(t, a, a.Init())

	press(t, a, "c")
	press(t, a, "a")
	if a.state.Count() != 3 || a.picker.Label() != "3 selected" {
		t.Errorf("after select all: count %d label %q", a.state.Count(), a.picker.Label())
	}
	press(t, a, "n")
	if a.state.Count() != 0 || a.picker.Label() != "0 selected" {
		t.Errorf("after select none: count %d label %q", a.state.Count(), a.picker.Label())
	}
	press(t, a, "j")
	press(t, a, " ")
	if !reflect.DeepEqual(a.state.Selected(), []string{"inflation"}) {
		t.Errorf("Selected() = %v", a.state.Selected())
	}
}

func TestRefreshClosesPopover(t *testing.T) {
	b := newBackend()
	a, _ := newTestApp(t, b, prefs.Defaults())
	settle(t, a, a.Init())
	before := len(b.queries)

	press(t, a, "c")
	press(t, a, "r")
	if a.picker.IsOpen() {
		t.Error("refresh should close the picker")
	}
	if len(b.queries) != before+1 {
		t.Errorf("expected one more request, got %d", len(b.queries)-before)
	}
}

func TestTrackChangePrunesAndRefetches(t *testing.T) {
	b := newBackend()
	a, _ := newTestApp(t, b, prefs.Defaults())
	settle(t, a, a.Init())

	a.picker.SelectAll()
	settle(t, a, a.selectTrack("commerce"))

	if got := a.state.Selected(); !reflect.DeepEqual(got, []string{"inflation"}) {
		t.Errorf("Selected() = %v, want [inflation]", got)
	}
	if a.picker.Label() != "1 selected" {
		t.Errorf("label = %q", a.picker.Label())
	}
	q := b.lastQuery()
	if q.Get("track") != "commerce" || !reflect.DeepEqual(q["concept"], []string{"inflation"}) {
		t.Errorf("unexpected query %v", q)
	}
}

func TestRefreshWaitsForTrackCatalog(t *testing.T) {
	b := newBackend()
	a, _ := newTestApp(t, b, prefs.Defaults())
	settle(t, a, a.Init())
	a.picker.ToggleConcept("inflation")
	before := len(b.queries)

	press(t, a, "f")
	_, catalogCmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	if catalogCmd == nil {
		t.Fatal("choosing a track should request its catalog")
	}
	press(t, a, "r")
	if len(b.queries) != before {
		t.Fatalf("examples requested before the arts catalog arrived: %v", b.lastQuery())
	}

	settle(t, a, catalogCmd)
	if len(b.queries) != before+1 {
		t.Fatalf("expected one request after the catalog, got %d", len(b.queries)-before)
	}
	q := b.lastQuery()
	if q.Get("track") != "arts" || len(q["concept"]) != 0 {
		t.Errorf("query mixes tracks: %v", q)
	}
	if a.state.IsSelected("inflation") {
		t.Error("inflation should be dropped for arts")
	}
	if a.status == loadingConcepts {
		t.Error("loading status left behind")
	}
}

func TestRefreshRetriesFailedFirstCatalog(t *testing.T) {
	b := newBackend()
	b.conceptsErr = api.ErrNetwork
	saved := prefs.Preferences{Track: "arts", Days: 7, Concepts: []string{"copyright"}}
	a, _ := newTestApp(t, b, saved)
	settle(t, a, a.Init())

	if a.status != noConcepts {
		t.Errorf("status = %q", a.status)
	}
	if a.state.Count() != 0 {
		t.Errorf("nothing can be selected without a catalog, got %v", a.state.Selected())
	}

	b.conceptsErr = nil
	press(t, a, "r")
	if got := a.state.Selected(); !reflect.DeepEqual(got, []string{"copyright"}) {
		t.Errorf("Selected() = %v, want saved [copyright]", got)
	}
	q := b.lastQuery()
	if q.Get("track") != "arts" || !reflect.DeepEqual(q["concept"], []string{"copyright"}) {
		t.Errorf("unexpected query %v", q)
	}
}

func TestStaleCatalogIgnored(t *testing.T) {
	b := newBackend()
	a, _ := newTestApp(t, b, prefs.Defaults())
	settle(t, a, a.Init())

	arts := runCmd(t, a.selectTrack("arts"))
	commerce := runCmd(t, a.selectTrack("commerce"))

	for _, msg := range commerce {
		_, cmd := a.Update(msg)
		settle(t, a, cmd)
	}
	requests := len(b.queries)
	for _, msg := range arts {
		_, cmd := a.Update(msg)
		if cmd != nil {
			t.Error("stale catalog must not trigger a fetch")
		}
	}

	if got := a.state.Catalog(); !reflect.DeepEqual(got, []string{"inflation", "oligopoly"}) {
		t.Errorf("catalog = %v", got)
	}
	if len(b.queries) != requests {
		t.Error("stale catalog issued a request")
	}
}

func TestCatalogFailureKeepsSelection(t *testing.T) {
	b := newBackend()
	a, _ := newTestApp(t, b, prefs.Defaults())
	settle(t, a, a.Init())

	a.picker.ToggleConcept("copyright")
	b.conceptsErr = api.ErrNetwork
	settle(t, a, a.selectTrack("arts"))

	if !strings.Contains(a.status, noConcepts) {
		t.Errorf("status = %q", a.status)
	}
	if !reflect.DeepEqual(a.state.Catalog(), []string{"copyright", "inflation", "censorship"}) {
		t.Errorf("catalog changed to %v", a.state.Catalog())
	}
	if !a.state.IsSelected("copyright") {
		t.Error("selection lost after catalog failure")
	}
}

func TestClearThenExport(t *testing.T) {
	a, store := newTestApp(t, newBackend(), prefs.Defaults())
	settle(t, a, a.Init())

	press(t, a, "x")
	if len(a.entries) != 0 || a.fetcher.Phase() != fetcher.PhaseIdle {
		t.Fatalf("clear left %d entries in %v", len(a.entries), a.fetcher.Phase())
	}
	press(t, a, "e")
	if a.status != "nothing to export" {
		t.Errorf("status = %q", a.status)
	}
	if store.exports != 0 {
		t.Error("export recorded for an empty result set")
	}
}

func TestExportWritesFile(t *testing.T) {
	a, store := newTestApp(t, newBackend(), prefs.Defaults())
	settle(t, a, a.Init())

	press(t, a, "e")
	if !strings.HasPrefix(a.status, "Exported 1 card(s)") {
		t.Fatalf("status = %q", a.status)
	}
	files, err := os.ReadDir(a.cfg.ExportDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || !strings.HasPrefix(files[0].Name(), "benkyou-anki-") {
		t.Errorf("unexpected export dir contents: %v", files)
	}
	if store.exports != 1 {
		t.Errorf("exports recorded = %d", store.exports)
	}
}

func TestExportNoEligibleItems(t *testing.T) {
	b := newBackend()
	b.items = b.items[:1]
	a, _ := newTestApp(t, b, prefs.Defaults())
	settle(t, a, a.Init())

	press(t, a, "e")
	if a.status != "no eligible items" {
		t.Errorf("status = %q", a.status)
	}
}

func TestDaysInputClamps(t *testing.T) {
	a, _ := newTestApp(t, newBackend(), prefs.Defaults())
	settle(t, a, a.Init())

	tests := []struct {
		input string
		want  int
	}{
		{"9999", 365},
		{"0", 1},
		{"abc", 7},
		{"30", 30},
	}
	for _, tt := range tests {
		press(t, a, "d")
		if a.mode != modeDays {
			t.Fatal("d should focus the days input")
		}
		a.daysInput.SetValue(tt.input)
		press(t, a, "enter")
		if a.state.Days() != tt.want {
			t.Errorf("days input %q = %d, want %d", tt.input, a.state.Days(), tt.want)
		}
	}
}

func TestLogout(t *testing.T) {
	a, _ := newTestApp(t, newBackend(), prefs.Defaults())
	settle(t, a, a.Init())

	press(t, a, "L")
	if a.badge.SignedIn() {
		t.Error("badge still signed in after logout")
	}
	if a.status != "Logged out" {
		t.Errorf("status = %q", a.status)
	}
}

func TestErrorShownInStatus(t *testing.T) {
	a, _ := newTestApp(t, newBackend(), prefs.Defaults())
	a.Update(errMsg{err: errors.New("\x1b[31mboom\x1b[0m")})
	if !strings.Contains(a.View(), "boom") {
		t.Error("error not rendered")
	}
}

func TestViewRendersCards(t *testing.T) {
	a, _ := newTestApp(t, newBackend(), prefs.Defaults())
	settle(t, a, a.Init())

	out := a.View()
	for _, want := range []string{"benkyou", "Concepts: 0 selected", "Central bank holds", "Hi, Mina"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
