package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/seo-joon/benkyou/internal/anki"
	"github.com/seo-joon/benkyou/internal/browser"
	"github.com/seo-joon/benkyou/internal/catalog"
	"github.com/seo-joon/benkyou/internal/config"
	"github.com/seo-joon/benkyou/internal/fetcher"
	"github.com/seo-joon/benkyou/internal/filter"
	"github.com/seo-joon/benkyou/internal/logging"
	"github.com/seo-joon/benkyou/internal/popover"
	"github.com/seo-joon/benkyou/internal/prefs"
	"github.com/seo-joon/benkyou/internal/render"
	"github.com/seo-joon/benkyou/internal/session"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeTrack
	modeDays
)

// Backend is the retrieval API as the UI uses it.
type Backend interface {
	catalog.Source
	fetcher.Source
	session.Source
}

// Store is the local bookkeeping the UI writes to.
type Store interface {
	anki.Recorder
	SetLastFetch(t time.Time) error
}

type App struct {
	cfg     *config.Config
	backend Backend
	store   Store

	state    *filter.State
	catalog  *catalog.Catalog
	fetcher  *fetcher.Fetcher
	picker   *popover.Popover
	exporter *anki.Exporter

	saved    prefs.Preferences
	restored bool
	// A catalog request is in flight; fetches wait for it to be applied.
	catalogPending bool
	badge    session.Badge
	loc      *time.Location

	entries       []entry
	cursor        int
	conceptCursor int
	focus         focusPane
	mode          mode

	width  int
	height int

	// Sub-components
	daysInput textinput.Model
	spinner   spinner.Model
	help      help.Model
	keys      keyMap
	trackBar  trackBar

	// State
	previewScroll int
	currentDate   string
	updateVersion string
	status        string
	err           error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Cfg           *config.Config
	Backend       Backend
	Store         Store
	Prefs         prefs.Preferences
	UpdateVersion string
	// Location for card dates; nil means local time.
	Location *time.Location
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Prompt = daysPromptStyle.Render(" Days: ")
	ti.Placeholder = strconv.Itoa(filter.DefaultDays)
	ti.CharLimit = 4

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	state := filter.New()
	prefs.ApplyBase(state, opts.Prefs)

	return &App{
		cfg:     opts.Cfg,
		backend: opts.Backend,
		store:   opts.Store,
		state:   state,
		catalog: catalog.New(opts.Backend),
		fetcher: fetcher.New(opts.Backend, opts.Cfg.Timeout()),
		picker:  popover.New(state),
		exporter: &anki.Exporter{
			App:      opts.Cfg.Name(),
			Dir:      opts.Cfg.ExportPath(),
			Recorder: opts.Store,
		},
		saved:         opts.Prefs,
		loc:           opts.Location,
		daysInput:     ti,
		spinner:       sp,
		help:          help.New(),
		keys:          newKeyMap(),
		trackBar:      newTrackBar(opts.Cfg.TrackList(), state.Track()),
		currentDate:   time.Now().Format("Jan 2"),
		updateVersion: opts.UpdateVersion,
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadCatalog(), a.loadSession())
}

// loadCatalog issues a catalog request for the current track. The fetch for
// that track follows once the catalog has been applied.
func (a *App) loadCatalog() tea.Cmd {
	req := a.catalog.Begin(a.state.Track())
	a.catalogPending = true
	c := a.catalog
	timeout := a.cfg.Timeout()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return catalogLoadedMsg{res: c.Fetch(ctx, req)}
	}
}

// loadExamples captures the current query into the request to avoid races.
func (a *App) loadExamples() tea.Cmd {
	req := a.fetcher.Begin(a.state.Query())
	f := a.fetcher
	return tea.Batch(func() tea.Msg {
		return examplesLoadedMsg{res: f.Fetch(context.Background(), req)}
	}, a.spinner.Tick)
}

func (a *App) loadSession() tea.Cmd {
	backend := a.backend
	timeout := a.cfg.Timeout()
	loginURL := session.LoginURL(a.cfg.APIURL)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return sessionLoadedMsg{badge: session.Load(ctx, backend, loginURL)}
	}
}

func (a *App) logout() tea.Cmd {
	backend := a.backend
	timeout := a.cfg.Timeout()
	loginURL := session.LoginURL(a.cfg.APIURL)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		badge, err := session.Logout(ctx, backend, loginURL)
		return logoutDoneMsg{badge: badge, err: err}
	}
}

// exportCmd reads whatever the last completed fetch left behind.
func (a *App) exportCmd() tea.Cmd {
	items := a.fetcher.Items()
	x := a.exporter
	return func() tea.Msg {
		res, err := x.Export(items)
		return exportDoneMsg{res: res, err: err}
	}
}

func (a *App) copyCmd() tea.Cmd {
	items := a.fetcher.Items()
	return func() tea.Msg {
		n, err := anki.Copy(items)
		return copyDoneMsg{rows: n, err: err}
	}
}

func (a *App) markFetched(at time.Time) tea.Cmd {
	store := a.store
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		if err := store.SetLastFetch(at); err != nil {
			logging.Logger().Warn("recording fetch time", "err", err)
		}
		return nil
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		return a, nil

	case tea.KeyMsg:
		// Clear sticky messages on any keypress
		a.err = nil
		a.status = ""
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case catalogLoadedMsg:
		return a, a.applyCatalog(msg.res)

	case examplesLoadedMsg:
		if !a.fetcher.Complete(msg.res) {
			return a, nil
		}
		a.rebuildEntries()
		if msg.res.Err != nil {
			a.status = a.fetcher.Message()
			return a, nil
		}
		return a, a.markFetched(a.fetcher.FetchedAt())

	case sessionLoadedMsg:
		a.badge = msg.badge
		return a, nil

	case logoutDoneMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.badge = msg.badge
		a.status = "Logged out"
		return a, nil

	case exportDoneMsg:
		switch {
		case msg.err == nil:
			a.status = fmt.Sprintf("Exported %d card(s) to %s", msg.res.Rows, msg.res.Path)
		case errors.Is(msg.err, anki.ErrNothingToExport), errors.Is(msg.err, anki.ErrNoEligibleItems):
			a.status = msg.err.Error()
		default:
			a.err = msg.err
		}
		return a, nil

	case copyDoneMsg:
		switch {
		case msg.err == nil:
			a.status = fmt.Sprintf("Copied %d card(s) to clipboard", msg.rows)
		case errors.Is(msg.err, anki.ErrNothingToExport), errors.Is(msg.err, anki.ErrNoEligibleItems):
			a.status = msg.err.Error()
		default:
			a.err = msg.err
		}
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.fetcher.Phase() == fetcher.PhaseLoading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

// applyCatalog installs a catalog result and, when it answers the latest
// request, issues the examples fetch for the track it belongs to. Saved
// concepts are restored against the first successful catalog only.
func (a *App) applyCatalog(res catalog.Result) tea.Cmd {
	if !a.catalog.Current(res.Request) {
		return nil
	}
	a.catalogPending = false
	if a.status == loadingConcepts {
		a.status = ""
	}
	if a.catalog.Apply(res) {
		a.state.ApplyCatalog(a.catalog.Concepts())
		if !a.restored {
			prefs.ApplyConcepts(a.state, a.saved)
			a.restored = true
		}
	} else {
		a.status = noConcepts
	}
	a.conceptCursor = min(a.conceptCursor, max(0, len(a.state.Catalog())-1))
	a.picker.Refresh()
	return a.loadExamples()
}

func (a *App) rebuildEntries() {
	items := a.fetcher.Items()
	entries := make([]entry, len(items))
	for i, it := range items {
		entries[i] = entry{card: render.NewCard(it, a.loc).ForTerminal(), published: it.Published}
	}
	a.entries = entries
	if a.cursor >= len(a.entries) {
		a.cursor = max(0, len(a.entries)-1)
	}
	a.previewScroll = 0
}

// refresh closes the picker and fetches with the current filter. While a
// catalog request is in flight the selection may still hold concepts of the
// previous track, so the fetch is left to applyCatalog. Without any catalog
// yet, the catalog is requested again first.
func (a *App) refresh() tea.Cmd {
	a.picker.Dispatch(popover.Event{Kind: popover.EventClose})
	switch {
	case a.catalogPending:
		a.status = loadingConcepts
		return nil
	case !a.catalog.Loaded():
		return a.loadCatalog()
	}
	return a.loadExamples()
}

func (a *App) clear() {
	a.fetcher.Clear()
	a.entries = nil
	a.cursor = 0
	a.previewScroll = 0
}

func (a *App) selectTrack(track string) tea.Cmd {
	a.trackBar.setActive(track)
	if !a.state.SetTrack(track) {
		return nil
	}
	a.conceptCursor = 0
	return a.loadCatalog()
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	if a.picker.IsOpen() {
		return a.handlePopoverKey(msg)
	}

	switch a.mode {
	case modeTrack:
		return a.handleTrackKey(msg)
	case modeDays:
		return a.handleDaysKey(msg)
	}

	// Normal mode
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Down):
		if a.focus == focusList && a.cursor < len(a.entries)-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case key.Matches(msg, a.keys.Up):
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case key.Matches(msg, a.keys.Focus):
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case key.Matches(msg, a.keys.Open):
		if a.cursor < len(a.entries) {
			if url := render.SafeURL(a.entries[a.cursor].card.URL); url != "" {
				return a, openBrowserCmd(url)
			}
			a.status = "No link for this example"
		}
		return a, nil
	case key.Matches(msg, a.keys.Concepts):
		a.picker.Dispatch(popover.Event{Kind: popover.EventToggle})
		return a, nil
	case key.Matches(msg, a.keys.Track):
		a.mode = modeTrack
		a.trackBar.filterMode = true
		return a, nil
	case key.Matches(msg, a.keys.Days):
		a.mode = modeDays
		a.daysInput.SetValue(strconv.Itoa(a.state.Days()))
		a.daysInput.CursorEnd()
		return a, a.daysInput.Focus()
	case key.Matches(msg, a.keys.Refresh):
		return a, a.refresh()
	case key.Matches(msg, a.keys.Clear):
		a.clear()
		return a, nil
	case key.Matches(msg, a.keys.Export):
		return a, a.exportCmd()
	case key.Matches(msg, a.keys.Copy):
		return a, a.copyCmd()
	case key.Matches(msg, a.keys.Logout):
		if a.badge.SignedIn() {
			return a, a.logout()
		}
		return a, nil
	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	}

	return a, nil
}

func (a *App) handlePopoverKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	concepts := a.state.Catalog()
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.picker.Dispatch(popover.Event{Kind: popover.EventKey, Key: "esc"})
	case key.Matches(msg, a.keys.Close):
		a.picker.Dispatch(popover.Event{Kind: popover.EventClose})
	case key.Matches(msg, a.keys.Refresh):
		return a, a.refresh()
	case key.Matches(msg, a.keys.Down):
		if a.conceptCursor < len(concepts)-1 {
			a.conceptCursor++
		}
	case key.Matches(msg, a.keys.Up):
		if a.conceptCursor > 0 {
			a.conceptCursor--
		}
	case key.Matches(msg, a.keys.Check):
		if a.conceptCursor < len(concepts) {
			a.picker.ToggleConcept(concepts[a.conceptCursor])
		}
	case key.Matches(msg, a.keys.SelectAll):
		a.picker.SelectAll()
	case key.Matches(msg, a.keys.SelectNone):
		a.picker.SelectNone()
	default:
		a.picker.Dispatch(popover.Event{Kind: popover.EventKey, Key: msg.String()})
	}
	return a, nil
}

func (a *App) handleTrackKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel), key.Matches(msg, a.keys.Track):
		a.mode = modeNormal
		a.trackBar.filterMode = false
		a.trackBar.setActive(a.state.Track())
		return a, nil
	case key.Matches(msg, a.keys.Left):
		a.trackBar.move(-1)
		return a, nil
	case key.Matches(msg, a.keys.Right):
		a.trackBar.move(1)
		return a, nil
	case key.Matches(msg, a.keys.Choose):
		a.mode = modeNormal
		a.trackBar.filterMode = false
		return a, a.selectTrack(a.trackBar.current())
	}

	switch s := msg.String(); s {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(s[0] - '1')
		if idx < len(a.trackBar.tracks) {
			a.mode = modeNormal
			a.trackBar.filterMode = false
			return a, a.selectTrack(a.trackBar.tracks[idx])
		}
	}
	return a, nil
}

func (a *App) handleDaysKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.daysInput.Blur()
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.daysInput.Blur()
		a.state.SetDaysInput(a.daysInput.Value())
		a.status = fmt.Sprintf("Window set to %d day(s); r to refresh", a.state.Days())
		return a, nil
	}

	var cmd tea.Cmd
	a.daysInput, cmd = a.daysInput.Update(msg)
	return a, cmd
}

func (a *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return a, nil
	}

	target := a.pointerTarget(msg.X, msg.Y)
	wasOpen := a.picker.IsOpen()
	a.picker.Dispatch(popover.Event{Kind: popover.EventPointer, Target: target})

	switch target {
	case popover.TargetToggle:
		a.picker.Dispatch(popover.Event{Kind: popover.EventToggle})
	case popover.TargetInside:
		if idx, ok := a.conceptAt(msg.X, msg.Y); ok {
			a.conceptCursor = idx
			a.picker.ToggleConcept(a.state.Catalog()[idx])
		}
	case popover.TargetOutside:
		if !wasOpen && msg.Y == controlsRow-1 {
			return a, a.clickTrack(msg.X)
		}
	}
	return a, nil
}

// clickTrack selects the track tab under x on the track bar row.
func (a *App) clickTrack(x int) tea.Cmd {
	pos := 1 // bar padding
	sep := lipgloss.Width(tabSeparatorStyle.Render(" · "))
	for _, t := range a.trackBar.tracks {
		w := lipgloss.Width(tabInactiveStyle.Render(trackLabel(t)))
		if x >= pos && x < pos+w {
			return a.selectTrack(t)
		}
		pos += w + sep
	}
	return nil
}

func (a *App) currentHelp() help.KeyMap {
	switch {
	case a.picker.IsOpen():
		return a.keys.popoverHelp()
	case a.mode == modeTrack:
		return a.keys.trackHelp()
	case a.mode == modeDays:
		return a.keys.daysHelp()
	default:
		return a.keys.normalHelp()
	}
}

func (a *App) helpView() string {
	return a.help.View(a.currentHelp())
}

// footerHeight is the status bar plus the help block.
func (a *App) footerHeight() int {
	return 1 + lipgloss.Height(a.helpView())
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  benkyou")
	}

	contentHeight := a.height - contentTop - a.footerHeight() - 2 // borders
	if contentHeight < 3 {
		contentHeight = 3
	}

	listWidth := int(float64(a.width) * 0.35)
	previewWidth := a.width - listWidth - 1 // gap

	// Header
	headerLeft := headerStyle.Render(a.cfg.Name())
	headerRight := headerDateStyle.Render(a.currentDate + " ")
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	tracks := a.trackBar.render(a.width)
	controls := a.renderControls()

	var content string
	switch {
	case a.picker.IsOpen():
		content = lipgloss.NewStyle().Height(contentHeight + 2).Render(a.renderPopover())
	case a.fetcher.Phase() == fetcher.PhaseIdle && len(a.entries) == 0:
		content = renderIdle(a.width, contentHeight+2, a.updateVersion)
	default:
		content = a.renderPanes(listWidth, previewWidth, contentHeight)
	}

	badge := ""
	if a.badge.Status != session.Unknown {
		badge = a.badge.String()
	}
	status := renderStatusBar(statusInfo{
		count:   len(a.entries),
		track:   a.state.Track(),
		days:    a.state.Days(),
		phase:   a.fetcher.Phase(),
		message: a.status,
		badge:   badge,
	}, a.width)

	if a.fetcher.Phase() == fetcher.PhaseLoading {
		status = a.spinner.View() + " " + status
	}

	// Error display
	if a.err != nil {
		status = statusErrStyle.Render(render.Terminal(a.err.Error()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, tracks, controls, content, status, a.helpView())
}

func (a *App) renderPanes(listWidth, previewWidth, contentHeight int) string {
	innerListW := listWidth - 4 // border + padding
	placeholder := a.fetcher.Message()
	var listContent string
	if a.fetcher.Phase() == fetcher.PhaseLoading {
		listContent = renderList(nil, 0, contentHeight, innerListW, a.spinner.View()+" "+placeholder)
	} else {
		listContent = renderList(a.entries, a.cursor, contentHeight, innerListW, placeholder)
	}

	var listPane string
	if a.focus == focusList {
		listPane = listPaneActiveStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	} else {
		listPane = listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	}

	var selected *render.Card
	if a.fetcher.Phase() != fetcher.PhaseLoading && a.cursor < len(a.entries) {
		selected = &a.entries[a.cursor].card
	}
	innerPreviewW := previewWidth - 4
	previewContent := renderPreview(selected, innerPreviewW, contentHeight, a.previewScroll)

	var previewPane string
	if a.focus == focusPreview {
		previewPane = previewPaneActiveStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	} else {
		previewPane = previewPaneStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

