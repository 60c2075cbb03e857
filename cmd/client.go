package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/seo-joon/benkyou/internal/api"
	"github.com/seo-joon/benkyou/internal/cache"
	"github.com/seo-joon/benkyou/internal/catalog"
	"github.com/seo-joon/benkyou/internal/config"
	"github.com/seo-joon/benkyou/internal/filter"
	"github.com/seo-joon/benkyou/internal/prefs"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newClient(cfg *config.Config) *api.Client {
	return api.NewClient(cfg.APIURL, cfg.Timeout(), cfg.Session())
}

func openCache() (*cache.Cache, error) {
	db, err := cache.Open(config.CachePath())
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return db, nil
}

// queryFlags are the filter flags shared by fetch and export. Unset flags
// fall back to the saved preferences.
type queryFlags struct {
	track    string
	concepts []string
	days     int
	noPrefs  bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.track, "track", "t", filter.AllTracks, "track to search (all, commerce, arts, ...)")
	cmd.Flags().StringSliceVarP(&f.concepts, "concept", "c", nil, "concept to match (repeatable)")
	cmd.Flags().IntVarP(&f.days, "days", "d", filter.DefaultDays, "look back this many days (1-365)")
	cmd.Flags().BoolVar(&f.noPrefs, "no-prefs", false, "ignore saved preferences")
}

func (f *queryFlags) preferences(cmd *cobra.Command, kv prefs.KV) prefs.Preferences {
	p := prefs.Defaults()
	if !f.noPrefs && kv != nil {
		p = prefs.New(kv).Load()
	}
	if cmd.Flags().Changed("track") {
		p.Track = f.track
		// Saved concepts belong to the saved track
		p.Concepts = nil
	}
	if cmd.Flags().Changed("concept") {
		p.Concepts = f.concepts
	}
	if cmd.Flags().Changed("days") {
		p.Days = f.days
	}
	return prefs.Normalize(p)
}

// resolveState seeds a filter the way the TUI does at startup: track and
// days first, then concepts checked against the track's catalog.
func resolveState(ctx context.Context, src catalog.Source, p prefs.Preferences, warn io.Writer) (*filter.State, error) {
	state := filter.New()
	prefs.ApplyBase(state, p)

	concepts, err := catalog.New(src).Load(ctx, state.Track())
	if err != nil {
		if len(p.Concepts) > 0 {
			return nil, fmt.Errorf("loading concepts for %s: %w", state.Track(), err)
		}
		fmt.Fprintln(warn, "No concepts available")
		return state, nil
	}
	state.ApplyCatalog(concepts)
	if dropped := prefs.ApplyConcepts(state, p); dropped > 0 {
		fmt.Fprintf(warn, "Ignoring %d concept(s) not offered for track %q\n", dropped, state.Track())
	}
	return state, nil
}

// terminalWidth is the width of stdout, or 80 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80
	}
	return w
}
