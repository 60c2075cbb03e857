package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"
	"github.com/seo-joon/benkyou/internal/anki"
	"github.com/seo-joon/benkyou/internal/catalog"
	"github.com/seo-joon/benkyou/internal/config"
	"github.com/seo-joon/benkyou/internal/fetcher"
	"github.com/seo-joon/benkyou/internal/filter"
	"github.com/seo-joon/benkyou/internal/prefs"
	"github.com/seo-joon/benkyou/internal/render"
	"github.com/spf13/cobra"
)

var (
	fetchFlags    queryFlags
	flagFetchHTML string

	exportFlags     queryFlags
	flagExportDir   string
	flagExportClip  bool
	flagConceptsFor string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Print matching examples as cards",
	Long: `Fetch examples for the saved filter (or the flags given) and print them.

With --html the cards are written to a standalone HTML page instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		f, err := runQuery(cmd, cfg, &fetchFlags)
		if err != nil {
			return err
		}

		cards := make([]render.Card, 0, len(f.Items()))
		for _, it := range f.Items() {
			cards = append(cards, render.NewCard(it, time.Local))
		}

		if flagFetchHTML != "" {
			page := render.Page(cfg.Name(), cards, fetcher.EmptyText)
			if err := os.WriteFile(flagFetchHTML, []byte(page), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", flagFetchHTML, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d card(s) to %s\n", len(cards), flagFetchHTML)
			return nil
		}

		printCards(cmd.OutOrStdout(), cards, terminalWidth())
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export matching examples as an Anki CSV",
	Long: `Fetch examples for the saved filter (or the flags given) and write the
ones with titles longer than five words to <dir>/<app>-anki-<date>.csv.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		f, err := runQuery(cmd, cfg, &exportFlags)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if flagExportClip {
			n, err := anki.Copy(f.Items())
			if err != nil {
				return exportError(out, err)
			}
			fmt.Fprintf(out, "Copied %d card(s) to the clipboard\n", n)
			return nil
		}

		x := &anki.Exporter{App: cfg.Name(), Dir: cfg.ExportPath()}
		if flagExportDir != "" {
			x.Dir = flagExportDir
		}
		if db, err := openCache(); err == nil {
			defer db.Close()
			x.Recorder = db
		}

		res, err := x.Export(f.Items())
		if err != nil {
			return exportError(out, err)
		}
		fmt.Fprintf(out, "Exported %d card(s) to %s", res.Rows, res.Path)
		if res.Skipped > 0 {
			fmt.Fprintf(out, " (%d skipped)", res.Skipped)
		}
		fmt.Fprintln(out)
		return nil
	},
}

var conceptsCmd = &cobra.Command{
	Use:   "concepts",
	Short: "List the concepts offered for a track",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		concepts, err := catalog.New(newClient(cfg)).Load(cmd.Context(), flagConceptsFor)
		if err != nil {
			return fmt.Errorf("loading concepts: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(concepts) == 0 {
			fmt.Fprintln(out, "No concepts available")
			return nil
		}
		for _, c := range concepts {
			fmt.Fprintf(out, "%-28s %s\n", c, filter.Label(c))
		}
		return nil
	},
}

func init() {
	fetchFlags.register(fetchCmd)
	fetchCmd.Flags().StringVar(&flagFetchHTML, "html", "", "write the cards to this HTML file")

	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVar(&flagExportDir, "dir", "", "directory to write the CSV to (default: export_dir)")
	exportCmd.Flags().BoolVar(&flagExportClip, "clipboard", false, "copy the CSV to the clipboard instead of writing a file")

	conceptsCmd.Flags().StringVarP(&flagConceptsFor, "track", "t", filter.AllTracks, "track to list concepts for")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(conceptsCmd)
}

// runQuery resolves the filter and performs one fetch.
func runQuery(cmd *cobra.Command, cfg *config.Config, qf *queryFlags) (*fetcher.Fetcher, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client := newClient(cfg)

	var kv prefs.KV
	if !qf.noPrefs {
		if db, err := openCache(); err == nil {
			defer db.Close()
			kv = db
		}
	}
	p := qf.preferences(cmd, kv)

	state, err := resolveState(ctx, client, p, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	f := fetcher.New(client, cfg.Timeout())
	if err := f.Run(ctx, state.Query()); err != nil {
		return nil, fmt.Errorf("fetching examples: %w", err)
	}
	return f, nil
}

// exportError turns the two refusals into plain messages; anything else is
// a real failure.
func exportError(out io.Writer, err error) error {
	if errors.Is(err, anki.ErrNothingToExport) || errors.Is(err, anki.ErrNoEligibleItems) {
		fmt.Fprintln(out, err)
		return nil
	}
	return err
}

func printCards(out io.Writer, cards []render.Card, width int) {
	if len(cards) == 0 {
		fmt.Fprintln(out, fetcher.EmptyText)
		return
	}
	wrap := max(20, width-4)
	for i, c := range cards {
		c = c.ForTerminal()
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s · %s\n", c.Source, c.Date)
		fmt.Fprintln(out, c.Title)
		if c.Summary != "" {
			fmt.Fprintln(out, indent(wordwrap.String(c.Summary, wrap), "  "))
		}
		if len(c.Badges) > 0 {
			fmt.Fprintln(out, "  ["+strings.Join(c.Badges, "] [")+"]")
		}
		if u := render.SafeURL(c.URL); u != "" {
			fmt.Fprintln(out, "  "+u)
		}
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
