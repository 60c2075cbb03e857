package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/seo-joon/benkyou/internal/config"
	"github.com/seo-joon/benkyou/internal/logging"
	"github.com/seo-joon/benkyou/internal/update"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig string
	flagDebug  bool
	flagCheck  bool

	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "benkyou",
	Short: "Terminal client for the learning feed",
	Long: `benkyou filters learning-feed examples by track, concept and recency,
shows them as cards and exports them as Anki flashcards.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	RunE:               runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (.yaml or .toml)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "write debug output to the log file")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "check for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(statsCmd)
}

// setup loads .env overrides and opens the log file before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	closer, err := logging.Init(config.LogPath(), flagDebug)
	if err != nil {
		// Logging is best effort; the default logger discards.
		fmt.Fprintf(os.Stderr, "warning: cannot open log file: %v\n", err)
		return nil
	}
	logCloser = closer
	logging.Logger().Debug("starting", "command", cmd.Name(), "version", version)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "benkyou %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheck {
			return
		}
		if res := update.Check(context.Background(), version); res != nil {
			fmt.Fprintf(out, "Update available: v%s\n", res.LatestVersion)
		} else {
			fmt.Fprintln(out, "You are up to date.")
		}
	},
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
