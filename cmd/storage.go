package cmd

import (
	"fmt"
	"time"

	"github.com/seo-joon/benkyou/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagPruneOlderThan string
	flagStatsRecent    int
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the export history",
	Long: `Delete export history older than the retention period and reclaim disk space.
Exported CSV files are not touched.

Uses history_retention from config (default: 90d) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := parseSince(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		deleted, err := db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		out := cmd.OutOrStdout()
		if deleted == 0 {
			fmt.Fprintln(out, "Nothing to prune.")
		} else {
			fmt.Fprintf(out, "Pruned %d export(s) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show local store statistics and recent exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := config.CachePath()
		db, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		count, size, err := db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Store: %s\n", dbPath)
		fmt.Fprintf(out, "Exports: %d\n", count)
		fmt.Fprintf(out, "Size: %s\n", formatBytes(size))
		if last := db.LastFetch(); !last.IsZero() {
			fmt.Fprintf(out, "Last fetch: %s\n", last.Local().Format("Jan 2, 2006 3:04 PM"))
		}

		recent, err := db.Exports(flagStatsRecent)
		if err != nil {
			return err
		}
		if len(recent) > 0 {
			fmt.Fprintln(out, "\nRecent exports:")
			for _, e := range recent {
				fmt.Fprintf(out, "  %s  %3d rows  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Rows, e.Path)
			}
		}
		return nil
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")
	statsCmd.Flags().IntVar(&flagStatsRecent, "recent", 5, "number of recent exports to list")
}

func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
