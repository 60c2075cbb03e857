package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/seo-joon/benkyou/internal/prefs"
	"github.com/spf13/cobra"
)

var setFlags queryFlags

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change the filter restored at startup",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		data, err := json.MarshalIndent(prefs.New(db).Load(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save track, days and concepts for the next start",
	Long: `Update the saved preferences. Only the flags given are changed; choosing a
different track clears the saved concepts unless --concept is also given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		p := setFlags.preferences(cmd, db)
		if err := prefs.New(db).Save(p); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved: track %s, %d day(s), %d concept(s)\n", p.Track, p.Days, len(p.Concepts))
		return nil
	},
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the saved preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openCache()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := prefs.New(db).Reset(); err != nil {
			return err
		}
		d := prefs.Defaults()
		fmt.Fprintf(cmd.OutOrStdout(), "Preferences reset (track %s, %d days)\n", d.Track, d.Days)
		return nil
	},
}

func init() {
	setFlags.register(prefsSetCmd)
	// --no-prefs makes no sense when editing them
	prefsSetCmd.Flags().MarkHidden("no-prefs")

	prefsCmd.AddCommand(prefsShowCmd, prefsSetCmd, prefsResetCmd)
	rootCmd.AddCommand(prefsCmd)
}
