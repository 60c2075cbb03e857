package cmd

import (
	"fmt"

	"github.com/seo-joon/benkyou/internal/session"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show who the API session belongs to",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := newClient(cfg).Session(cmd.Context())
		if err != nil {
			return fmt.Errorf("checking session: %w", err)
		}
		badge := session.FromSession(s, session.LoginURL(cfg.APIURL))
		out := cmd.OutOrStdout()
		if badge.SignedIn() {
			fmt.Fprintf(out, "Signed in as %s (%s)\n", badge.DisplayName(), badge.Login)
			return nil
		}
		fmt.Fprintln(out, "Not signed in.")
		if badge.LoginURL != "" {
			fmt.Fprintf(out, "Sign in at %s and set BENKYOU_SESSION to the session cookie.\n", badge.LoginURL)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the API session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Session() == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No session configured.")
			return nil
		}
		if _, err := session.Logout(cmd.Context(), newClient(cfg), session.LoginURL(cfg.APIURL)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(logoutCmd)
}
