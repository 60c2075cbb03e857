package cmd

import (
	"context"
	"time"

	"github.com/seo-joon/benkyou/internal/prefs"
	"github.com/seo-joon/benkyou/internal/tui"
	"github.com/seo-joon/benkyou/internal/update"
	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	// Keep the release check from holding up startup
	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	var latest string
	if res := update.Check(ctx, version); res != nil {
		latest = res.LatestVersion
	}
	cancel()

	return tui.Run(tui.RunOpts{
		Cfg:           cfg,
		Backend:       newClient(cfg),
		Store:         db,
		Prefs:         prefs.New(db).Load(),
		UpdateVersion: latest,
	})
}
