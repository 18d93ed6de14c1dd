package main

import (
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scout pass over all enabled sites and exit",
	Long: `Fetches each enabled site's search page, walks new listing detail pages,
evaluates them against the configured budget and risk keywords, delivers
anything notifiable and records what was sent. Meant to be invoked from cron;
an already-running instance makes this a no-op.`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Overlapping cron invocations must not race the dedup store.
	lock := flock.New(filepath.Join(cfg.App.DataDir, "scout.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return err
	}
	if !locked {
		log.Printf("[scout] another instance holds the lock, skipping this run")
		return nil
	}
	defer func() { _ = lock.Unlock() }()

	eng, db, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := eng.RunOnce(ctx)
	if err != nil {
		// Unattended cron run: log and exit cleanly instead of tracing.
		log.Printf("[scout] run failed after %s: %v", stats, err)
		return nil
	}
	return nil
}
