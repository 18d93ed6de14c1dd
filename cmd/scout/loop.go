package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"carscout/internal/httpapi"
	"carscout/internal/scheduler"
)

var (
	loopInterval time.Duration
	loopAddr     string
)

var loopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Run the scout on an interval with a localhost status API",
	Long: `Runs a scout pass immediately and then on every interval tick, and serves
a read-only status API (/health, /runs, /offers) backed by the local archive.`,
	RunE: runLoop,
}

func init() {
	loopCmd.Flags().DurationVar(&loopInterval, "interval", 30*time.Minute, "time between scout passes")
	loopCmd.Flags().StringVar(&loopAddr, "addr", "127.0.0.1:8780", "status API listen address")
	rootCmd.AddCommand(loopCmd)
}

func runLoop(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, db, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("[scout] loop every %s, status API on http://%s", loopInterval, loopAddr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpapi.Serve(ctx, loopAddr, db)
	})
	g.Go(func() error {
		scheduler.Every(ctx, loopInterval, "scout", func(ctx context.Context) error {
			_, err := eng.RunOnce(ctx)
			return err
		})
		return nil
	})
	return g.Wait()
}
