// Package main is the carscout CLI: one-shot cron runs, a loop mode with
// a localhost status API, and small store/credential utilities.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Car-classifieds scout: scrape, dedup, evaluate, notify",
	Long: `carscout watches configured car-classifieds sites for a target vehicle,
filters listings by budget and risk keywords, deduplicates everything it has
already alerted on, and delivers the rest over Telegram.`,
}

func main() {
	// .env if present; the cron deployment usually carries one.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
