package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"carscout/internal/engine"
	"carscout/internal/identity"
)

var seenCmd = &cobra.Command{
	Use:   "seen",
	Short: "Inspect the already-notified dedup store",
}

var seenExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the dedup store as sorted JSON",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, err := identity.Load(filepath.Join(cfg.App.DataDir, engine.SentStoreFile))
		if err != nil {
			return err
		}
		b, err := s.JSON()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(b)
		return err
	},
}

func init() {
	seenCmd.AddCommand(seenExportCmd)
	rootCmd.AddCommand(seenCmd)
}
