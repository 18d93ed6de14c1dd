package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"carscout/internal/config"
	"carscout/internal/engine"
	"carscout/internal/notify"
	"carscout/internal/price"
	"carscout/internal/risk"
	"carscout/internal/scrape"
	"carscout/internal/scrape/autoscout"
	"carscout/internal/scrape/mobilede"
	"carscout/internal/scrape/olx"
	"carscout/internal/scrape/otomoto"
	"carscout/internal/scrape/types"
	"carscout/internal/secrets"
	"carscout/internal/store"
)

// loadConfig bootstraps the data dir, loads the yaml config (writing the
// shipped defaults on first run), overlays the environment and validates.
func loadConfig() (config.Config, error) {
	dataDir := os.Getenv("CARSCOUT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return config.Config{}, fmt.Errorf("data dir %s: %w", dataDir, err)
	}

	path, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		return config.Config{}, fmt.Errorf("config bootstrap: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("config load (%s): %w", path, err)
	}
	cfg.App.DataDir = dataDir
	config.ApplyEnv(&cfg)

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// buildEngine assembles a run-ready engine: enabled adapters, the shared
// fetcher, the NBP rate client, the sqlite archive and the notifier.
// Missing Telegram credentials downgrade to the disabled notifier; the
// run still archives, so that is never fatal.
func buildEngine(cfg config.Config) (*engine.Engine, *store.DB, error) {
	db, err := store.Open(filepath.Join(cfg.App.DataDir, "carscout.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	if err := store.Migrate(db.Pool); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate archive: %w", err)
	}

	fetcher := scrape.NewFetcher(scrape.FetcherOpts{
		DelayMin:   time.Duration(cfg.Scrape.DetailDelayMinSeconds) * time.Second,
		DelayMax:   time.Duration(cfg.Scrape.DetailDelayMaxSeconds) * time.Second,
		PerHostRPS: cfg.Scrape.PerHostRPS,
		Burst:      cfg.Scrape.Burst,
	})

	var adapters []types.Adapter
	if cfg.Sites.OLX.Enabled {
		adapters = append(adapters, olx.New(cfg.Sites.OLX.SearchURL))
	}
	if cfg.Sites.Otomoto.Enabled {
		adapters = append(adapters, otomoto.New(cfg.Sites.Otomoto.SearchURL))
	}
	if cfg.Sites.AutoScout.Enabled {
		adapters = append(adapters, autoscout.New(cfg.Sites.AutoScout.SearchURL))
	}
	if cfg.Sites.MobileDe.Enabled {
		adapters = append(adapters, mobilede.New(cfg.Sites.MobileDe.SearchURL))
	}

	var notifier notify.Notifier = notify.Disabled{}
	token, err := secrets.GetBotToken()
	switch {
	case err != nil:
		log.Printf("[scout] NOTIFICATIONS OFF: %v", err)
	case cfg.Telegram.ChatID == "":
		log.Printf("[scout] NOTIFICATIONS OFF: telegram chat_id not configured (set TELEGRAM_CHAT_ID)")
	default:
		notifier = notify.NewTelegram(token, cfg.Telegram.ChatID)
	}

	return &engine.Engine{
		Cfg:      cfg,
		Fetcher:  fetcher,
		Adapters: adapters,
		Notifier: notifier,
		Rates:    price.NewRates(&http.Client{Timeout: 15 * time.Second}),
		Archive:  db,
		Risk:     risk.New(cfg.Risk.Keywords, cfg.Risk.Negations),
	}, db, nil
}
