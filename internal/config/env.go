package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overlays the environment-sourced settings the bot has always
// honored onto a loaded config. Keeps the cron deployment surface: the
// yaml file holds the stable shape, env vars carry per-host overrides and
// credentials.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("CARSCOUT_DATA_DIR"); v != "" {
		cfg.App.DataDir = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}

	if v, ok := envFloat("MAX_PLN"); ok {
		cfg.Budget.Ceiling = v
		cfg.Budget.Currency = "PLN"
	}
	if v, ok := envFloat("MAX_EUR"); ok {
		cfg.Budget.Ceiling = v
		cfg.Budget.Currency = "EUR"
	}
	if v, ok := envInt("MAX_DETAIL_PAGES_PER_RUN"); ok {
		cfg.Scrape.MaxDetailPagesPerRun = v
	}

	if v := os.Getenv("OLX_SEARCH_URL"); v != "" {
		cfg.Sites.OLX.SearchURL = v
	}
	if v := os.Getenv("OTOMOTO_SEARCH_URL"); v != "" {
		cfg.Sites.Otomoto.SearchURL = v
	}
	if v := os.Getenv("AUTOSCOUT_SEARCH_URL"); v != "" {
		cfg.Sites.AutoScout.SearchURL = v
	}
	if v := os.Getenv("MOBILEDE_SEARCH_URL"); v != "" {
		cfg.Sites.MobileDe.SearchURL = v
	}
}

func envFloat(key string) (float64, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
