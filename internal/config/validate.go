package config

import (
	"errors"
	"fmt"
	"strings"
)

func Validate(cfg Config) error {
	var errs []string

	if cfg.Budget.Ceiling <= 0 {
		errs = append(errs, "budget.ceiling must be > 0")
	}
	switch cfg.Budget.Currency {
	case "PLN", "EUR":
	default:
		errs = append(errs, fmt.Sprintf("budget.currency must be PLN or EUR, got %q", cfg.Budget.Currency))
	}
	if cfg.Budget.FallbackEURPLN <= 0 {
		errs = append(errs, "budget.fallback_eur_pln must be > 0")
	}

	if cfg.Scrape.MaxDetailPagesPerRun <= 0 {
		errs = append(errs, "scrape.max_detail_pages_per_run must be > 0")
	}
	if cfg.Scrape.DetailDelayMinSeconds < 0 || cfg.Scrape.DetailDelayMaxSeconds < cfg.Scrape.DetailDelayMinSeconds {
		errs = append(errs, "scrape detail delay bounds must satisfy 0 <= min <= max")
	}

	enabled := 0
	for _, s := range []Site{cfg.Sites.OLX, cfg.Sites.Otomoto, cfg.Sites.AutoScout, cfg.Sites.MobileDe} {
		if !s.Enabled {
			continue
		}
		enabled++
		if strings.TrimSpace(s.SearchURL) == "" {
			errs = append(errs, "enabled site is missing search_url")
		}
	}
	if enabled == 0 {
		errs = append(errs, "no sites enabled: nothing to scrape")
	}

	if len(cfg.Risk.Keywords) == 0 {
		errs = append(errs, "risk.keywords must not be empty")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}
