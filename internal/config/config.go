package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"carscout/internal/risk"
)

type Site struct {
	Enabled   bool   `yaml:"enabled"`
	SearchURL string `yaml:"search_url"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Budget struct {
		Ceiling        float64 `yaml:"ceiling"`
		Currency       string  `yaml:"currency"` // PLN or EUR
		FallbackEURPLN float64 `yaml:"fallback_eur_pln"`
	} `yaml:"budget"`

	Scrape struct {
		MaxDetailPagesPerRun  int     `yaml:"max_detail_pages_per_run"`
		DetailDelayMinSeconds int     `yaml:"detail_delay_min_seconds"`
		DetailDelayMaxSeconds int     `yaml:"detail_delay_max_seconds"`
		NotifyDelaySeconds    int     `yaml:"notify_delay_seconds"`
		PerHostRPS            float64 `yaml:"per_host_rps"`
		Burst                 int     `yaml:"burst"`
	} `yaml:"scrape"`

	Sites struct {
		OLX       Site `yaml:"olx"`
		Otomoto   Site `yaml:"otomoto"`
		AutoScout Site `yaml:"autoscout24"`
		MobileDe  Site `yaml:"mobilede"`
	} `yaml:"sites"`

	Risk struct {
		Keywords  []string `yaml:"keywords"`
		Negations []string `yaml:"negations"`
	} `yaml:"risk"`

	Telegram struct {
		ChatID string `yaml:"chat_id"`
	} `yaml:"telegram"`
}

// Default is the configuration the scout ships with: the original 350Z
// watch with a 46 000 PLN ceiling.
func Default() Config {
	var cfg Config

	cfg.App.DataDir = "."

	cfg.Budget.Ceiling = 46000
	cfg.Budget.Currency = "PLN"
	cfg.Budget.FallbackEURPLN = 4.30

	cfg.Scrape.MaxDetailPagesPerRun = 20
	cfg.Scrape.DetailDelayMinSeconds = 10
	cfg.Scrape.DetailDelayMaxSeconds = 20
	cfg.Scrape.NotifyDelaySeconds = 2
	cfg.Scrape.PerHostRPS = 0.5
	cfg.Scrape.Burst = 1

	cfg.Sites.OLX = Site{Enabled: true, SearchURL: "https://www.olx.pl/motoryzacja/samochody/nissan/q-350z/"}
	cfg.Sites.Otomoto = Site{Enabled: true, SearchURL: "https://www.otomoto.pl/osobowe/nissan/350z"}
	cfg.Sites.AutoScout = Site{Enabled: true, SearchURL: "https://www.autoscout24.com/lst/nissan/350-z?price_to=11000"}
	cfg.Sites.MobileDe = Site{Enabled: true, SearchURL: "https://suchen.mobile.de/fahrzeuge/search.html?vc=Car&mk=18700&ms=20&sb=rel&fc=EUR&pr=%3A11000"}

	cfg.Risk.Keywords = append([]string(nil), risk.DefaultKeywords...)
	cfg.Risk.Negations = append([]string(nil), risk.DefaultNegations...)

	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
