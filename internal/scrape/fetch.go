// Package scrape holds the shared page fetcher and the per-site adapters
// that turn raw page text into listing tuples.
package scrape

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"carscout/internal/scrape/types"
	"carscout/internal/scrape/util"
)

const (
	userAgent      = "Mozilla/5.0 (compatible; carscout/1.0; +https://github.com/)"
	acceptLanguage = "pl-PL,pl;q=0.9,en;q=0.7"

	requestTimeout = 25 * time.Second
	maxBodyBytes   = 4 << 20
)

// Fetcher is the one HTTP path every adapter's pages go through: browser-ish
// headers, bounded timeout, per-host rate limiting and the randomized
// detail-page delay. All waits are blocking by design; the pacing exists to
// bound outbound request rate, not for correctness.
type Fetcher struct {
	hc      *http.Client
	limiter *util.HostLimiter

	delayMin time.Duration
	delayMax time.Duration

	rng   *rand.Rand
	sleep func(time.Duration)
}

type FetcherOpts struct {
	DelayMin   time.Duration
	DelayMax   time.Duration
	PerHostRPS float64
	Burst      int

	// Client and Sleep are overridable for tests.
	Client *http.Client
	Sleep  func(time.Duration)
}

func NewFetcher(opts FetcherOpts) *Fetcher {
	hc := opts.Client
	if hc == nil {
		hc = &http.Client{Timeout: requestTimeout}
	}
	if opts.PerHostRPS <= 0 {
		opts.PerHostRPS = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	slp := opts.Sleep
	if slp == nil {
		slp = time.Sleep
	}
	return &Fetcher{
		hc:       hc,
		limiter:  util.NewHostLimiter(opts.PerHostRPS, opts.Burst),
		delayMin: opts.DelayMin,
		delayMax: opts.DelayMax,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    slp,
	}
}

// Get fetches one page and returns its text. Transport errors and non-2xx
// statuses come back wrapped in types.ErrUnavailable so the caller can
// treat them as "no data" for that item.
func (f *Fetcher) Get(ctx context.Context, url string) (string, error) {
	if err := f.limiter.WaitURL(ctx, url); err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", acceptLanguage)

	res, err := f.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d for %s", types.ErrUnavailable, res.StatusCode, url)
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", types.ErrUnavailable, err)
	}
	return string(b), nil
}

// PaceDetail blocks for a random interval within the configured bounds
// before a detail-page fetch.
func (f *Fetcher) PaceDetail() {
	if f.delayMax <= 0 {
		return
	}
	d := f.delayMin
	if f.delayMax > f.delayMin {
		d += time.Duration(f.rng.Int63n(int64(f.delayMax - f.delayMin)))
	}
	f.sleep(d)
}
