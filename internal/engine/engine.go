// Package engine sequences one scout run: rate fetch, site adapters in
// order, dedup filtering, evaluation, archiving, delivery, and the single
// end-of-run store save.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"carscout/internal/config"
	"carscout/internal/domain"
	"carscout/internal/eval"
	"carscout/internal/identity"
	"carscout/internal/notify"
	"carscout/internal/price"
	"carscout/internal/risk"
	"carscout/internal/scrape"
	"carscout/internal/scrape/types"
	"carscout/internal/store"
)

// SentStoreFile is the dedup-store filename inside the data dir.
const SentStoreFile = "sent_store.json"

// Prober is the optional credential check a notifier can offer; the
// engine runs it during bootstrap so a bad token shows up immediately
// instead of on the first matching offer.
type Prober interface {
	Probe(ctx context.Context) error
}

type Engine struct {
	Cfg      config.Config
	Fetcher  *scrape.Fetcher
	Adapters []types.Adapter
	Notifier notify.Notifier
	Rates    *price.Rates // nil means always use the configured fallback
	Archive  *store.DB    // nil means no sqlite archive (tests)
	Risk     *risk.Classifier

	// Sleep is the post-delivery pacing wait, overridable in tests.
	Sleep func(time.Duration)
}

// RunStats are the per-run counters, printed at the end of every run and
// recorded in the runs table.
type RunStats struct {
	Stubs       int
	Checked     int
	AlreadySent int
	Filtered    int
	Sent        int
	Errors      int
}

func (s *RunStats) add(o RunStats) {
	s.Stubs += o.Stubs
	s.Checked += o.Checked
	s.AlreadySent += o.AlreadySent
	s.Filtered += o.Filtered
	s.Sent += o.Sent
	s.Errors += o.Errors
}

func (s RunStats) String() string {
	return fmt.Sprintf("stubs=%d checked=%d already_sent=%d filtered=%d sent=%d errors=%d",
		s.Stubs, s.Checked, s.AlreadySent, s.Filtered, s.Sent, s.Errors)
}

// RunOnce executes one full scout pass. Adapters run strictly in order; a
// failing adapter is logged and skipped, never aborting the rest. The
// dedup store is loaded once at the start and saved once at the end, so
// an abrupt kill loses at most this run's in-memory marks.
func (e *Engine) RunOnce(ctx context.Context) (stats RunStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("run panicked: %v", r)
		}
	}()

	eurPLN := e.bootstrap(ctx)

	sentPath := filepath.Join(e.Cfg.App.DataDir, SentStoreFile)
	sent, err := identity.Load(sentPath)
	if err != nil {
		return stats, fmt.Errorf("load dedup store: %w", err)
	}

	runID := uuid.NewString()
	if e.Archive != nil {
		if err := store.StartRun(ctx, e.Archive.Pool, runID); err != nil {
			log.Printf("[engine] archive start run: %v", err)
		}
	}

	for _, a := range e.Adapters {
		st := e.runAdapter(ctx, a, sent, runID, eurPLN)
		log.Printf("[%s] %s", a.Name(), st)
		stats.add(st)
	}

	if err := sent.Save(sentPath); err != nil {
		return stats, fmt.Errorf("save dedup store: %w", err)
	}

	if e.Archive != nil {
		if err := store.FinishRun(ctx, e.Archive.Pool, store.RunRow{
			ID:          runID,
			Stubs:       stats.Stubs,
			Checked:     stats.Checked,
			AlreadySent: stats.AlreadySent,
			Filtered:    stats.Filtered,
			Sent:        stats.Sent,
			Errors:      stats.Errors,
		}); err != nil {
			log.Printf("[engine] archive finish run: %v", err)
		}
	}

	log.Printf("[engine] run %s done: %s", runID, stats)
	return stats, nil
}

// bootstrap fetches the EUR→PLN reference rate and probes the notifier
// credentials concurrently. Neither failure stops the run: the rate falls
// back to the configured constant and a bad credential downgrades to the
// disabled notifier path.
func (e *Engine) bootstrap(ctx context.Context) float64 {
	eurPLN := e.Cfg.Budget.FallbackEURPLN

	var g errgroup.Group
	g.Go(func() error {
		if e.Rates == nil {
			return nil
		}
		rate, err := e.Rates.FetchEURPLN(ctx)
		if err != nil {
			log.Printf("[engine] NBP rate fetch failed, using fallback %.2f: %v", eurPLN, err)
			return nil
		}
		eurPLN = rate
		return nil
	})
	g.Go(func() error {
		p, ok := e.Notifier.(Prober)
		if !ok || !e.Notifier.Enabled() {
			return nil
		}
		if err := p.Probe(ctx); err != nil {
			log.Printf("[engine] notifier credential probe failed: %v", err)
		}
		return nil
	})
	_ = g.Wait()

	return eurPLN
}

func (e *Engine) runAdapter(ctx context.Context, a types.Adapter, sent *identity.Store, runID string, eurPLN float64) (st RunStats) {
	html, err := e.Fetcher.Get(ctx, a.SearchURL())
	if err != nil {
		log.Printf("[%s] search page: %v", a.Name(), err)
		st.Errors++
		return st
	}

	links := a.ListingLinks(html)
	st.Stubs = len(links)
	if len(links) > e.Cfg.Scrape.MaxDetailPagesPerRun {
		links = links[:e.Cfg.Scrape.MaxDetailPagesPerRun]
	}

	for _, link := range links {
		if ctx.Err() != nil {
			return st
		}
		st.Checked++

		// Cheap pre-fetch check on the URL-derived keys alone; the full
		// four-key check runs again after extraction.
		if sent.Seen(identity.ForURL(link)) {
			st.AlreadySent++
			continue
		}

		e.Fetcher.PaceDetail()
		page, err := e.Fetcher.Get(ctx, link)
		if err != nil {
			log.Printf("[%s] detail %s: %v", a.Name(), link, err)
			st.Errors++
			continue
		}

		raw, err := a.Extract(page, link)
		switch {
		case errors.Is(err, types.ErrNoListing):
			st.Filtered++
			continue
		case err != nil:
			log.Printf("[%s] extract %s: %v", a.Name(), link, err)
			st.Errors++
			continue
		}

		offer := e.buildOffer(raw, eurPLN)
		keys := offerKeys(offer)
		if sent.Seen(keys) {
			st.AlreadySent++
			continue
		}

		if e.Archive != nil {
			if _, err := store.InsertOffer(ctx, e.Archive.Pool, runID, offer); err != nil {
				log.Printf("[%s] archive: %v", a.Name(), err)
			}
		}

		if !notifiable(offer.Verdict) {
			st.Filtered++
			continue
		}

		if !e.deliver(ctx, a.Name(), offer) {
			st.Errors++
			continue // not marked sent; retried next run
		}

		sent.MarkSent(keys)
		if e.Archive != nil {
			if err := store.MarkNotified(ctx, e.Archive.Pool, offer.ContentSig); err != nil {
				log.Printf("[%s] archive notified flag: %v", a.Name(), err)
			}
		}
		st.Sent++

		e.sleep(time.Duration(e.Cfg.Scrape.NotifyDelaySeconds) * time.Second)
	}

	return st
}

// buildOffer derives identity keys, normalizes the price into both
// currencies, and evaluates. The budget comparison runs in the configured
// budget currency so boundary checks stay exact when the listing's native
// currency matches it.
func (e *Engine) buildOffer(raw domain.RawListing, eurPLN float64) domain.Offer {
	o := domain.Offer{RawListing: raw}
	o.CanonicalURL = identity.Canonicalize(raw.URL)
	o.PathSignature = identity.PathSignature(raw.URL)

	var native *float64
	if raw.PriceNum != nil {
		native = raw.PriceNum
	} else if raw.PriceText != "" {
		if n, ok := price.ParseLocaleNumber(raw.PriceText); ok {
			native = &n
		}
	}

	if native != nil && raw.Currency != domain.CurrencyUnknown {
		pln := price.Convert(*native, raw.Currency, domain.PLN, eurPLN)
		eur := price.Convert(*native, raw.Currency, domain.EUR, eurPLN)
		o.PricePLN = &pln
		o.PriceEUR = &eur
	}

	var inBudget *float64
	switch e.Cfg.Budget.Currency {
	case "EUR":
		inBudget = o.PriceEUR
	default:
		inBudget = o.PricePLN
	}

	text := raw.Title
	if raw.Text != "" {
		text = raw.Title + "\n" + raw.Text
	}
	o.Risky = e.Risk.Risky(text)
	o.Verdict = eval.Evaluator{Ceiling: e.Cfg.Budget.Ceiling, Risk: e.Risk}.Evaluate(text, inBudget)

	// The signature hashes the as-listed price, never a converted one: a
	// rate-converted amount moves with every exchange-rate tick and would
	// make an unchanged ad look new on the next run.
	o.ContentSig = identity.ContentSignature(raw.Title, native, o.Location)
	return o
}

func offerKeys(o domain.Offer) identity.Keys {
	k := identity.Keys{
		CanonicalURL: o.CanonicalURL,
		PathSig:      o.PathSignature,
		ContentSig:   o.ContentSig,
	}
	// Site-native ids are only unique per site; namespace them so two
	// sites handing out the same number never alias each other.
	if o.NumericID != "" {
		k.ID = string(o.Source) + ":" + o.NumericID
	}
	return k
}

// notifiable decides which verdicts are worth a message. Risky and
// over-budget offers stay in the archive but are not delivered; an
// unknown price is delivered so a human can check.
func notifiable(v domain.Verdict) bool {
	switch v {
	case domain.VerdictBargain, domain.VerdictReview, domain.VerdictUnknownPrice:
		return true
	default:
		return false
	}
}

// deliver sends the geo pin (best effort) and then the text message.
// Only a confirmed text delivery counts; a failed pin is logged and the
// message still goes out.
func (e *Engine) deliver(ctx context.Context, name string, o domain.Offer) bool {
	if o.Geo != nil {
		if err := e.Notifier.SendLocation(ctx, o.Geo.Latitude, o.Geo.Longitude); err != nil {
			log.Printf("[%s] send location: %v", name, err)
		} else {
			e.sleep(time.Second)
		}
	}

	if err := e.Notifier.SendText(ctx, notify.FormatMessage(o)); err != nil {
		log.Printf("[%s] send message: %v", name, err)
		return false
	}
	return true
}

func (e *Engine) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if e.Sleep != nil {
		e.Sleep(d)
		return
	}
	time.Sleep(d)
}
