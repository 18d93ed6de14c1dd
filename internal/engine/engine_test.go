package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carscout/internal/config"
	"carscout/internal/domain"
	"carscout/internal/identity"
	"carscout/internal/notify"
	"carscout/internal/risk"
	"carscout/internal/scrape"
	"carscout/internal/scrape/types"
)

// stubAdapter serves a fixed link list and fixed extractions, so the
// engine's sequencing and dedup logic is what gets exercised.
type stubAdapter struct {
	searchURL string
	links     []string
	listings  map[string]domain.RawListing
}

func (s *stubAdapter) Name() string                   { return "stub" }
func (s *stubAdapter) Source() domain.Source          { return domain.SourceOLX }
func (s *stubAdapter) SearchURL() string              { return s.searchURL }
func (s *stubAdapter) ListingLinks(_ string) []string { return s.links }

func (s *stubAdapter) Extract(_, pageURL string) (domain.RawListing, error) {
	l := s.listings[pageURL]
	l.URL = pageURL
	return l, nil
}

type recordingNotifier struct {
	texts     []string
	locations []domain.Geo
	failText  bool
}

func (r *recordingNotifier) Enabled() bool { return true }

func (r *recordingNotifier) SendText(_ context.Context, text string) error {
	if r.failText {
		return assert.AnError
	}
	r.texts = append(r.texts, text)
	return nil
}

func (r *recordingNotifier) SendLocation(_ context.Context, lat, lon float64) error {
	r.locations = append(r.locations, domain.Geo{Latitude: lat, Longitude: lon})
	return nil
}

func newTestEngine(t *testing.T, a *stubAdapter, n notify.Notifier) *Engine {
	t.Helper()

	cfg := config.Default()
	cfg.App.DataDir = t.TempDir()
	cfg.Budget.Ceiling = 46000
	cfg.Budget.Currency = "PLN"
	cfg.Scrape.NotifyDelaySeconds = 0

	return &Engine{
		Cfg: cfg,
		Fetcher: scrape.NewFetcher(scrape.FetcherOpts{
			PerHostRPS: 1000,
			Sleep:      func(time.Duration) {},
		}),
		Adapters: []types.Adapter{a},
		Notifier: n,
		Risk:     risk.Default(),
		Sleep:    func(time.Duration) {},
	}
}

func pageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>stub page</html>"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunOnceSendsThenDedupsByCanonicalURL(t *testing.T) {
	srv := pageServer(t)
	link := srv.URL + "/d/oferta/nissan-350z-ID1.html"

	adapter := &stubAdapter{
		searchURL: srv.URL + "/search",
		links:     []string{link},
		listings: map[string]domain.RawListing{
			link: {
				Title:     "Nissan 350Z",
				PriceText: "40 000 zł",
				Currency:  domain.PLN,
				Location:  "Warszawa",
				Source:    domain.SourceOLX,
			},
		},
	}
	n := &recordingNotifier{}
	e := newTestEngine(t, adapter, n)

	stats, err := e.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sent)
	require.Len(t, n.texts, 1)
	assert.Contains(t, n.texts[0], "Nissan 350Z")
	assert.Contains(t, n.texts[0], "40 000 PLN")

	// Second crawl finds the same ad under a URL with an added query
	// parameter; canonicalization must still recognize it.
	requeried := link + "?reason=recommended"
	adapter.links = []string{requeried}
	adapter.listings[requeried] = adapter.listings[link]

	stats, err = e.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.AlreadySent)
	assert.Equal(t, 0, stats.Sent)
	assert.Len(t, n.texts, 1)
}

func TestRunOnceContentSignatureSurvivesRedesign(t *testing.T) {
	srv := pageServer(t)
	urlA := srv.URL + "/d/oferta/nissan-350z-przed-liftem"
	urlB := srv.URL + "/ogloszenia/zupelnie/inna/sciezka-42"

	listing := domain.RawListing{
		Title:     "Nissan 350Z czarny",
		PriceText: "38 500 zł",
		Currency:  domain.PLN,
		Location:  "Kraków",
		Source:    domain.SourceOLX,
	}
	adapter := &stubAdapter{
		searchURL: srv.URL + "/search",
		links:     []string{urlA},
		listings:  map[string]domain.RawListing{urlA: listing, urlB: listing},
	}
	n := &recordingNotifier{}
	e := newTestEngine(t, adapter, n)

	stats, err := e.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Sent)

	// Site redesign: same ad, unrelated URL. No numeric id, both URL keys
	// differ — only the content signature can catch it.
	adapter.links = []string{urlB}

	stats, err = e.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.AlreadySent)
	assert.Len(t, n.texts, 1)
}

func TestRunOnceContentSignatureIgnoresRateDrift(t *testing.T) {
	srv := pageServer(t)
	urlA := srv.URL + "/lst/nissan/350-z/angebot-111"
	urlB := srv.URL + "/angebote/voellig/neuer/pfad-222"

	listing := domain.RawListing{
		Title:     "Nissan 350Z Coupé",
		PriceText: "9 000 €",
		Currency:  domain.EUR,
		Location:  "Berlin",
		Source:    domain.SourceAutoScout,
	}
	adapter := &stubAdapter{
		searchURL: srv.URL + "/search",
		links:     []string{urlA},
		listings:  map[string]domain.RawListing{urlA: listing, urlB: listing},
	}
	n := &recordingNotifier{}
	e := newTestEngine(t, adapter, n)
	e.Cfg.Budget.FallbackEURPLN = 4.30

	stats, err := e.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Sent)

	// Next run the reference rate has moved and the ad resurfaces under
	// an unrelated URL. The signature hashes the as-listed EUR amount, so
	// the converted-price drift must not produce a second delivery.
	e.Cfg.Budget.FallbackEURPLN = 4.28
	adapter.links = []string{urlB}

	stats, err = e.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.AlreadySent)
	assert.Equal(t, 0, stats.Sent)
	assert.Len(t, n.texts, 1)
}

func TestRunOnceEvaluatesInBudgetCurrency(t *testing.T) {
	srv := pageServer(t)
	bargain := srv.URL + "/lst/nissan/350-z/angebot-1"
	review := srv.URL + "/lst/nissan/350-z/angebot-2"

	adapter := &stubAdapter{
		searchURL: srv.URL + "/search",
		links:     []string{bargain, review},
		listings: map[string]domain.RawListing{
			bargain: {
				Title:     "Nissan 350Z Touring",
				PriceText: "9 900 €",
				Currency:  domain.EUR,
				Location:  "München",
				Source:    domain.SourceAutoScout,
			},
			review: {
				Title:     "Nissan 350Z GT",
				PriceText: "11 000 €",
				Currency:  domain.EUR,
				Location:  "Hamburg",
				Source:    domain.SourceAutoScout,
			},
		},
	}
	n := &recordingNotifier{}
	e := newTestEngine(t, adapter, n)
	e.Cfg.Budget.Ceiling = 11000
	e.Cfg.Budget.Currency = "EUR"

	stats, err := e.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Sent)
	require.Len(t, n.texts, 2)

	// Exact boundaries in the budget currency: 9900 is 90% of the
	// ceiling and still a bargain, 11000 is the ceiling and still review.
	assert.Contains(t, n.texts[0], "✅ OKAZJA")
	assert.Contains(t, n.texts[1], "ℹ️ DO SPRAWDZENIA")
}

func TestRunOnceNamespacesNumericIDsBySource(t *testing.T) {
	srv := pageServer(t)
	olxLink := srv.URL + "/d/oferta/nissan-350z-czerwony"
	mobileLink := srv.URL + "/samochod/nissan-350z-grau"

	olxAdapter := &stubAdapter{
		searchURL: srv.URL + "/olx-search",
		links:     []string{olxLink},
		listings: map[string]domain.RawListing{
			olxLink: {
				Title:     "Nissan 350Z czerwony",
				PriceText: "40 000 zł",
				Currency:  domain.PLN,
				Location:  "Warszawa",
				NumericID: "350350",
				Source:    domain.SourceOLX,
			},
		},
	}
	mobileAdapter := &stubAdapter{
		searchURL: srv.URL + "/mobile-search",
		links:     []string{mobileLink},
		listings: map[string]domain.RawListing{
			mobileLink: {
				Title:     "Nissan 350Z grau",
				PriceText: "9 000 €",
				Currency:  domain.EUR,
				Location:  "Bremen",
				NumericID: "350350", // same site-native id as the OLX ad
				Source:    domain.SourceMobileDe,
			},
		},
	}
	n := &recordingNotifier{}
	e := newTestEngine(t, olxAdapter, n)
	e.Adapters = append(e.Adapters, mobileAdapter)

	stats, err := e.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Sent, "colliding ids from different sites must not alias")

	sent, err := identity.Load(filepath.Join(e.Cfg.App.DataDir, SentStoreFile))
	require.NoError(t, err)
	assert.True(t, sent.Seen(identity.Keys{ID: "olx:350350"}))
	assert.True(t, sent.Seen(identity.Keys{ID: "mobilede:350350"}))
	assert.False(t, sent.Seen(identity.Keys{ID: "350350"}), "bare ids are never recorded")
}

func TestRunOnceRiskyOfferNotDelivered(t *testing.T) {
	srv := pageServer(t)
	link := srv.URL + "/d/oferta/nissan-350z-uszkodzony"

	adapter := &stubAdapter{
		searchURL: srv.URL + "/search",
		links:     []string{link},
		listings: map[string]domain.RawListing{
			link: {
				Title:     "Nissan 350Z, uszkodzony lakier",
				PriceText: "9 000 zł",
				Currency:  domain.PLN,
				Location:  "Łódź",
				Source:    domain.SourceOLX,
			},
		},
	}
	n := &recordingNotifier{}
	e := newTestEngine(t, adapter, n)

	stats, err := e.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Filtered)
	assert.Equal(t, 0, stats.Sent)
	assert.Empty(t, n.texts)
}

func TestRunOnceDeliveryFailureLeavesOfferUnmarked(t *testing.T) {
	srv := pageServer(t)
	link := srv.URL + "/d/oferta/nissan-350z-ID7"

	adapter := &stubAdapter{
		searchURL: srv.URL + "/search",
		links:     []string{link},
		listings: map[string]domain.RawListing{
			link: {
				Title:     "Nissan 350Z",
				PriceText: "41 000 zł",
				Currency:  domain.PLN,
				Location:  "Poznań",
				Source:    domain.SourceOLX,
			},
		},
	}
	n := &recordingNotifier{failText: true}
	e := newTestEngine(t, adapter, n)

	stats, err := e.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 0, stats.Sent)

	sent, err := identity.Load(filepath.Join(e.Cfg.App.DataDir, SentStoreFile))
	require.NoError(t, err)
	assert.Equal(t, 0, sent.Size(), "failed delivery must not mark anything sent")

	// Transport recovers: the same offer goes out on the next run.
	n.failText = false
	stats, err = e.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sent)
	assert.Len(t, n.texts, 1)
}

func TestRunOnceSendsGeoPinBeforeText(t *testing.T) {
	srv := pageServer(t)
	link := srv.URL + "/d/oferta/nissan-350z-z-mapa"

	adapter := &stubAdapter{
		searchURL: srv.URL + "/search",
		links:     []string{link},
		listings: map[string]domain.RawListing{
			link: {
				Title:     "Nissan 350Z",
				PriceText: "39 000 zł",
				Currency:  domain.PLN,
				Location:  "Gdańsk",
				Geo:       &domain.Geo{Latitude: 54.35, Longitude: 18.65},
				Source:    domain.SourceOLX,
			},
		},
	}
	n := &recordingNotifier{}
	e := newTestEngine(t, adapter, n)

	stats, err := e.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sent)
	require.Len(t, n.locations, 1)
	assert.InDelta(t, 54.35, n.locations[0].Latitude, 1e-9)
	require.Len(t, n.texts, 1)
}
