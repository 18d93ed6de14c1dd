// Package mobilede extracts listings from mobile.de (EUR market, Polish
// storefront paths).
package mobilede

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"carscout/internal/domain"
	"carscout/internal/identity"
	"carscout/internal/scrape/types"
	"carscout/internal/scrape/util"
)

const baseURL = "https://www.mobile.de"

type Adapter struct {
	searchURL string
}

func New(searchURL string) *Adapter {
	return &Adapter{searchURL: searchURL}
}

func (a *Adapter) Name() string          { return "mobilede" }
func (a *Adapter) Source() domain.Source { return domain.SourceMobileDe }
func (a *Adapter) SearchURL() string     { return a.searchURL }

func (a *Adapter) ListingLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	doc.Find(`a[href*="/samochod/"]`).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = baseURL + href
		}
		canon := identity.Canonicalize(href)
		if seen[canon] {
			return
		}
		seen[canon] = true
		out = append(out, href)
	})
	return out
}

func (a *Adapter) Extract(html, pageURL string) (domain.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.RawListing{}, err
	}

	raw := domain.RawListing{
		URL:      pageURL,
		Currency: domain.EUR,
		Location: domain.UnknownLocation,
		Source:   domain.SourceMobileDe,
	}

	raw.Title = util.CleanText(doc.Find("h1").First().Text())
	raw.PriceText = util.CleanText(doc.Find(`span[data-testid="price"]`).First().Text())
	raw.Year = util.CleanText(doc.Find(`li[data-testid="first-registration"]`).First().Text())
	if loc := util.CleanText(doc.Find(`li[data-testid="seller-location"]`).First().Text()); loc != "" {
		raw.Location = util.NormalizeLocation(loc)
	}

	if raw.Title == "" && raw.PriceText == "" {
		return domain.RawListing{}, fmt.Errorf("%w: %s", types.ErrNoListing, pageURL)
	}
	return raw, nil
}
