// Package autoscout extracts listings from autoscout24.com (EUR market).
package autoscout

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"carscout/internal/domain"
	"carscout/internal/identity"
	"carscout/internal/scrape/types"
	"carscout/internal/scrape/util"
)

const baseURL = "https://www.autoscout24.com"

type Adapter struct {
	searchURL string
}

func New(searchURL string) *Adapter {
	return &Adapter{searchURL: searchURL}
}

func (a *Adapter) Name() string          { return "autoscout24" }
func (a *Adapter) Source() domain.Source { return domain.SourceAutoScout }
func (a *Adapter) SearchURL() string     { return a.searchURL }

func (a *Adapter) ListingLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	doc.Find(`a[data-test="listing-title"]`).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		if strings.HasPrefix(href, "/") {
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
		Source:   domain.SourceAutoScout,
	}

	raw.Title = util.CleanText(doc.Find("h1").First().Text())
	raw.PriceText = util.CleanText(doc.Find(`[data-test="price"]`).First().Text())
	raw.Year = util.CleanText(doc.Find(`[data-test="first-registration"]`).First().Text())
	if loc := util.CleanText(doc.Find(`[data-test="seller-location"]`).First().Text()); loc != "" {
		raw.Location = util.NormalizeLocation(loc)
	}

	if raw.Title == "" && raw.PriceText == "" {
		return domain.RawListing{}, fmt.Errorf("%w: %s", types.ErrNoListing, pageURL)
	}
	return raw, nil
}
