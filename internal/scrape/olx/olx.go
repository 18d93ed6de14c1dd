// Package olx extracts Nissan listings from olx.pl search and ad pages.
package olx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"carscout/internal/domain"
	"carscout/internal/identity"
	"carscout/internal/scrape/types"
	"carscout/internal/scrape/util"
)

const baseURL = "https://www.olx.pl"

var (
	priceRe   = regexp.MustCompile(`(?i)(\d[\d\s\x{00a0}.,]{2,})\s*(zł|pln)`)
	offerIDRe = regexp.MustCompile(`(?i)"offerId"\s*:\s*"?(\d+)`)
	latRe     = regexp.MustCompile(`"latitude"\s*:\s*(-?[0-9.]+)`)
	lonRe     = regexp.MustCompile(`"longitude"\s*:\s*(-?[0-9.]+)`)
)

// Refresh-stamp words that mark the "<city> - <when>" line carrying the
// listing's location.
var refreshMarkers = []string{"dzisiaj", "wczoraj", "odświeżono"}

type Adapter struct {
	searchURL string
}

func New(searchURL string) *Adapter {
	return &Adapter{searchURL: searchURL}
}

func (a *Adapter) Name() string          { return "olx" }
func (a *Adapter) Source() domain.Source { return domain.SourceOLX }
func (a *Adapter) SearchURL() string     { return a.searchURL }

func (a *Adapter) ListingLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	doc.Find(`a[href*="/d/oferta/"]`).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		u := href
		if strings.HasPrefix(u, "/") {
			u = baseURL + u
		}
		canon := identity.Canonicalize(u)
		if seen[canon] {
			return
		}
		seen[canon] = true
		out = append(out, u)
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
		Currency: domain.PLN,
		Location: domain.UnknownLocation,
		Source:   domain.SourceOLX,
	}

	raw.Title = util.CleanText(doc.Find("h1").First().Text())

	text := doc.Find("body").Text()
	raw.Text = util.CleanText(text)
	if m := priceRe.FindStringSubmatch(text); m != nil {
		raw.PriceText = util.CleanText(m[1])
	}
	if loc := locationLine(text); loc != "" {
		raw.Location = util.NormalizeLocation(loc)
	}

	if m := offerIDRe.FindStringSubmatch(html); m != nil {
		raw.NumericID = m[1]
	}
	raw.Geo = extractGeo(html)

	if raw.Title == "" && raw.PriceText == "" {
		return domain.RawListing{}, fmt.Errorf("%w: %s", types.ErrNoListing, pageURL)
	}
	return raw, nil
}

// locationLine finds the "<city> - dzisiaj o 12:30" style line OLX renders
// under the ad and returns the part before the refresh stamp.
func locationLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, " - ") {
			continue
		}
		low := strings.ToLower(line)
		for _, m := range refreshMarkers {
			if strings.Contains(low, m) {
				return strings.SplitN(line, " - ", 2)[0]
			}
		}
	}
	return ""
}

func extractGeo(html string) *domain.Geo {
	lat := latRe.FindStringSubmatch(html)
	lon := lonRe.FindStringSubmatch(html)
	if lat == nil || lon == nil {
		return nil
	}
	la, err1 := strconv.ParseFloat(lat[1], 64)
	lo, err2 := strconv.ParseFloat(lon[1], 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return &domain.Geo{Latitude: la, Longitude: lo}
}
