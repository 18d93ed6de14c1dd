// Package otomoto extracts listings from otomoto.pl. The site is a Next.js
// app, so the embedded __NEXT_DATA__ JSON blob is the stable source and
// plain HTML anchors are the fallback.
package otomoto

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"carscout/internal/domain"
	"carscout/internal/identity"
	"carscout/internal/price"
	"carscout/internal/scrape/types"
	"carscout/internal/scrape/util"
)

const baseURL = "https://www.otomoto.pl"

// Amounts below this are mileage/engine-size noise, not car prices.
const minPlausiblePrice = 1000

var (
	latRe = regexp.MustCompile(`(?i)"latitude"\s*:\s*(-?[0-9.]+)`)
	lonRe = regexp.MustCompile(`(?i)"longitude"\s*:\s*(-?[0-9.]+)`)

	pricePLNRe = regexp.MustCompile(`(\d[\d\s\x{00a0}.,]{2,})`)
)

var (
	linkKeys  = map[string]bool{"url": true, "href": true, "canonicalUrl": true, "link": true}
	titleKeys = map[string]bool{"title": true, "name": true}
	priceKeys = map[string]bool{"price": true, "amount": true, "value": true}
)

// City first, coarser regions after; map walks are unordered so the
// priority has to be explicit.
var locationKeyOrder = []string{"city", "location", "region", "voivodeship"}

type Adapter struct {
	searchURL string
}

func New(searchURL string) *Adapter {
	return &Adapter{searchURL: searchURL}
}

func (a *Adapter) Name() string          { return "otomoto" }
func (a *Adapter) Source() domain.Source { return domain.SourceOtomoto }
func (a *Adapter) SearchURL() string     { return a.searchURL }

func (a *Adapter) ListingLinks(html string) []string {
	if data, ok := nextData(html); ok {
		if links := linksFromData(data); len(links) > 0 {
			return links
		}
	}
	return linksFromAnchors(html)
}

func linksFromData(data any) []string {
	var found []any
	walk(data, linkKeys, &found)

	seen := map[string]bool{}
	var out []string
	for _, v := range found {
		s, ok := v.(string)
		if !ok || !isOfferPath(s) {
			continue
		}
		if strings.HasPrefix(s, "/") {
			s = baseURL + s
		}
		canon := identity.Canonicalize(s)
		if seen[canon] {
			continue
		}
		seen[canon] = true
		out = append(out, canon)
	}
	return out
}

func linksFromAnchors(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !isOfferPath(href) {
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
		out = append(out, canon)
	})
	return out
}

func isOfferPath(s string) bool {
	return strings.Contains(s, "/oferta/") || strings.Contains(s, "/offer/")
}

func (a *Adapter) Extract(html, pageURL string) (domain.RawListing, error) {
	raw := domain.RawListing{
		URL:      pageURL,
		Currency: domain.PLN,
		Location: domain.UnknownLocation,
		Source:   domain.SourceOtomoto,
	}

	if data, ok := nextData(html); ok {
		raw.Title = dataTitle(data)
		raw.PriceNum = dataPrice(data)
		if loc := dataLocation(data); loc != "" {
			raw.Location = loc
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return domain.RawListing{}, err
	}

	body := doc.Find("body").Text()
	raw.Text = util.CleanText(body)
	if raw.Title == "" {
		raw.Title = util.CleanText(doc.Find("h1").First().Text())
	}
	if raw.PriceNum == nil {
		raw.PriceText = priceFromText(body)
	}
	raw.Geo = extractGeo(html)

	if raw.Title == "" && raw.PriceNum == nil && raw.PriceText == "" {
		return domain.RawListing{}, fmt.Errorf("%w: %s", types.ErrNoListing, pageURL)
	}
	return raw, nil
}

// nextData unwraps the __NEXT_DATA__ script payload.
func nextData(html string) (any, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, false
	}
	blob := doc.Find(`script#__NEXT_DATA__`).First().Text()
	if strings.TrimSpace(blob) == "" {
		return nil, false
	}
	var data any
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return nil, false
	}
	return data, true
}

// walk collects every value stored under one of the wanted keys, at any
// depth. The field the frontend uses moves between releases; collecting
// all candidates and filtering is sturdier than chasing one path.
func walk(v any, keys map[string]bool, out *[]any) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if keys[k] {
				*out = append(*out, child)
			}
			walk(child, keys, out)
		}
	case []any:
		for _, child := range t {
			walk(child, keys, out)
		}
	}
}

func dataTitle(data any) string {
	var found []any
	walk(data, titleKeys, &found)
	for _, v := range found {
		if s, ok := v.(string); ok && len(s) > 3 {
			return util.CleanText(s)
		}
	}
	return ""
}

func dataPrice(data any) *float64 {
	var found []any
	walk(data, priceKeys, &found)
	for _, v := range found {
		switch t := v.(type) {
		case float64:
			if t > minPlausiblePrice {
				p := t
				return &p
			}
		case string:
			if n, ok := price.ParseLocaleNumber(t); ok && n > minPlausiblePrice {
				return &n
			}
		}
	}
	return nil
}

func dataLocation(data any) string {
	var parts []string
	seen := map[string]bool{}
	for _, key := range locationKeyOrder {
		var found []any
		walk(data, map[string]bool{key: true}, &found)
		for _, v := range found {
			s, ok := v.(string)
			if !ok {
				continue
			}
			s = util.CleanText(s)
			if len(s) <= 2 || len(s) >= 60 || seen[strings.ToLower(s)] {
				continue
			}
			seen[strings.ToLower(s)] = true
			parts = append(parts, s)
			if len(parts) == 2 {
				return strings.Join(parts, ", ")
			}
		}
	}
	return strings.Join(parts, ", ")
}

// priceFromText scans visible text for the first plausible number next to
// a złoty marker.
func priceFromText(text string) string {
	for _, line := range strings.Split(text, "\n") {
		low := strings.ToLower(line)
		if !strings.Contains(low, "pln") && !strings.Contains(low, "zł") {
			continue
		}
		if m := pricePLNRe.FindStringSubmatch(line); m != nil {
			return util.CleanText(m[1])
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
