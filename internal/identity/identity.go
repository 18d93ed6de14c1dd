// Package identity derives stable identity keys for listings and tracks
// which keys have already triggered a notification across runs.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
)

// Path segments that introduce an individual ad on the sites we scrape.
// Ordered; the first hit wins.
var pathMarkers = []string{
	"/d/oferta/",
	"/oferta/",
	"/offer/",
	"/samochod/",
	"/lst/",
}

// Canonicalize strips the volatile parts of a listing URL: fragment, query
// string, trailing slash and the redundant ".html" suffix some sites append.
// Idempotent; malformed input comes back trimmed rather than erroring.
func Canonicalize(raw string) string {
	u := strings.TrimSpace(raw)
	if i := strings.IndexByte(u, '#'); i >= 0 {
		u = u[:i]
	}
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	for {
		t := strings.TrimSuffix(strings.TrimRight(u, "/"), ".html")
		if t == u {
			return u
		}
		u = t
	}
}

// PathSignature is the canonical URL from the site-specific listing-path
// marker onward. Dropping the host catches the same ad served from a
// different subdomain or mirror. Without a marker the full canonical URL is
// returned.
func PathSignature(raw string) string {
	u := Canonicalize(raw)
	for _, m := range pathMarkers {
		if i := strings.Index(u, m); i >= 0 {
			return u[i:]
		}
	}
	return u
}

// ContentSignature hashes what the ad says rather than where it lives:
// title, price rounded to a whole unit, and location. It is the fallback
// identity when a site redesign moves a listing to an unrelated URL, so
// the URL deliberately does not participate. Stable under case and
// whitespace noise; changes when the price or title meaningfully changes.
func ContentSignature(title string, price *float64, location string) string {
	p := ""
	if price != nil {
		p = strconv.Itoa(int(math.Round(*price)))
	}
	base := strings.Join([]string{
		squash(title),
		p,
		squash(location),
	}, "|")
	sum := sha256.Sum256([]byte(strings.ToLower(base)))
	return hex.EncodeToString(sum[:])[:20]
}

func squash(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.Join(strings.Fields(s), " ")
}

// Keys bundles the identity signals of one listing. Empty fields mean the
// signal was absent and are skipped for both lookup and insertion.
type Keys struct {
	ID           string
	CanonicalURL string
	PathSig      string
	ContentSig   string
}

// ForURL builds the two URL-derived keys only, for the pre-fetch
// already-sent check (cheap: no detail page needed).
func ForURL(raw string) Keys {
	return Keys{
		CanonicalURL: Canonicalize(raw),
		PathSig:      PathSignature(raw),
	}
}
