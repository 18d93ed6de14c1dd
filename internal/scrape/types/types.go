package types

import (
	"errors"

	"carscout/internal/domain"
)

var (
	// ErrUnavailable marks a transient fetch failure (timeout, non-2xx,
	// network error). The affected listing or adapter is skipped and
	// counted, never propagated as fatal.
	ErrUnavailable = errors.New("page unavailable")

	// ErrNoListing means the page yielded no usable listing at all
	// (neither a title nor a price). Such listings are dropped before
	// evaluation; partial pages degrade to sentinel values instead.
	ErrNoListing = errors.New("no usable listing data")
)

// Adapter is a site's fetch-free extraction capability: given raw page
// text it produces candidate detail URLs or one raw listing tuple. The
// core never sees a specific site's markup.
type Adapter interface {
	Name() string
	Source() domain.Source

	// SearchURL is the configured listing/search page for the target car.
	SearchURL() string

	// ListingLinks extracts candidate detail-page URLs from a search
	// page, absolutized and deduplicated, in page order. One pass per
	// run; the engine consumes at most its configured cap.
	ListingLinks(html string) []string

	// Extract produces the raw tuple from a detail page. Missing fields
	// come back as sentinels (nil price, "—" location); ErrNoListing only
	// when nothing usable was found.
	Extract(html, pageURL string) (domain.RawListing, error)
}
