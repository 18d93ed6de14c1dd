package domain

// Source identifies which site adapter produced a listing.
type Source string

const (
	SourceOLX       Source = "olx"
	SourceOtomoto   Source = "otomoto"
	SourceAutoScout Source = "autoscout24"
	SourceMobileDe  Source = "mobilede"
)

// Flag returns the emoji used to prefix notification messages.
func (s Source) Flag() string {
	switch s {
	case SourceAutoScout:
		return "🇪🇺"
	case SourceMobileDe:
		return "🇩🇪"
	default:
		return "🇵🇱"
	}
}

// SiteLabel is the human name used in "open in" links.
func (s Source) SiteLabel() string {
	switch s {
	case SourceOLX:
		return "OLX"
	case SourceOtomoto:
		return "OTOMOTO"
	case SourceAutoScout:
		return "AutoScout24"
	case SourceMobileDe:
		return "Mobile.de"
	default:
		return string(s)
	}
}

// Currency is one of the two currencies the scout deals in. Extending
// beyond EUR/PLN needs a rate matrix instead of the single EUR→PLN scalar.
type Currency string

const (
	EUR             Currency = "EUR"
	PLN             Currency = "PLN"
	CurrencyUnknown Currency = ""
)

type Geo struct {
	Latitude  float64
	Longitude float64
}

// UnknownLocation is the sentinel for a location the adapter could not resolve.
const UnknownLocation = "—"

// RawListing is what a site adapter extracts from one detail page. Fields
// the page did not yield stay zero/nil; the pipeline degrades instead of
// dropping (except Title+price both missing, which drops the listing).
type RawListing struct {
	Title     string
	PriceText string   // price as found in page text, "" when absent
	PriceNum  *float64 // price already numeric in embedded page JSON
	Currency  Currency
	Location  string
	Year      string // first registration, "" when the site has none
	URL       string // as discovered, pre-canonicalization
	Geo       *Geo
	NumericID string // site-native ad id when the page exposes one
	Source    Source

	// Text is the page's visible text when the adapter had it handy; the
	// risk classifier scans it in addition to the title.
	Text string
}

// Verdict is the evaluator's single classification of an offer.
type Verdict string

const (
	VerdictRisk         Verdict = "RISK"
	VerdictUnknownPrice Verdict = "UNKNOWN_PRICE"
	VerdictBargain      Verdict = "BARGAIN"
	VerdictReview       Verdict = "REVIEW"
	VerdictOverBudget   Verdict = "OVER_BUDGET"
)

// Label is the message-facing form of a verdict.
func (v Verdict) Label() string {
	switch v {
	case VerdictRisk:
		return "⚠️ RYZYKO"
	case VerdictUnknownPrice:
		return "❓ NIEZNANA CENA"
	case VerdictBargain:
		return "✅ OKAZJA"
	case VerdictReview:
		return "ℹ️ DO SPRAWDZENIA"
	case VerdictOverBudget:
		return "❌ POZA BUDŻETEM"
	default:
		return string(v)
	}
}

// Offer is a RawListing after identity derivation, price normalization and
// evaluation. Immutable once built.
type Offer struct {
	RawListing

	CanonicalURL  string
	PathSignature string
	ContentSig    string

	PricePLN *float64
	PriceEUR *float64

	Risky   bool
	Verdict Verdict
}
