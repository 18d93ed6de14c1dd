package notify

import (
	"fmt"
	"math"
	"strings"

	"carscout/internal/domain"
)

// FormatMessage renders one offer the way the bot always has: flag and
// title, year when known, price in PLN with the approximate EUR value,
// verdict, location, open-in link.
func FormatMessage(o domain.Offer) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s 🚗 %s\n", o.Source.Flag(), o.Title)
	if o.Year != "" {
		fmt.Fprintf(&b, "📅 Rocznik: %s\n", o.Year)
	}
	fmt.Fprintf(&b, "💰 Cena: %s\n", formatPrice(o))
	fmt.Fprintf(&b, "🔎 Ocena: %s\n", o.Verdict.Label())
	fmt.Fprintf(&b, "📍 Lokalizacja: %s\n", o.Location)
	fmt.Fprintf(&b, "📱 Otwórz w %s:\n%s", o.Source.SiteLabel(), o.CanonicalURL)

	return b.String()
}

func formatPrice(o domain.Offer) string {
	if o.PricePLN == nil && o.PriceEUR == nil {
		return domain.UnknownLocation
	}
	var parts []string
	if o.PricePLN != nil {
		parts = append(parts, groupDigits(*o.PricePLN)+" PLN")
	}
	if o.PriceEUR != nil {
		s := groupDigits(*o.PriceEUR) + " EUR"
		if len(parts) > 0 {
			s = "(~" + s + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// groupDigits renders 46000 as "46 000", the Polish thousands convention.
func groupDigits(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}

	s := fmt.Sprintf("%d", n)
	var out []string
	for len(s) > 3 {
		out = append([]string{s[len(s)-3:]}, out...)
		s = s[:len(s)-3]
	}
	out = append([]string{s}, out...)

	joined := strings.Join(out, " ")
	if neg {
		return "-" + joined
	}
	return joined
}
