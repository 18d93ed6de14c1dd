// Package eval collapses price, budget and risk into one verdict per offer.
package eval

import (
	"carscout/internal/domain"
	"carscout/internal/risk"
)

// BargainFraction of the ceiling at or under which an offer is a bargain.
const BargainFraction = 0.9

// Evaluator holds the per-run evaluation inputs. Ceiling and the price
// passed to Evaluate must be in the same currency; the engine converts
// before calling so boundary comparisons are exact.
type Evaluator struct {
	Ceiling float64
	Risk    *risk.Classifier
}

// Evaluate returns exactly one verdict. Risk is checked first and
// overrides everything, including a bargain price; an absent price is
// UnknownPrice; the three price bands are mutually exclusive with the
// boundaries closed on the lower side (price == ceiling is Review,
// price == 90% of ceiling is Bargain).
func (e Evaluator) Evaluate(text string, price *float64) domain.Verdict {
	if e.Risk.Risky(text) {
		return domain.VerdictRisk
	}
	if price == nil {
		return domain.VerdictUnknownPrice
	}
	switch p := *price; {
	case p <= BargainFraction*e.Ceiling:
		return domain.VerdictBargain
	case p <= e.Ceiling:
		return domain.VerdictReview
	default:
		return domain.VerdictOverBudget
	}
}
