// Package risk flags listings whose text suggests damage, salvage, missing
// paperwork or track abuse.
package risk

import (
	"regexp"
	"strings"
)

// DefaultKeywords is the blacklist the scout ships with. Substring stems,
// lowercase; inner spaces match any run of whitespace.
var DefaultKeywords = []string{
	"uszkodz",
	"rozbit",
	"wypadk",
	"kolizj",
	"na części",
	"dawca",
	"niesprawn",
	"do remontu",
	"do naprawy",
	"korozj",
	"rdza",
	"zajechan",
	"katowan",
	"torow",
	"panewk",
	"swap",
	"projekt",
	"drift",
	"bez dokument",
	"brak dokument",
}

// DefaultNegations are short local spans that negate a risk keyword and
// would otherwise trigger it ("bezwypadkowy" contains "wypadk"). Removed
// from the text before matching. Adjacent-words only, no attempt at real
// language understanding.
var DefaultNegations = []string{
	`bezwypadkow\w*`,
	`bez wypadk\w*`,
	`bez rdzy`,
	`bez korozji`,
	`bez śladów korozji`,
	`brak rdzy`,
	`brak korozji`,
	`nieuszkodzon\w*`,
	`nie uszkodzon\w*`,
	`no rust`,
	`no damage`,
	`without damage`,
	`accident[- ]free`,
}

// Classifier is a pure keyword matcher; safe for concurrent use once built.
type Classifier struct {
	keywords  []*regexp.Regexp
	negations []*regexp.Regexp
}

// New compiles keyword stems and negation spans. Inner spaces in either
// list are widened to \s+ so "na  części" across a line break still hits.
// Patterns that fail to compile are dropped rather than failing startup.
func New(keywords, negations []string) *Classifier {
	c := &Classifier{}
	for _, k := range keywords {
		if re, err := compileLoose(k); err == nil {
			c.keywords = append(c.keywords, re)
		}
	}
	for _, n := range negations {
		if re, err := compileLoose(n); err == nil {
			c.negations = append(c.negations, re)
		}
	}
	return c
}

// Default builds a classifier from the shipped lists.
func Default() *Classifier {
	return New(DefaultKeywords, DefaultNegations)
}

func compileLoose(pattern string) (*regexp.Regexp, error) {
	p := strings.Join(strings.Fields(pattern), `\s+`)
	return regexp.Compile(`(?i)` + p)
}

// Risky reports whether the text trips any risk keyword after negation
// spans have been cut out. Total: never fails, empty text is never risky.
func (c *Classifier) Risky(text string) bool {
	if text == "" {
		return false
	}
	t := text
	for _, re := range c.negations {
		t = re.ReplaceAllString(t, " ")
	}
	for _, re := range c.keywords {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}
