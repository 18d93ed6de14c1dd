// Package price turns locale-formatted price text into numbers and
// normalizes amounts between the two currencies the scout supports.
package price

import (
	"regexp"
	"strconv"
	"strings"
)

// First digit-bearing run, optionally signed. Currency symbols embedded
// mid-number split the run; the leading part wins.
var numRun = regexp.MustCompile(`-?\d[\d.,]*`)

var (
	decimalComma = regexp.MustCompile(`,\d{1,2}$`)
	decimalDot   = regexp.MustCompile(`\.\d{1,2}$`)
)

// ParseLocaleNumber extracts a numeric amount from price text in whatever
// locale format the site used: "46 000 zł", "46.000,00", "11,500.00 €",
// "46000". Whitespace (incl. non-breaking) and currency tokens are noise.
// When both separators appear the one appearing last is the decimal
// separator; a lone separator is decimal only when followed by 1-2 digits.
// Returns false instead of failing on input with no usable digits.
func ParseLocaleNumber(text string) (float64, bool) {
	t := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, text)

	m := numRun.FindString(t)
	if m == "" {
		return 0, false
	}
	// A run can end in a bare separator ("46." from "46. rok"); trim it.
	m = strings.TrimRight(m, ".,")
	if !strings.ContainsAny(m, "0123456789") {
		return 0, false
	}

	dot := strings.LastIndexByte(m, '.')
	comma := strings.LastIndexByte(m, ',')

	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			m = rejoin(m, comma)
		} else {
			m = rejoin(m, dot)
		}
	case comma >= 0:
		if decimalComma.MatchString(m) {
			m = rejoin(m, comma)
		} else {
			m = stripSeps(m)
		}
	case dot >= 0:
		if decimalDot.MatchString(m) {
			m = rejoin(m, dot)
		} else {
			m = stripSeps(m)
		}
	}

	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// rejoin treats m[at] as the decimal separator: everything before it loses
// its grouping separators, everything after it is the fraction.
func rejoin(m string, at int) string {
	return stripSeps(m[:at]) + "." + stripSeps(m[at+1:])
}

func stripSeps(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return -1
		}
		return r
	}, s)
}
