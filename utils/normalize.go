package utils

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const tatweel = 'ـ'

// foldRune maps Arabic-Indic digits, Arabic separators and dash variants to
// their ASCII forms.
func foldRune(r rune) rune {
	switch {
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	}
	switch r {
	case '٫':
		return '.'
	case '٬', '،':
		return ','
	case '–', '—', '−':
		return '-'
	}
	return r
}

func isStrippable(r rune) bool {
	return r == tatweel || unicode.Is(unicode.Bidi_Control, r)
}

// NormalizeDigitsAndSeparators folds Arabic-Indic digits and separators to
// ASCII, unifies dashes and drops bidi control marks and tatweel. Applying it
// twice gives the same result as applying it once.
func NormalizeDigitsAndSeparators(text string) string {
	if text == "" {
		return text
	}
	t := transform.Chain(runes.Remove(runes.Predicate(isStrippable)), runes.Map(foldRune))
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}

var amountStrip = regexp.MustCompile(`[^\d.,-]`)

func isNullLiteral(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "none", "null":
		return true
	}
	return false
}

// ParseAmount reads a monetary value, deciding whether commas are thousands or
// decimal separators. It never fails loudly: anything it cannot read is
// reported as not ok.
func ParseAmount(text string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(text)
	if isNullLiteral(s) {
		return decimal.Decimal{}, false
	}
	s = amountStrip.ReplaceAllString(NormalizeDigitsAndSeparators(s), "")
	if s == "" {
		return decimal.Decimal{}, false
	}

	switch {
	case strings.Contains(s, ".") && strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1 && len(s)-strings.Index(s, ",")-1 == 2:
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
	"2-1-06",
	"2.1.06",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"1-2-2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-Jan-2006",
	"2-Jan-06",
	"2 Jan 06",
}

// ParseDate reads a calendar date in any of the supported statement layouts.
func ParseDate(text string) (civil.Date, bool) {
	s := strings.TrimSpace(text)
	if isNullLiteral(s) {
		return civil.Date{}, false
	}
	s = NormalizeDigitsAndSeparators(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), true
		}
	}
	return civil.Date{}, false
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CollapseWhitespace replaces runs of whitespace with one space and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
