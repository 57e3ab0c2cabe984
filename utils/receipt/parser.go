// Package receipt parses POS receipt text into items and totals.
package receipt

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/Aashish23092/statement-extraction/utils"
	"github.com/shopspring/decimal"
)

const maxMerchantLen = 255

// maxContinuation caps how much of a wrapped item name line is kept.
const maxContinuation = 60

var (
	inlineSpace   = regexp.MustCompile(`[^\S\n]+`)
	commaDecimal  = regexp.MustCompile(`(\d),(\d{2})\b`)
	commaGrouping = regexp.MustCompile(`(\d),(\d{3})\b`)
	spacedPoint   = regexp.MustCompile(`(\d)\.\s+(\d{2})\b`)
	// "114 00 12" or "19 00UNP": a split decimal before a tax code or unit marker
	splitDecimal = regexp.MustCompile(`(?m)(^|[^\d.])(\d+) (\d{2})( ?(?:UNP|SAR|SR)\b| (?:\d{1,2}|[A-Z])$)`)

	itemLine    = regexp.MustCompile(`^(\d+)\s+(.+?)\s+(\d+\.\d{1,2})\s+(?:\d{1,2}|[A-Z])(?:\s|$)`)
	unitPrice   = regexp.MustCompile(`(?i)^@?\s*(\d+(?:\.\d{1,2})?)\s*(?:UNP|SAR|SR)\b`)
	totalsLine  = regexp.MustCompile(`(?i)\b(sub\s?total|payment|change|vat|net total|invoice total)[:\s]+(?:\(?\d+(?:\.\d+)?\s*%\)?[:\s]*)?(?:[a-z]{3}\s*)?(\d+(?:\.\d{1,2})?)`)
	endsDecimal = regexp.MustCompile(`\d+\.\d{2}$`)

	merchantExclude = regexp.MustCompile(`(?i)\d{1,2}[./-]\d{1,2}[./-]\d{2,4}|total|vat|tax|subtotal|cashier|invoice|receipt`)
	anyDecimal      = regexp.MustCompile(`\d+\.\d{2}`)
)

// Clean normalises receipt OCR text: digits folded, inline whitespace
// collapsed, comma decimals turned into points and split decimals rejoined.
func Clean(text string) string {
	text = utils.NormalizeDigitsAndSeparators(text)
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = inlineSpace.ReplaceAllString(text, " ")
	text = commaDecimal.ReplaceAllString(text, "$1.$2")
	text = commaGrouping.ReplaceAllString(text, "$1$2")
	text = spacedPoint.ReplaceAllString(text, "$1.$2")
	text = splitDecimal.ReplaceAllString(text, "${1}${2}.${3}${4}")
	return text
}

type item struct {
	quantity decimal.Decimal
	name     string
	unit     *decimal.Decimal
	total    *decimal.Decimal
}

// Parse reads items, totals, merchant and date/time from receipt text.
// confidence is carried through as the parse confidence.
func Parse(text string, confidence float64) dto.Receipt {
	cleaned := Clean(text)
	lines := nonEmptyLines(cleaned)

	var items []*item
	var current *item
	totals := make(map[string]decimal.Decimal)

	for _, line := range lines {
		if m := itemLine.FindStringSubmatch(line); m != nil {
			current = &item{
				quantity: decimal.RequireFromString(m[1]),
				name:     strings.TrimSpace(m[2]),
				total:    amountPtr(m[3]),
			}
			items = append(items, current)
			continue
		}
		if m := unitPrice.FindStringSubmatch(line); m != nil && current != nil {
			current.unit = amountPtr(m[1])
			continue
		}
		if m := totalsLine.FindStringSubmatch(line); m != nil {
			if v, ok := utils.ParseAmount(m[2]); ok {
				totals[totalsKey(m[1])] = v
			}
			// text after a totals line is footer, not a wrapped item name
			current = nil
			continue
		}
		if current != nil && hasLetter(line) && !endsDecimal.MatchString(line) {
			current.name = strings.TrimSpace(current.name + " " + truncate(line, maxContinuation))
		}
	}

	sum := decimal.Zero
	for _, it := range items {
		// a missing or zero item total is rebuilt from quantity and unit price
		if (it.total == nil || it.total.IsZero()) && it.unit != nil {
			it.total = dto.DecimalPtr(it.quantity.Mul(*it.unit).Round(2))
		}
		if it.total != nil {
			sum = sum.Add(*it.total)
		}
	}
	if _, ok := totals["invoice_total"]; !ok && len(items) > 0 {
		totals["invoice_total"] = sum
	}

	r := dto.Receipt{
		MerchantName:    MerchantName(lines),
		InvoiceDatetime: InvoiceDatetime(lines),
		Subtotal:        firstNonZero(totals, "subtotal", "net_total"),
		TaxAmount:       firstNonZero(totals, "vat"),
		RawText:         text,
		ParseConfidence: confidence,
	}
	r.Total = firstNonZero(totals, "invoice_total", "payment")
	if r.Total == nil {
		r.Total = r.Subtotal
	}
	for _, it := range items {
		r.Lines = append(r.Lines, dto.ReceiptLine{
			Quantity:    it.quantity,
			Description: it.name,
			UnitPrice:   it.unit,
			LineTotal:   it.total,
		})
	}
	return r
}

func totalsKey(label string) string {
	key := strings.Join(strings.Fields(strings.ToLower(label)), "_")
	if strings.HasPrefix(key, "sub") {
		return "subtotal"
	}
	return key
}

func firstNonZero(totals map[string]decimal.Decimal, keys ...string) *decimal.Decimal {
	for _, k := range keys {
		if v, ok := totals[k]; ok && !v.IsZero() {
			return dto.DecimalPtr(v)
		}
	}
	return nil
}

// MerchantName returns the first of the leading five lines that looks like a
// name rather than a date, a label or an amount. It falls back to the first
// line.
func MerchantName(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	for i, line := range lines {
		if i >= 5 {
			break
		}
		if merchantExclude.MatchString(line) || anyDecimal.MatchString(line) {
			continue
		}
		return truncate(line, maxMerchantLen)
	}
	return lines[0]
}

var (
	namedMonthStamp = regexp.MustCompile(`(?i)(\d{1,2})\s+([A-Za-z]{3})'?\s*(\d{2,4})\s+(\d{1,2}:\d{2}(?::\d{2})?)\s*(AM|PM)?`)
	isoStamp        = regexp.MustCompile(`(?i)(\d{4}[/-]\d{1,2}[/-]\d{1,2})[ T]*(\d{1,2}:\d{2}(?::\d{2})?)?\s*(AM|PM)?`)
	dmyStamp        = regexp.MustCompile(`(?i)(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})[ T]*(\d{1,2}:\d{2}(?::\d{2})?)?\s*(AM|PM)?`)
)

const datetimeScanLines = 30

// InvoiceDatetime scans the first lines for a named-month stamp, then an ISO
// date, then a day/month/year date, each with an optional time.
func InvoiceDatetime(lines []string) *time.Time {
	for i, line := range lines {
		if i >= datetimeScanLines {
			break
		}
		if m := namedMonthStamp.FindStringSubmatch(line); m != nil {
			year := m[3]
			if len(year) == 2 {
				year = "20" + year
			}
			if d, err := time.Parse("2 Jan 2006", m[1]+" "+m[2]+" "+year); err == nil {
				if t, ok := withClock(d, m[4], m[5]); ok {
					return &t
				}
			}
		}
		for _, re := range []*regexp.Regexp{isoStamp, dmyStamp} {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			date, ok := utils.ParseDate(m[1])
			if !ok {
				continue
			}
			if t, ok := withClock(date.In(time.UTC), m[2], m[3]); ok {
				return &t
			}
		}
	}
	return nil
}

// withClock sets an optional H:MM[:SS] clock on day, converting 12-hour times
// with their meridiem.
func withClock(day time.Time, clock, meridiem string) (time.Time, bool) {
	var h, m, s int
	if clock != "" {
		parts := strings.Split(clock, ":")
		var err error
		if h, err = strconv.Atoi(parts[0]); err != nil {
			return time.Time{}, false
		}
		if m, err = strconv.Atoi(parts[1]); err != nil {
			return time.Time{}, false
		}
		if len(parts) == 3 {
			if s, err = strconv.Atoi(parts[2]); err != nil {
				return time.Time{}, false
			}
		}
	}
	switch strings.ToUpper(meridiem) {
	case "PM":
		if h < 12 {
			h += 12
		}
	case "AM":
		if h == 12 {
			h = 0
		}
	}
	if h > 23 || m > 59 || s > 59 {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, s, 0, time.UTC), true
}

func nonEmptyLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func amountPtr(s string) *decimal.Decimal {
	if d, ok := utils.ParseAmount(s); ok {
		return dto.DecimalPtr(d)
	}
	return nil
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
