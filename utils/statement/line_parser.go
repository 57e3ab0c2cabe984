// Package statement turns bank statement text and tables into candidate
// transactions.
package statement

import (
	"regexp"
	"strings"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/Aashish23092/statement-extraction/utils"
	"github.com/shopspring/decimal"
)

const datePattern = `\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}|\d{4}[/-]\d{1,2}[/-]\d{1,2}|\d{1,2}[\s-][A-Za-z]{3,9}[\s-]\d{2,4}|[A-Za-z]{3,9}\s+\d{1,2},\s*\d{2,4}`

const amountPattern = `-?\d[\d,]*[.,]\d{2}`

var (
	headerNoise = regexp.MustCompile(`(?i)^(?:(?:date|transaction|description|narration|debit|credit|amount|balance|page\s+\d+|statement|account|opening balance|closing balance)\b|(?:التاريخ|تاريخ|المعاملة|البيان|الوصف|مدين|دائن|المبلغ|الرصيد)(?:\s|$))`)
	separatorLine = regexp.MustCompile(`^[-=_]{4,}$`)
	dateStart     = regexp.MustCompile(`^(?:` + datePattern + `)\b`)

	// trailing amounts directly after the description
	singleDateTight = regexp.MustCompile(`^(` + datePattern + `)\s+(.+?)\s+(` + amountPattern + `)(?:\s+(` + amountPattern + `))?\s+(` + amountPattern + `)$`)
	// first and last amount with anything in between
	singleDateLoose = regexp.MustCompile(`^(` + datePattern + `)\s+(.+?)\s+(` + amountPattern + `)\s.*?(` + amountPattern + `)$`)

	dualDate      = regexp.MustCompile(`^(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\s+(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`)
	leadingDate   = regexp.MustCompile(`^(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`)
	decimalToken  = regexp.MustCompile(`[-+]?\d{1,3}(?:,\d{3})*\.\d{2}|[-+]?\d+\.\d{2}`)
	trailingStamp = regexp.MustCompile(`(?i)(\d{1,2}[/-]\d{1,2}[/-]\s*\d{2,4}\s+\d{1,2}:\d{2}:\d{2}\s*(?:AM|PM)?)\s*$`)
)

// debitWords in a description mark its single amount as money going out.
var debitWords = []string{"withdrawal", "debit", "charge", "fee", "atm", "wdl", "سحب", "رسوم", "مدين"}

// ParseLines reconstructs transactions from statement text. ocrConfidence is
// on a 0 to 100 scale and becomes each record's confidence score.
func ParseLines(text string, ocrConfidence float64) []dto.Transaction {
	confidence := clamp01(ocrConfidence / 100)

	var out []dto.Transaction
	for _, buf := range transactionBuffers(text) {
		if t, ok := parseSingleDate(buf); ok {
			t.ConfidenceScore = confidence
			out = append(out, t)
			continue
		}
		if t, ok := parseDualDate(buf); ok {
			t.ConfidenceScore = confidence
			out = append(out, t)
		}
	}
	return out
}

// transactionBuffers drops noise, then groups each date-prefixed line with
// the continuation lines that follow it. Lines before the first date are
// discarded.
func transactionBuffers(text string) []string {
	var buffers []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			buffers = append(buffers, strings.Join(current, " "))
			current = nil
		}
	}

	for _, raw := range strings.Split(utils.NormalizeDigitsAndSeparators(text), "\n") {
		line := utils.CollapseWhitespace(raw)
		if line == "" || separatorLine.MatchString(line) || headerNoise.MatchString(line) {
			continue
		}
		if dateStart.MatchString(line) {
			flush()
			current = []string{line}
			continue
		}
		if current != nil {
			current = append(current, line)
		}
	}
	flush()
	return buffers
}

// parseSingleDate handles a leading date, a description and two or three
// trailing amounts. Lines whose description starts with a second date belong
// to the dual-date form.
func parseSingleDate(line string) (dto.Transaction, bool) {
	m := singleDateTight.FindStringSubmatch(line)
	var dateText, desc string
	var amounts []string
	if m != nil {
		dateText, desc = m[1], m[2]
		amounts = nonEmpty(m[3], m[4], m[5])
	} else if m = singleDateLoose.FindStringSubmatch(line); m != nil {
		dateText, desc = m[1], m[2]
		amounts = []string{m[3], m[4]}
	} else {
		return dto.Transaction{}, false
	}

	if dateStart.MatchString(desc) {
		return dto.Transaction{}, false
	}
	date, ok := utils.ParseDate(dateText)
	if !ok {
		return dto.Transaction{}, false
	}
	amount, ok := utils.ParseAmount(amounts[0])
	if !ok {
		return dto.Transaction{}, false
	}

	t := dto.Transaction{
		TransactionDate: date,
		Description:     strings.TrimSpace(desc),
		RawDescription:  line,
	}
	if amount.IsNegative() || isDebitDescription(desc) {
		t.DebitAmount = dto.DecimalPtr(amount.Abs())
	} else {
		t.CreditAmount = dto.DecimalPtr(amount)
	}
	if bal, ok := utils.ParseAmount(amounts[len(amounts)-1]); ok {
		t.Balance = dto.DecimalPtr(bal)
	}
	return t, true
}

// parseDualDate handles lines that print a secondary and a primary date
// before the description. The last three decimal tokens are read as debit,
// credit and balance by position.
func parseDualDate(line string) (dto.Transaction, bool) {
	var dateText string
	var descStart int
	if m := dualDate.FindStringSubmatchIndex(line); m != nil {
		dateText, descStart = line[m[4]:m[5]], m[1]
	} else if m := leadingDate.FindStringSubmatchIndex(line); m != nil {
		dateText, descStart = line[m[2]:m[3]], m[1]
	} else {
		return dto.Transaction{}, false
	}

	date, ok := utils.ParseDate(dateText)
	if !ok {
		return dto.Transaction{}, false
	}

	matches := decimalToken.FindAllStringIndex(line[descStart:], -1)
	if len(matches) < 3 {
		return dto.Transaction{}, false
	}
	last := matches[len(matches)-3:]
	token := func(i int) string {
		return line[descStart+last[i][0] : descStart+last[i][1]]
	}

	desc := cleanDualDescription(line[descStart : descStart+last[0][0]])
	if desc == "" {
		desc = cleanDualDescription(line[descStart+last[2][1]:])
	}

	t := dto.Transaction{
		TransactionDate: date,
		Description:     desc,
		RawDescription:  line,
	}
	t.DebitAmount = positive(token(0))
	t.CreditAmount = positive(token(1))
	if b, ok := utils.ParseAmount(token(2)); ok {
		t.Balance = dto.DecimalPtr(b)
	}
	return t, true
}

func cleanDualDescription(s string) string {
	return utils.CollapseWhitespace(trailingStamp.ReplaceAllString(s, ""))
}

func isDebitDescription(desc string) bool {
	lower := strings.ToLower(desc)
	for _, w := range debitWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// positive returns a pointer to the amount in s when it parses above zero.
func positive(s string) *decimal.Decimal {
	if d, ok := utils.ParseAmount(s); ok && d.IsPositive() {
		return dto.DecimalPtr(d)
	}
	return nil
}
