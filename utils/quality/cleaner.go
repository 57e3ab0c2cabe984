// Package quality validates candidate transactions and flags near duplicates.
package quality

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/shopspring/decimal"
)

const (
	ErrDateRequired        = "Transaction date is required"
	ErrDescriptionRequired = "Description is required"
	ErrAmountRequired      = "Either debit or credit amount is required"
	ErrBothAmounts         = "Transaction cannot have both debit and credit amounts"
	ErrDebitNotPositive    = "Debit amount must be positive"
	ErrCreditNotPositive   = "Credit amount must be positive"
)

// DuplicateThreshold is the description similarity above which two records
// with equal date and amounts are considered the same transaction.
const DuplicateThreshold = 0.8

var (
	controlChars = regexp.MustCompile(`[\r\n\t]`)
	spaceRun     = regexp.MustCompile(`\s+`)
	digitsOnly   = regexp.MustCompile(`^[\d.,/#-]+$`)
)

// CleanDescription turns control characters into spaces, collapses whitespace
// and trims.
func CleanDescription(text string) string {
	text = controlChars.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}

// Validate reports every rule the record breaks, not just the first.
func Validate(t dto.Transaction) (bool, []string) {
	var errs []string

	if t.TransactionDate.IsZero() {
		errs = append(errs, ErrDateRequired)
	}
	if CleanDescription(t.Description) == "" {
		errs = append(errs, ErrDescriptionRequired)
	}
	if t.DebitAmount == nil && t.CreditAmount == nil {
		errs = append(errs, ErrAmountRequired)
	}
	if t.DebitAmount != nil && t.CreditAmount != nil {
		errs = append(errs, ErrBothAmounts)
	}
	if t.DebitAmount != nil && !t.DebitAmount.IsPositive() {
		errs = append(errs, ErrDebitNotPositive)
	}
	if t.CreditAmount != nil && !t.CreditAmount.IsPositive() {
		errs = append(errs, ErrCreditNotPositive)
	}

	return len(errs) == 0, errs
}

// DetectDuplicates returns the sorted indices of every record that belongs to
// at least one duplicate pair. It does not pick a survivor.
func DetectDuplicates(records []dto.Transaction) []int {
	flagged := make(map[int]struct{})
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if IsDuplicate(records[i], records[j]) {
				flagged[i] = struct{}{}
				flagged[j] = struct{}{}
			}
		}
	}

	out := make([]int, 0, len(flagged))
	for i := range flagged {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// IsDuplicate compares date, debit and credit exactly and descriptions by
// word-set Jaccard similarity.
func IsDuplicate(a, b dto.Transaction) bool {
	if a.TransactionDate != b.TransactionDate {
		return false
	}
	if !sameAmount(a.DebitAmount, b.DebitAmount) || !sameAmount(a.CreditAmount, b.CreditAmount) {
		return false
	}
	return DescriptionSimilarity(a.Description, b.Description) > DuplicateThreshold
}

func sameAmount(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// DescriptionSimilarity is the Jaccard similarity of the lowercase word sets
// of two descriptions. Purely numeric tokens (branch numbers, references) are
// ignored unless that would leave either side empty. An empty description is
// similar to nothing.
func DescriptionSimilarity(a, b string) float64 {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0
	}
	wa, wb := wordSet(a, true), wordSet(b, true)
	if len(wa) == 0 || len(wb) == 0 {
		wa, wb = wordSet(a, false), wordSet(b, false)
	}
	return Jaccard(wa, wb)
}

func wordSet(s string, skipNumeric bool) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if skipNumeric && digitsOnly.MatchString(w) {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// Jaccard is |a ∩ b| / |a ∪ b|. Two empty sets are identical.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
