// Package columns maps statement table headers to column roles.
package columns

import (
	"strings"
	"unicode"

	"github.com/Aashish23092/statement-extraction/utils"
)

type Role string

const (
	RoleUnknown     Role = ""
	RoleDate        Role = "date"
	RoleDescription Role = "description"
	RoleDebit       Role = "debit"
	RoleCredit      Role = "credit"
	RoleAmount      Role = "amount"
	RoleBalance     Role = "balance"
)

// synonyms is checked in order, so a phrase listed under two roles resolves
// to the earlier one.
var synonyms = []struct {
	role     Role
	keywords []string
}{
	{RoleDate, []string{"date", "transaction date", "value date", "posting date", "txn date", "التاريخ", "تاريخ"}},
	{RoleDescription, []string{"description", "narration", "particulars", "details", "transaction details", "البيان", "الوصف"}},
	{RoleDebit, []string{"debit", "withdrawal", "dr", "debit amount", "مدين"}},
	{RoleCredit, []string{"credit", "deposit", "cr", "credit amount", "دائن"}},
	{RoleAmount, []string{"amount", "transaction amount", "المبلغ"}},
	{RoleBalance, []string{"balance", "closing balance", "running balance", "الرصيد"}},
}

// minPrefixLen is the shortest keyword that also matches as a word prefix
// ("withdrawals", "balance(sar").
const minPrefixLen = 4

// lookup resolves a normalized phrase to a role. Single words may match a
// keyword as a prefix.
func lookup(phrase string, single bool) Role {
	for _, s := range synonyms {
		for _, kw := range s.keywords {
			if phrase == kw {
				return s.role
			}
			if single && len(kw) >= minPrefixLen && !strings.Contains(kw, " ") && strings.HasPrefix(phrase, kw) {
				return s.role
			}
		}
	}
	return RoleUnknown
}

// Tokenize lowercases a header cell and splits it into words stripped of
// surrounding punctuation.
func Tokenize(text string) []string {
	var out []string
	for _, f := range strings.Fields(strings.ToLower(utils.NormalizeDigitsAndSeparators(text))) {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// matchAt tries a 3, 2 then 1 word window at tokens[i:].
func matchAt(tokens []string, i int) (Role, int) {
	for n := 3; n >= 1; n-- {
		if i+n > len(tokens) {
			continue
		}
		if role := lookup(strings.Join(tokens[i:i+n], " "), n == 1); role != RoleUnknown {
			return role, n
		}
	}
	return RoleUnknown, 0
}

// ClassifyTokens scans header tokens left to right, greedily taking the
// longest keyword window at each position. A role is assigned at most once;
// tokens that match nothing are skipped.
func ClassifyTokens(tokens []string) []Role {
	used := make(map[Role]bool)
	var roles []Role
	for i := 0; i < len(tokens); {
		role, n := matchAt(tokens, i)
		if n == 0 {
			i++
			continue
		}
		if !used[role] {
			used[role] = true
			roles = append(roles, role)
		}
		i += n
	}
	return roles
}

// ScoreLine counts the unigram, bigram and trigram windows of a line that are
// header keywords.
func ScoreLine(tokens []string) int {
	score := 0
	for n := 1; n <= 3; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if lookup(strings.Join(tokens[i:i+n], " "), n == 1) != RoleUnknown {
				score++
			}
		}
	}
	return score
}

// Mapping holds the column index of each role, -1 when unresolved.
type Mapping struct {
	Date        int
	Description int
	Debit       int
	Credit      int
	Amount      int
	Balance     int
}

func emptyMapping() Mapping {
	return Mapping{Date: -1, Description: -1, Debit: -1, Credit: -1, Amount: -1, Balance: -1}
}

func (m *Mapping) set(role Role, col int) {
	switch role {
	case RoleDate:
		m.Date = col
	case RoleDescription:
		m.Description = col
	case RoleDebit:
		m.Debit = col
	case RoleCredit:
		m.Credit = col
	case RoleAmount:
		m.Amount = col
	case RoleBalance:
		m.Balance = col
	}
}

// Roles lists the role of each of n columns, RoleUnknown where unassigned.
func (m Mapping) Roles(n int) []Role {
	roles := make([]Role, n)
	for role, col := range map[Role]int{
		RoleDate: m.Date, RoleDescription: m.Description, RoleDebit: m.Debit,
		RoleCredit: m.Credit, RoleAmount: m.Amount, RoleBalance: m.Balance,
	} {
		if col >= 0 && col < n {
			roles[col] = role
		}
	}
	return roles
}

func (m Mapping) assigned(col int) bool {
	return col == m.Date || col == m.Description || col == m.Debit ||
		col == m.Credit || col == m.Amount || col == m.Balance
}

// Classify assigns a role to each header cell, then falls back to the sample
// rows for date and description. It reports false when either is still
// unresolved; such a table must not be used.
func Classify(header []string, samples [][]string) (Mapping, bool) {
	m := emptyMapping()
	used := make(map[Role]bool)

	for col, cell := range header {
		tokens := Tokenize(cell)
		for i := 0; i < len(tokens); {
			role, n := matchAt(tokens, i)
			if n == 0 {
				i++
				continue
			}
			if !used[role] {
				used[role] = true
				m.set(role, col)
				break
			}
			i += n
		}
	}

	if m.Date < 0 {
		m.Date = dateColumn(len(header), samples, m)
	}
	if m.Description < 0 {
		m.Description = descriptionColumn(len(header), samples, m)
	}
	return m, m.Date >= 0 && m.Description >= 0
}

const fallbackSampleSize = 5

func cell(row []string, col int) string {
	if col < len(row) {
		return strings.TrimSpace(row[col])
	}
	return ""
}

// dateColumn picks the unassigned column with the most parseable dates among
// its first five values.
func dateColumn(width int, samples [][]string, m Mapping) int {
	best, bestCount := -1, 0
	for col := 0; col < width; col++ {
		if m.assigned(col) {
			continue
		}
		count := 0
		for i, row := range samples {
			if i >= fallbackSampleSize {
				break
			}
			if _, ok := utils.ParseDate(cell(row, col)); ok {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = col, count
		}
	}
	return best
}

// descriptionColumn picks the unassigned column with the longest average text.
func descriptionColumn(width int, samples [][]string, m Mapping) int {
	best, bestAvg := -1, 0.0
	for col := 0; col < width; col++ {
		if m.assigned(col) {
			continue
		}
		total, n := 0, 0
		for _, row := range samples {
			v := cell(row, col)
			if v == "" {
				continue
			}
			if _, ok := utils.ParseAmount(v); ok && !containsLetter(v) {
				continue
			}
			total += len([]rune(v))
			n++
		}
		if n == 0 {
			continue
		}
		if avg := float64(total) / float64(n); avg > bestAvg {
			best, bestAvg = col, avg
		}
	}
	return best
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
