package quality

import (
	"sort"
	"strings"
)

const CategoryOther = "other"

// Rule assigns Category to descriptions containing any of Keywords.
type Rule struct {
	Category string
	Keywords []string
}

// DefaultRules are checked in order; the first rule with a matching keyword
// wins.
var DefaultRules = []Rule{
	{"atm_withdrawal", []string{"atm", "cash withdrawal", "atm wdl"}},
	{"pos_purchase", []string{"pos", "purchase", "merchant"}},
	{"upi", []string{"upi", "paytm", "gpay", "phonepe", "bhim"}},
	{"neft", []string{"neft"}},
	{"rtgs", []string{"rtgs"}},
	{"imps", []string{"imps"}},
	{"salary", []string{"salary", "sal cr", "payroll"}},
	{"interest", []string{"interest", "int cr", "int paid"}},
	{"charges", []string{"charges", "fee", "service charge", "annual fee"}},
	{"cheque", []string{"cheque", "chq", "check"}},
}

type Categorizer struct {
	rules []Rule
}

// NewCategorizer uses rules when given, DefaultRules otherwise.
func NewCategorizer(rules []Rule) *Categorizer {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Categorizer{rules: rules}
}

// RulesFromMap builds rules from a config map, ordered like DefaultRules with
// unknown categories appended alphabetically.
func RulesFromMap(m map[string][]string) []Rule {
	if len(m) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(m))
	var rules []Rule
	for _, r := range DefaultRules {
		if kws, ok := m[r.Category]; ok {
			rules = append(rules, Rule{Category: r.Category, Keywords: kws})
			seen[r.Category] = true
		}
	}
	var extra []string
	for name := range m {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		rules = append(rules, Rule{Category: name, Keywords: m[name]})
	}
	return rules
}

func (c *Categorizer) Categorize(description string) string {
	desc := strings.ToLower(description)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(desc, strings.ToLower(kw)) {
				return r.Category
			}
		}
	}
	return CategoryOther
}
