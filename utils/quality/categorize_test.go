package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	c := NewCategorizer(nil)

	tests := map[string]string{
		"ATM WDL RIYADH BRANCH":     "atm_withdrawal",
		"POS PURCHASE PANDA":        "pos_purchase",
		"UPI/PAYTM/12345":           "upi",
		"NEFT CR ACME LTD":          "neft",
		"SAL CR MARCH":              "salary",
		"INT PAID Q1":               "interest",
		"ANNUAL FEE CARD":           "charges",
		"CHQ 000123 CLEARED":        "cheque",
		"Transfer to savings":       CategoryOther,
		"Monthly Service Charge":    "charges",
		"Cash withdrawal at branch": "atm_withdrawal",
	}
	for desc, want := range tests {
		assert.Equal(t, want, c.Categorize(desc), desc)
	}
}

func TestRulesFromMap(t *testing.T) {
	rules := RulesFromMap(map[string][]string{
		"zakat":          {"zakat"},
		"salary":         {"راتب", "salary"},
		"atm_withdrawal": {"atm"},
	})

	assert.Equal(t, []string{"atm_withdrawal", "salary", "zakat"}, []string{rules[0].Category, rules[1].Category, rules[2].Category})

	c := NewCategorizer(rules)
	assert.Equal(t, "salary", c.Categorize("راتب شهر مارس"))
	assert.Equal(t, "zakat", c.Categorize("ZAKAT PAYMENT"))
	assert.Equal(t, CategoryOther, c.Categorize("POS PURCHASE"))
	assert.Nil(t, RulesFromMap(nil))
}
