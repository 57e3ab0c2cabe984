package receipt

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

const sampleReceipt = `PANDA RETAIL CO
VAT No 300123456700003
05/03/2025 14:22
6 Bazooka Golden Sniper 114.00 12
@ 19.00UNP
2 Water 5 00 A
Sub Total 119.00
VAT 15% 17.85
Invoice Total 136.85
Thank you for shopping`

func TestParseReceipt(t *testing.T) {
	r := Parse(sampleReceipt, 0.82)

	assert.Equal(t, "PANDA RETAIL CO", r.MerchantName)
	require.NotNil(t, r.InvoiceDatetime)
	assert.Equal(t, time.Date(2025, 3, 5, 14, 22, 0, 0, time.UTC), *r.InvoiceDatetime)

	require.Len(t, r.Lines, 2)
	first := r.Lines[0]
	assert.True(t, dec("6").Equal(first.Quantity))
	assert.Equal(t, "Bazooka Golden Sniper", first.Description)
	require.NotNil(t, first.UnitPrice)
	assert.True(t, dec("19.00").Equal(*first.UnitPrice))
	require.NotNil(t, first.LineTotal)
	assert.True(t, dec("114.00").Equal(*first.LineTotal))

	second := r.Lines[1]
	assert.Equal(t, "Water", second.Description)
	assert.Nil(t, second.UnitPrice)
	assert.True(t, dec("5.00").Equal(*second.LineTotal))

	require.NotNil(t, r.Subtotal)
	assert.True(t, dec("119").Equal(*r.Subtotal))
	require.NotNil(t, r.TaxAmount)
	assert.True(t, dec("17.85").Equal(*r.TaxAmount))
	require.NotNil(t, r.Total)
	assert.True(t, dec("136.85").Equal(*r.Total))

	assert.Equal(t, sampleReceipt, r.RawText)
	assert.Equal(t, 0.82, r.ParseConfidence)
}

func TestParseReceiptContinuationStopsAtTotals(t *testing.T) {
	r := Parse("Corner Bakery\n2 Water 5.00 A\nMineral 500ml\nSub Total 5.00\nThank you for shopping", 0.5)

	require.Len(t, r.Lines, 1)
	assert.Equal(t, "Water Mineral 500ml", r.Lines[0].Description)
}

func TestParseReceiptSplitDecimals(t *testing.T) {
	r := Parse("6 Bazooka Golden Sniper 114 00 12\n@ 19 00UNP", 0.9)

	require.Len(t, r.Lines, 1)
	assert.True(t, dec("114.00").Equal(*r.Lines[0].LineTotal))
	assert.True(t, dec("19.00").Equal(*r.Lines[0].UnitPrice))
}

func TestParseReceiptDerivesTotals(t *testing.T) {
	r := Parse("Corner Bakery\n3 Croissant 4.50 A\n@ 1.50 SR\n1 Rice 12,50 A", 0.5)

	require.Len(t, r.Lines, 2)
	assert.True(t, dec("12.50").Equal(*r.Lines[1].LineTotal))
	require.NotNil(t, r.Total)
	assert.True(t, dec("17.00").Equal(*r.Total))
	assert.Nil(t, r.Subtotal)
	assert.Nil(t, r.TaxAmount)
}

func TestParseReceiptUnitPriceFillsZeroTotal(t *testing.T) {
	r := Parse("Kiosk\n4 Juice 0.00 A\n@ 2.25 SAR", 0.5)

	require.Len(t, r.Lines, 1)
	require.NotNil(t, r.Lines[0].UnitPrice)
	assert.True(t, dec("2.25").Equal(*r.Lines[0].UnitPrice))
	assert.True(t, dec("9.00").Equal(*r.Lines[0].LineTotal))
	require.NotNil(t, r.Total)
	assert.True(t, dec("9").Equal(*r.Total))
}

func TestParseReceiptContinuation(t *testing.T) {
	r := Parse("Shawarma House\n1 Chicken Shawarma 18.00 15\nExtra garlic sauce\nPayment 18.00\nSee you soon", 0.7)

	require.Len(t, r.Lines, 1)
	assert.Equal(t, "Chicken Shawarma Extra garlic sauce", r.Lines[0].Description)
	assert.True(t, dec("18").Equal(*r.Total))
}

func TestParseReceiptNamedMonthStamp(t *testing.T) {
	r := Parse("Cafe Nero\n5 Mar'25 09:15 PM\n1 Latte 14.00 A", 0.7)

	require.NotNil(t, r.InvoiceDatetime)
	assert.Equal(t, time.Date(2025, 3, 5, 21, 15, 0, 0, time.UTC), *r.InvoiceDatetime)
}

func TestParseReceiptISOStamp(t *testing.T) {
	r := Parse("Store\n2025-03-05 12:05:09 AM", 0.7)

	require.NotNil(t, r.InvoiceDatetime)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 5, 9, 0, time.UTC), *r.InvoiceDatetime)
}

func TestMerchantName(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"first clean line", []string{"Al Baik", "Receipt"}, "Al Baik"},
		{"skips labels and dates", []string{"Simplified Tax Invoice", "05/03/2025", "Jarir Bookstore"}, "Jarir Bookstore"},
		{"skips amounts", []string{"12.00", "Tamimi Markets"}, "Tamimi Markets"},
		{"falls back to first line", []string{"Invoice 1", "Total 5.00"}, "Invoice 1"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MerchantName(tt.lines))
		})
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "1 Rice 1234.50 A", Clean("1  Rice  1,234,50 A"))
	assert.Equal(t, "Total 12.50", Clean("Total 12. 50"))
}
