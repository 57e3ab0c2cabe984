package statement

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseLinesSkipsHeaderNoise(t *testing.T) {
	text := `Statement of Account
Date Description Debit Credit Balance
05/03/2025 ATM WITHDRAWAL RIYADH 200.00 1,800.00`

	txs := ParseLines(text, 100)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, civil.Date{Year: 2025, Month: 3, Day: 5}, tx.TransactionDate)
	assert.Equal(t, "ATM WITHDRAWAL RIYADH", tx.Description)
	require.NotNil(t, tx.DebitAmount)
	assert.True(t, dec("200").Equal(*tx.DebitAmount))
	assert.Nil(t, tx.CreditAmount)
	require.NotNil(t, tx.Balance)
	assert.True(t, dec("1800").Equal(*tx.Balance))
	assert.Equal(t, 1.0, tx.ConfidenceScore)
}

func TestParseLinesDualDate(t *testing.T) {
	line := "05/09/1446 05/03/2025 Some Fee 0.00 150.00 46,003.50 05-03- 2025 09:27:30 PM"

	txs := ParseLines(line, 87)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, civil.Date{Year: 2025, Month: 3, Day: 5}, tx.TransactionDate)
	assert.Nil(t, tx.DebitAmount)
	require.NotNil(t, tx.CreditAmount)
	assert.True(t, dec("150.00").Equal(*tx.CreditAmount))
	require.NotNil(t, tx.Balance)
	assert.True(t, dec("46003.50").Equal(*tx.Balance))
	assert.Equal(t, "Some Fee", tx.Description)
	assert.Equal(t, line, tx.RawDescription)
	assert.InDelta(t, 0.87, tx.ConfidenceScore, 1e-9)
}

func TestParseLinesDualDateWithAmountsLast(t *testing.T) {
	txs := ParseLines("05/09/1446 05/03/2025 Card payment 35.50 0.00 9,964.50", 100)
	require.Len(t, txs, 1)

	tx := txs[0]
	assert.Equal(t, civil.Date{Year: 2025, Month: 3, Day: 5}, tx.TransactionDate)
	assert.Equal(t, "Card payment", tx.Description)
	require.NotNil(t, tx.DebitAmount)
	assert.True(t, dec("35.50").Equal(*tx.DebitAmount))
	assert.Nil(t, tx.CreditAmount)
}

func TestParseLinesContinuation(t *testing.T) {
	text := `Opening balance 1,000.00
05/03/2025 Transfer from
ACME TRADING LLC 500.00 1,500.00
06/03/2025 SERVICE FEE 15.00 1,485.00
---------------------------
Page 1 of 2`

	txs := ParseLines(text, 100)
	require.Len(t, txs, 2)

	assert.Equal(t, "Transfer from ACME TRADING LLC", txs[0].Description)
	require.NotNil(t, txs[0].CreditAmount)
	assert.True(t, dec("500").Equal(*txs[0].CreditAmount))

	assert.Equal(t, "SERVICE FEE", txs[1].Description)
	require.NotNil(t, txs[1].DebitAmount)
	assert.True(t, dec("15").Equal(*txs[1].DebitAmount))
}

func TestParseLinesArabicDigits(t *testing.T) {
	txs := ParseLines("٠٥/٠٣/٢٠٢٥ رسوم خدمة ١٥٫٠٠ ١٬٤٨٥٫٠٠", 90)
	require.Len(t, txs, 1)

	assert.Equal(t, civil.Date{Year: 2025, Month: 3, Day: 5}, txs[0].TransactionDate)
	require.NotNil(t, txs[0].DebitAmount)
	assert.True(t, dec("15").Equal(*txs[0].DebitAmount))
	assert.True(t, dec("1485").Equal(*txs[0].Balance))
}

func TestParseLinesThreeTrailingAmounts(t *testing.T) {
	txs := ParseLines("31 Dec 2024 Salary December 5,000.00 0.00 12,000.00", 100)
	require.Len(t, txs, 1)

	require.NotNil(t, txs[0].CreditAmount)
	assert.True(t, dec("5000").Equal(*txs[0].CreditAmount))
	assert.True(t, dec("12000").Equal(*txs[0].Balance))
}

func TestParseLinesDropsUnparseable(t *testing.T) {
	text := `random text without a date 10.00 20.00
05/03/2025 no amounts on this line`

	assert.Empty(t, ParseLines(text, 100))
}

func TestParseLinesClampsConfidence(t *testing.T) {
	txs := ParseLines("05/03/2025 POS PURCHASE 25.00 975.00", 140)
	require.Len(t, txs, 1)
	assert.Equal(t, 1.0, txs[0].ConfidenceScore)
}
