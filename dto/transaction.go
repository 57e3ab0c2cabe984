package dto

import (
	"encoding/json"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionDebit  TransactionType = "debit"
	TransactionCredit TransactionType = "credit"
)

// Transaction is a candidate transaction record. Parsers create them, the
// quality layer accepts or rejects them; nothing mutates a record in place.
type Transaction struct {
	TransactionDate civil.Date       `json:"transaction_date"`
	Description     string           `json:"description"`
	RawDescription  string           `json:"raw_description"`
	DebitAmount     *decimal.Decimal `json:"debit_amount"`
	CreditAmount    *decimal.Decimal `json:"credit_amount"`
	Balance         *decimal.Decimal `json:"balance"`
	ConfidenceScore float64          `json:"confidence_score"`
	Category        string           `json:"category,omitempty"`
}

// Type reports debit when a debit amount is present, credit otherwise.
func (t Transaction) Type() TransactionType {
	if t.DebitAmount != nil {
		return TransactionDebit
	}
	return TransactionCredit
}

// SignedAmount is positive for credits and negative for debits.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.CreditAmount != nil {
		return *t.CreditAmount
	}
	if t.DebitAmount != nil {
		return t.DebitAmount.Neg()
	}
	return decimal.Zero
}

// MarshalJSON adds the derived type and signed amount to the record.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type record Transaction
	return json.Marshal(struct {
		record
		Type         TransactionType `json:"type"`
		SignedAmount decimal.Decimal `json:"signed_amount"`
	}{record(t), t.Type(), t.SignedAmount()})
}

func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
