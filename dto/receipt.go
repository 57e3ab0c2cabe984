package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptLine is one item parsed off a POS receipt. Optional amounts are nil
// when the receipt never printed them.
type ReceiptLine struct {
	Quantity    decimal.Decimal  `json:"quantity"`
	Description string           `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	LineTotal   *decimal.Decimal `json:"line_total"`
}

type Receipt struct {
	MerchantName    string           `json:"merchant_name"`
	VATNumber       string           `json:"vat_number,omitempty"`
	InvoiceDatetime *time.Time       `json:"invoice_datetime"`
	Lines           []ReceiptLine    `json:"lines"`
	Subtotal        *decimal.Decimal `json:"subtotal"`
	TaxAmount       *decimal.Decimal `json:"tax_amount"`
	Total           *decimal.Decimal `json:"total"`
	RawText         string           `json:"raw_text"`
	ParseConfidence float64          `json:"parse_confidence"`
}

type InvoiceStatus string

const (
	InvoiceDraft  InvoiceStatus = "draft"
	InvoiceParsed InvoiceStatus = "parsed"
	InvoiceFailed InvoiceStatus = "failed"
)

const DefaultCurrency = "SAR"

type InvoiceLine struct {
	Position    int             `json:"position"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Invoice is a receipt prepared for persistence: every amount defaulted and
// lines numbered from 1.
type Invoice struct {
	MerchantName    string          `json:"merchant_name"`
	VATNumber       string          `json:"vat_number,omitempty"`
	InvoiceDatetime *time.Time      `json:"invoice_datetime"`
	Currency        string          `json:"currency"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	Total           decimal.Decimal `json:"total"`
	RawText         string          `json:"raw_text"`
	ParseConfidence float64         `json:"parse_confidence"`
	Status          InvoiceStatus   `json:"status"`
	Lines           []InvoiceLine   `json:"lines"`
}
