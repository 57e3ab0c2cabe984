package receipt

import (
	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/shopspring/decimal"
)

// ParsedThreshold is the parse confidence above which a prepared invoice is
// marked parsed rather than draft.
const ParsedThreshold = 0.4

// Prepare turns a parsed receipt into a persistable invoice. Missing amounts
// become zero, missing quantities one, and lines are numbered from 1.
func Prepare(r dto.Receipt) dto.Invoice {
	inv := dto.Invoice{
		MerchantName:    r.MerchantName,
		VATNumber:       r.VATNumber,
		InvoiceDatetime: r.InvoiceDatetime,
		Currency:        dto.DefaultCurrency,
		Subtotal:        orZero(r.Subtotal),
		TaxAmount:       orZero(r.TaxAmount),
		Total:           orZero(r.Total),
		RawText:         r.RawText,
		ParseConfidence: r.ParseConfidence,
		Status:          dto.InvoiceDraft,
		Lines:           make([]dto.InvoiceLine, 0, len(r.Lines)),
	}
	if r.ParseConfidence > ParsedThreshold {
		inv.Status = dto.InvoiceParsed
	}

	for i, l := range r.Lines {
		qty := l.Quantity
		if qty.IsZero() {
			qty = decimal.NewFromInt(1)
		}
		inv.Lines = append(inv.Lines, dto.InvoiceLine{
			Position:    i + 1,
			Description: l.Description,
			Quantity:    qty,
			UnitPrice:   orZero(l.UnitPrice),
			LineTotal:   orZero(l.LineTotal),
		})
	}
	return inv
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
