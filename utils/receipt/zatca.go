package receipt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/Aashish23092/statement-extraction/utils"
	"github.com/shopspring/decimal"
)

// TLV tags of a ZATCA simplified e-invoice QR payload.
const (
	tagSeller    = 1
	tagVATNumber = 2
	tagTimestamp = 3
	tagTotal     = 4
	tagVAT       = 5
)

var ErrInvalidQR = errors.New("invalid e-invoice qr payload")

// QRInvoice holds the fields carried by a Saudi e-invoice QR code.
type QRInvoice struct {
	Seller    string
	VATNumber string
	Timestamp *time.Time
	Total     *decimal.Decimal
	VAT       *decimal.Decimal
}

var qrTimeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// DecodeQR reads a base64 TLV payload. Unknown tags are skipped.
func DecodeQR(payload string) (QRInvoice, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return QRInvoice{}, fmt.Errorf("%w: %v", ErrInvalidQR, err)
	}

	var q QRInvoice
	for i := 0; i < len(raw); {
		if i+2 > len(raw) {
			return QRInvoice{}, fmt.Errorf("%w: truncated tag at offset %d", ErrInvalidQR, i)
		}
		tag, n := raw[i], int(raw[i+1])
		i += 2
		if i+n > len(raw) {
			return QRInvoice{}, fmt.Errorf("%w: tag %d overruns payload", ErrInvalidQR, tag)
		}
		value := string(raw[i : i+n])
		i += n

		switch tag {
		case tagSeller:
			q.Seller = value
		case tagVATNumber:
			q.VATNumber = value
		case tagTimestamp:
			for _, layout := range qrTimeLayouts {
				if t, err := time.Parse(layout, value); err == nil {
					q.Timestamp = &t
					break
				}
			}
		case tagTotal:
			q.Total = amountPtr(value)
		case tagVAT:
			q.VAT = amountPtr(value)
		}
	}
	if q.Seller == "" && q.VATNumber == "" {
		return QRInvoice{}, ErrInvalidQR
	}
	return q, nil
}

// Enrich fills receipt fields the text parse left empty. Values read off the
// receipt text are kept.
func (q QRInvoice) Enrich(r *dto.Receipt) {
	if r.VATNumber == "" {
		r.VATNumber = q.VATNumber
	}
	if r.MerchantName == "" {
		r.MerchantName = utils.CollapseWhitespace(q.Seller)
	}
	if r.InvoiceDatetime == nil {
		r.InvoiceDatetime = q.Timestamp
	}
	if r.Total == nil {
		r.Total = q.Total
	}
	if r.TaxAmount == nil {
		r.TaxAmount = q.VAT
	}
}
