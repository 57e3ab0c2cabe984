package receipt

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepare(t *testing.T) {
	inv := Prepare(Parse(sampleReceipt, 0.82))

	assert.Equal(t, dto.DefaultCurrency, inv.Currency)
	assert.Equal(t, dto.InvoiceParsed, inv.Status)
	require.Len(t, inv.Lines, 2)
	assert.Equal(t, 1, inv.Lines[0].Position)
	assert.Equal(t, 2, inv.Lines[1].Position)
	assert.True(t, inv.Lines[1].UnitPrice.IsZero())
	assert.True(t, dec("136.85").Equal(inv.Total))
}

func TestPrepareDefaults(t *testing.T) {
	inv := Prepare(dto.Receipt{
		RawText:         "???",
		ParseConfidence: 0.4,
		Lines:           []dto.ReceiptLine{{Description: "Unknown"}},
	})

	assert.Equal(t, dto.InvoiceDraft, inv.Status)
	assert.True(t, inv.Subtotal.IsZero())
	assert.True(t, inv.TaxAmount.IsZero())
	assert.True(t, inv.Total.IsZero())
	require.Len(t, inv.Lines, 1)
	assert.True(t, dec("1").Equal(inv.Lines[0].Quantity))
	assert.True(t, inv.Lines[0].LineTotal.IsZero())
}

func tlv(tag byte, value string) []byte {
	return append([]byte{tag, byte(len(value))}, value...)
}

func qrPayload(fields ...[]byte) string {
	var raw []byte
	for _, f := range fields {
		raw = append(raw, f...)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestDecodeQR(t *testing.T) {
	payload := qrPayload(
		tlv(1, "Panda Retail Co"),
		tlv(2, "300123456700003"),
		tlv(3, "2025-03-05T14:22:00Z"),
		tlv(4, "136.85"),
		tlv(5, "17.85"),
		tlv(9, "ignored"),
	)

	q, err := DecodeQR(payload)
	require.NoError(t, err)
	assert.Equal(t, "Panda Retail Co", q.Seller)
	assert.Equal(t, "300123456700003", q.VATNumber)
	require.NotNil(t, q.Timestamp)
	assert.True(t, q.Timestamp.Equal(time.Date(2025, 3, 5, 14, 22, 0, 0, time.UTC)))
	assert.True(t, dec("136.85").Equal(*q.Total))
	assert.True(t, dec("17.85").Equal(*q.VAT))
}

func TestDecodeQRRejects(t *testing.T) {
	_, err := DecodeQR("not base64!!")
	assert.ErrorIs(t, err, ErrInvalidQR)

	_, err = DecodeQR(base64.StdEncoding.EncodeToString([]byte{1, 20, 'a'}))
	assert.ErrorIs(t, err, ErrInvalidQR)

	_, err = DecodeQR(qrPayload(tlv(4, "10.00")))
	assert.ErrorIs(t, err, ErrInvalidQR)
}

func TestEnrichKeepsParsedValues(t *testing.T) {
	r := Parse("Corner Bakery\n1 Bread 3.00 A", 0.6)
	q, err := DecodeQR(qrPayload(tlv(1, "Corner Bakery LLC"), tlv(2, "311111111100003"), tlv(4, "3.45"), tlv(5, "0.45")))
	require.NoError(t, err)

	q.Enrich(&r)

	assert.Equal(t, "Corner Bakery", r.MerchantName)
	assert.Equal(t, "311111111100003", r.VATNumber)
	assert.True(t, dec("3.00").Equal(*r.Total))
	require.NotNil(t, r.TaxAmount)
	assert.True(t, dec("0.45").Equal(*r.TaxAmount))
}
