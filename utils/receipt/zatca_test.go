package receipt

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tlv(fields ...string) string {
	var raw []byte
	for i, f := range fields {
		raw = append(raw, byte(i+1), byte(len(f)))
		raw = append(raw, f...)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestDecodeQR(t *testing.T) {
	q, err := DecodeQR(tlv("Panda Retail Co", "300123456700003", "2025-03-05T14:22:00Z", "14.95", "1.95"))
	require.NoError(t, err)

	assert.Equal(t, "Panda Retail Co", q.Seller)
	assert.Equal(t, "300123456700003", q.VATNumber)
	require.NotNil(t, q.Timestamp)
	assert.True(t, q.Timestamp.Equal(time.Date(2025, 3, 5, 14, 22, 0, 0, time.UTC)))
	require.NotNil(t, q.Total)
	assert.True(t, q.Total.Equal(dec("14.95")))
	require.NotNil(t, q.VAT)
	assert.True(t, q.VAT.Equal(dec("1.95")))
}

func TestDecodeQRRejects(t *testing.T) {
	cases := map[string]string{
		"not base64": "%%%",
		"truncated":  base64.StdEncoding.EncodeToString([]byte{1, 10, 'a'}),
		"no seller":  base64.StdEncoding.EncodeToString([]byte{4, 2, '1', '0'}),
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeQR(payload)
			assert.ErrorIs(t, err, ErrInvalidQR)
		})
	}
}

func TestEnrichKeepsTextValues(t *testing.T) {
	q, err := DecodeQR(tlv("Panda  Retail Co", "300123456700003", "2025-03-05T14:22:00Z", "14.95", "1.95"))
	require.NoError(t, err)

	r := &dto.Receipt{MerchantName: "PANDA", Total: dto.DecimalPtr(dec("20.00"))}
	q.Enrich(r)

	assert.Equal(t, "PANDA", r.MerchantName)
	assert.True(t, r.Total.Equal(dec("20.00")))
	assert.Equal(t, "300123456700003", r.VATNumber)
	require.NotNil(t, r.TaxAmount)
	assert.True(t, r.TaxAmount.Equal(dec("1.95")))
	assert.NotNil(t, r.InvoiceDatetime)

	empty := &dto.Receipt{}
	q.Enrich(empty)
	assert.Equal(t, "Panda Retail Co", empty.MerchantName)
}
