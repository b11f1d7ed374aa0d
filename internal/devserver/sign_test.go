package devserver

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func testRecord() Record {
	return Record{
		ReceiptID:   "rcpt-1",
		StoreID:     "store-1",
		Timestamp:   "2026-03-14T09:26",
		TotalAmount: decimal.RequireFromString("5.20"),
		Items: []Item{
			{Name: "Coffee", Quantity: 2, Price: decimal.RequireFromString("1.50")},
		},
	}
}

func TestSigner_HashIsStable(t *testing.T) {
	s := NewSigner("key")
	rec := testRecord()

	assert.Equal(t, s.Hash(rec), s.Hash(rec))
	assert.Len(t, s.Hash(rec), 64)
}

func TestSigner_HashChangesWithCoreFields(t *testing.T) {
	s := NewSigner("key")

	a := testRecord()
	b := testRecord()
	b.StoreID = "store-2"

	assert.NotEqual(t, s.Hash(a), s.Hash(b))
}

func TestSigner_SignatureRoundTrip(t *testing.T) {
	s := NewSigner("key")
	rec := testRecord()

	sig := s.Sign(rec)
	assert.True(t, s.VerifySignature(rec, sig))

	rec.TotalAmount = decimal.RequireFromString("9.99")
	assert.False(t, s.VerifySignature(rec, sig))

	assert.False(t, s.VerifySignature(testRecord(), "not-hex"))
}

func TestSigner_KeyMatters(t *testing.T) {
	rec := testRecord()
	sig := NewSigner("key-a").Sign(rec)

	assert.False(t, NewSigner("key-b").VerifySignature(rec, sig))
}
