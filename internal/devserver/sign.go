package devserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// core is the part of a receipt that gets hashed and signed: everything
// except the hash and signature themselves. Struct field order fixes the
// canonical byte layout.
type core struct {
	ReceiptID   string          `json:"receipt_id"`
	StoreID     string          `json:"store_id"`
	Items       []Item          `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Timestamp   string          `json:"timestamp"`
}

// Signer produces and checks the dev-grade hash and signature: SHA-256
// over the canonical JSON of the core fields, and an HMAC-SHA256 of that
// same payload under a configured key. Not a substitute for the real
// service's signing scheme.
type Signer struct {
	key []byte
}

func NewSigner(key string) *Signer {
	return &Signer{key: []byte(key)}
}

func (s *Signer) canonical(rec Record) []byte {
	payload, _ := json.Marshal(core{
		ReceiptID:   rec.ReceiptID,
		StoreID:     rec.StoreID,
		Items:       rec.Items,
		TotalAmount: rec.TotalAmount,
		Timestamp:   rec.Timestamp,
	})

	return payload
}

func (s *Signer) Hash(rec Record) string {
	sum := sha256.Sum256(s.canonical(rec))
	return hex.EncodeToString(sum[:])
}

func (s *Signer) Sign(rec Record) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(s.canonical(rec))

	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks a stored signature against the record's current
// core fields.
func (s *Signer) VerifySignature(rec Record, signature string) bool {
	want, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(s.canonical(rec))

	return hmac.Equal(mac.Sum(nil), want)
}
