// Package devserver is a local stand-in for the external receipt signing
// service. It implements the same HTTP contract the client consumes in
// production, including generate, verify and the error bodies, with
// development grade hashing and signing, so the client can be exercised
// end to end without the real service.
package devserver

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrDuplicate = errors.New("receipt id already exists")
	ErrNotFound  = errors.New("receipt not found")
)

// Item is one receipt line as stored by the service.
type Item struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Record is a signed receipt at rest.
type Record struct {
	ReceiptID   string          `json:"receipt_id"`
	StoreID     string          `json:"store_id"`
	Timestamp   string          `json:"timestamp"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []Item          `json:"items"`
	Hash        string          `json:"hash"`
	Signature   string          `json:"signature"`
}

// Store persists signed receipts. Save returns ErrDuplicate when the
// receipt id is already taken; Get returns ErrNotFound for unknown ids.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Get(ctx context.Context, receiptID string) (*Record, error)
}
