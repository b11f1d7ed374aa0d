// Package store is the Postgres-backed receipt store for the devserver,
// for when dev receipts should survive a restart.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tally/internal/devserver"
)

const schema = `
CREATE TABLE IF NOT EXISTS receipts (
	receipt_id   TEXT PRIMARY KEY,
	store_id     TEXT NOT NULL,
	ts           TEXT NOT NULL,
	total_amount NUMERIC(12, 2) NOT NULL,
	items        JSONB NOT NULL,
	hash         TEXT NOT NULL,
	signature    TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// uniqueViolation is the Postgres error code for a primary key conflict.
const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

// Open connects, tunes the pool and ensures the schema exists.
func Open(connStr string) (*Store, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, rec devserver.Record) error {
	items, err := json.Marshal(rec.Items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO receipts (receipt_id, store_id, ts, total_amount, items, hash, signature)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ReceiptID, rec.StoreID, rec.Timestamp, rec.TotalAmount, items, rec.Hash, rec.Signature,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return devserver.ErrDuplicate
		}

		return fmt.Errorf("inserting receipt: %w", err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, receiptID string) (*devserver.Record, error) {
	var (
		rec   devserver.Record
		items []byte
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT receipt_id, store_id, ts, total_amount, items, hash, signature
		 FROM receipts WHERE receipt_id = $1`,
		receiptID,
	).Scan(&rec.ReceiptID, &rec.StoreID, &rec.Timestamp, &rec.TotalAmount, &items, &rec.Hash, &rec.Signature)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, devserver.ErrNotFound
		}

		return nil, fmt.Errorf("selecting receipt: %w", err)
	}

	if err := json.Unmarshal(items, &rec.Items); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}

	return &rec, nil
}
