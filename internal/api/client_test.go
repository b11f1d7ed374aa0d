package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/api"
	"tally/internal/receipt"
)

func TestClient_Generate(t *testing.T) {
	var got api.GenerateRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message":    "Receipt generated successfully",
			"receipt_id": got.ReceiptID,
			"hash":       "deadbeef",
			"signature":  "cafebabe",
		})
	}))
	defer ts.Close()

	client := api.New(ts.URL+"/api/", 5*time.Second)

	draft := &receipt.Draft{
		ReceiptID:     "rcpt-1",
		StoreID:       "store-9",
		Timestamp:     time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC),
		DeclaredTotal: decimal.RequireFromString("5.20"),
		Items: []receipt.LineItem{
			{Name: "Coffee", Quantity: 2, UnitPrice: decimal.RequireFromString("1.50")},
			{Name: "Bread", Quantity: 1, UnitPrice: decimal.RequireFromString("2.20")},
		},
	}

	resp, err := client.Generate(context.Background(), api.RequestFromDraft(draft))
	require.NoError(t, err)

	assert.Equal(t, "deadbeef", resp.Hash)
	assert.Equal(t, "cafebabe", resp.Signature)

	assert.Equal(t, "rcpt-1", got.ReceiptID)
	assert.Equal(t, "2026-03-14T09:26", got.Timestamp)
	assert.InDelta(t, 5.20, got.TotalAmount, 0.0001)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Coffee", got.Items[0].Name)
	assert.InDelta(t, 1.50, got.Items[0].Price, 0.0001)
}

func TestClient_Verify(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/verify/rcpt-1", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"is_valid": true,
			"checks":   map[string]bool{"hash_valid": true, "signature_valid": true},
			"message":  "Receipt is valid",
			"receipt":  map[string]any{"receipt_id": "rcpt-1"},
		})
	}))
	defer ts.Close()

	client := api.New(ts.URL+"/api", 5*time.Second)

	resp, err := client.Verify(context.Background(), "rcpt-1")
	require.NoError(t, err)

	assert.True(t, resp.IsValid)
	assert.Equal(t, "Receipt is valid", resp.Message)
	assert.True(t, resp.Checks["hash_valid"])
}

func TestClient_ServiceErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Receipt not found"})
	}))
	defer ts.Close()

	client := api.New(ts.URL, 5*time.Second)

	_, err := client.Verify(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Receipt not found", apiErr.Message)
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	client := api.New(ts.URL, 5*time.Second)

	_, err := client.Verify(context.Background(), "any")

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "502")
}

func TestClient_TransportError(t *testing.T) {
	// Point at a closed server so the dial itself fails.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	client := api.New(ts.URL, time.Second)

	_, err := client.Verify(context.Background(), "any")
	require.Error(t, err)

	// A dial failure is a transport error, not a service-reported one.
	var apiErr *api.Error
	assert.False(t, errors.As(err, &apiErr))
}
