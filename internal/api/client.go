// Package api is the typed HTTP client for the external receipt signing
// service. It speaks the service's wire contract and nothing else; how
// outcomes are presented to the user is the caller's concern.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tally/internal/receipt"
)

// TimestampLayout matches the service's minute-precision timestamps.
const TimestampLayout = "2006-01-02T15:04"

// Error is a failure the service itself reported through an {error} body.
// Its Message is safe to show to the user.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("service error (%d): %s", e.StatusCode, e.Message)
}

// The wire carries plain JSON numbers, so money crosses the boundary as
// float64; decimals live only on the client side.
type ItemPayload struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type GenerateRequest struct {
	ReceiptID   string        `json:"receipt_id"`
	StoreID     string        `json:"store_id"`
	Timestamp   string        `json:"timestamp"`
	TotalAmount float64       `json:"total_amount"`
	Items       []ItemPayload `json:"items"`
}

type GenerateResponse struct {
	Message   string `json:"message"`
	ReceiptID string `json:"receipt_id"`
	Hash      string `json:"hash"`
	Signature string `json:"signature"`
}

type VerifyResponse struct {
	IsValid bool            `json:"is_valid"`
	Checks  map[string]bool `json:"checks"`
	Message string          `json:"message"`
	Receipt map[string]any  `json:"receipt"`
}

type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for the service rooted at baseURL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// RequestFromDraft converts a composed draft into the generate payload.
func RequestFromDraft(d *receipt.Draft) GenerateRequest {
	items := make([]ItemPayload, len(d.Items))
	for i, item := range d.Items {
		items[i] = ItemPayload{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.UnitPrice.InexactFloat64(),
		}
	}

	return GenerateRequest{
		ReceiptID:   d.ReceiptID,
		StoreID:     d.StoreID,
		Timestamp:   d.Timestamp.Format(TimestampLayout),
		TotalAmount: d.DeclaredTotal.InexactFloat64(),
		Items:       items,
	}
}

// Generate submits a receipt for signing.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, serviceError(resp)
	}

	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &out, nil
}

// Verify asks the service to re-verify the receipt with the given id.
func (c *Client) Verify(ctx context.Context, receiptID string) (*VerifyResponse, error) {
	endpoint := c.baseURL + "/verify/" + url.PathEscape(receiptID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, serviceError(resp)
	}

	var out VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &out, nil
}

// serviceError turns a non-2xx response into an *Error, preferring the
// message the service put in its {error} body.
func serviceError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return &Error{StatusCode: resp.StatusCode, Message: body.Error}
	}

	return &Error{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("unexpected status %d", resp.StatusCode),
	}
}
