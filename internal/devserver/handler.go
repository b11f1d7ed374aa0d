package devserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"
)

type Handler struct {
	store  Store
	signer *Signer
}

func NewHandler(store Store, signer *Signer) *Handler {
	return &Handler{store: store, signer: signer}
}

// NewRouter mounts the service under /api. CORS is wide open: the real
// service is consumed by a browser frontend on another origin, and the
// dev stand-in should never get in the way of that.
func NewRouter(h *Handler) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	router.Route("/api", func(r chi.Router) {
		r.With(middleware.AllowContentType("application/json")).
			Post("/generate", h.generate)
		r.Get("/verify/{receiptID}", h.verify)
	})

	return router
}

type generateRequest struct {
	ReceiptID string `json:"receipt_id"`
	StoreID   string `json:"store_id"`
	Timestamp string `json:"timestamp"`
	// Kept raw: the field may arrive as a number or a quoted string, and
	// a malformed value is its own error, distinct from a missing one.
	TotalAmount json.RawMessage `json:"total_amount"`
	Items       []Item          `json:"items"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ReceiptID == "" || req.StoreID == "" || req.Timestamp == "" ||
		len(req.TotalAmount) == 0 || len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	total, err := decimal.NewFromString(strings.Trim(string(req.TotalAmount), `"`))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid total_amount")
		return
	}

	// The service re-checks the item breakdown; the client-side gate is
	// advisory only.
	calc := decimal.Zero
	for _, item := range req.Items {
		calc = calc.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if !calc.Round(2).Equal(total.Round(2)) {
		writeError(w, http.StatusBadRequest, "Total mismatch with item breakdown")
		return
	}

	rec := Record{
		ReceiptID:   req.ReceiptID,
		StoreID:     req.StoreID,
		Timestamp:   req.Timestamp,
		TotalAmount: total,
		Items:       req.Items,
	}
	rec.Hash = h.signer.Hash(rec)
	rec.Signature = h.signer.Sign(rec)

	if err := h.store.Save(r.Context(), rec); err != nil {
		if errors.Is(err, ErrDuplicate) {
			writeError(w, http.StatusConflict, "Receipt with this ID already exists")
			return
		}

		slog.Error("failed to save receipt", "receipt_id", rec.ReceiptID, "error", err)
		writeError(w, http.StatusInternalServerError, "Storage error")

		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Receipt generated successfully",
		"receipt_id": rec.ReceiptID,
		"hash":       rec.Hash,
		"signature":  rec.Signature,
	})
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	receiptID := chi.URLParam(r, "receiptID")

	rec, err := h.store.Get(r.Context(), receiptID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Receipt not found")
			return
		}

		slog.Error("failed to load receipt", "receipt_id", receiptID, "error", err)
		writeError(w, http.StatusInternalServerError, "Storage error")

		return
	}

	hashValid := h.signer.Hash(*rec) == rec.Hash
	signatureValid := h.signer.VerifySignature(*rec, rec.Signature)
	isValid := hashValid && signatureValid

	message := "Receipt is valid"
	if !isValid {
		message = "Receipt verification failed"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"is_valid": isValid,
		"checks": map[string]bool{
			"hash_valid":      hashValid,
			"signature_valid": signatureValid,
		},
		"message": message,
		"receipt": rec,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
