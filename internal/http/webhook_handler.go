package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/order"
	"github.com/fjod/go_storefront/internal/webhook"
)

// ChecksumHeader carries the gateway's event signature.
const ChecksumHeader = "X-Event-Checksum"

const maxWebhookBody = 1 << 20 // 1 MiB

type WebhookHandler struct {
	reconciler *webhook.Reconciler
	timeout    time.Duration
}

func NewWebhookHandler(reconciler *webhook.Reconciler, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		timeout:    timeout,
	}
}

// POST /api/v1/webhooks/payments
//
// The gateway retries until it sees a 2xx, so permanent conditions (unknown
// transaction, unrecognized event type) are acknowledged with 200 after being
// recorded. Only malformed payloads and bad signatures are refused.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
		return
	}

	var event webhook.Event
	if err := json.Unmarshal(body, &event); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	checksum := r.Header.Get(ChecksumHeader)

	err = h.reconciler.Handle(ctx, &event, checksum)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	case errors.Is(err, webhook.ErrInvalidSignature):
		respondError(w, http.StatusUnauthorized, "invalid_signature", "event signature verification failed")
	case errors.Is(err, order.ErrOrderNotFound):
		// recorded as an anomaly by the reconciler; acknowledge so the
		// gateway stops retrying
		respondJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		log.Printf("webhook processing failed: request %s: %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to process event")
	}
}
