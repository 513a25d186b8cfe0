package webhook

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/order"
)

// ErrInvalidSignature is a security failure: the event checksum does not
// match. No order state is touched and the caller answers with an
// authentication error. The message never says which field was wrong.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Event is the gateway's asynchronous status notification.
type Event struct {
	Event     string    `json:"event"`
	Timestamp int64     `json:"timestamp"`
	Data      EventData `json:"data"`
}

type EventData struct {
	Transaction Transaction `json:"transaction"`
}

type Transaction struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	AmountInCents     int64  `json:"amount_in_cents"`
	Reference         string `json:"reference"`
	PaymentMethodType string `json:"payment_method_type"`
}

type SignatureVerifier interface {
	VerifyEvent(transactionID, status string, amount int64, timestamp int64, presented string) bool
}

type OrderStore interface {
	UpdatePaymentByTransactionID(ctx context.Context, transactionID string, status domain.PaymentStatus) (*domain.Order, error)
	InsertOutboxEvent(ctx context.Context, aggregateID, eventType string, payload []byte) error
}

// Reconciler applies gateway events to previously persisted orders. It may
// run concurrently with, and arbitrarily long after, order persistence; it
// never blocks waiting for an order to appear.
type Reconciler struct {
	verifier SignatureVerifier
	repo     OrderStore
}

func NewReconciler(verifier SignatureVerifier, repo OrderStore) *Reconciler {
	return &Reconciler{verifier: verifier, repo: repo}
}

// Handle processes one inbound event. Unrecognized event types are a no-op
// success so the gateway does not retry-storm on them. The status update is
// an overwrite keyed by transaction id, safe under duplicate delivery.
func (r *Reconciler) Handle(ctx context.Context, event *Event, checksum string) error {
	if event.Event != "transaction.updated" {
		log.Printf("ignoring webhook event type %q", event.Event)
		return nil
	}

	tx := event.Data.Transaction
	if !r.verifier.VerifyEvent(tx.ID, tx.Status, tx.AmountInCents, event.Timestamp, checksum) {
		return ErrInvalidSignature
	}

	status := domain.PaymentStatusFromGateway(tx.Status)
	updated, err := r.repo.UpdatePaymentByTransactionID(ctx, tx.ID, status)
	if errors.Is(err, order.ErrOrderNotFound) {
		// permanently-missing local record: keep the gateway from retrying,
		// but leave a trace for operators
		log.Printf("webhook for unknown transaction %s (reference %s)", tx.ID, tx.Reference)
		payload := order.MarshalReconcile(order.ReconcilePayload{
			Reason:        "webhook for unknown transaction",
			Reference:     tx.Reference,
			TransactionID: tx.ID,
		})
		if e2 := r.repo.InsertOutboxEvent(ctx, tx.ID, order.EventOrderReconcile, payload); e2 != nil {
			log.Printf("failed to record reconcile anomaly for transaction %s: %v", tx.ID, e2)
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to update order for transaction %s: %w", tx.ID, err)
	}

	log.Printf("order %s payment status set to %s (transaction %s)", updated.ID, status, tx.ID)

	payload, err := order.MarshalOrderEvent(updated)
	if err == nil {
		if e2 := r.repo.InsertOutboxEvent(ctx, updated.ID.String(), order.EventOrderPaymentUpdated, payload); e2 != nil {
			log.Printf("failed to record payment update event for order %s: %v", updated.ID, e2)
		}
	}

	return nil
}
