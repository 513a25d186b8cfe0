package order

import (
	"context"
	"fmt"
	"log"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
)

// Workflow is the operator-facing fulfillment state machine. It only moves
// the visible order status; payment status belongs to the reconciler.
type Workflow struct {
	repo RepoInterface
}

func NewWorkflow(repo RepoInterface) *Workflow {
	return &Workflow{repo: repo}
}

// Advance moves the order to target if the transition table allows it. The
// underlying update is conditioned on the current status, so two concurrent
// operators cannot both win.
func (w *Workflow) Advance(ctx context.Context, id uuid.UUID, target domain.OrderStatus) (*domain.Order, error) {
	existing, err := w.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransitionTo(existing.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, existing.Status, target)
	}

	if err := w.repo.UpdateOrderStatus(ctx, id, existing.Status, target); err != nil {
		return nil, err
	}

	updated, err := w.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := MarshalOrderEvent(updated)
	if err == nil {
		if e2 := w.repo.InsertOutboxEvent(ctx, updated.ID.String(), EventOrderStatusChanged, payload); e2 != nil {
			log.Printf("failed to record status change event for order %s: %v", updated.ID, e2)
		}
	}

	return updated, nil
}
