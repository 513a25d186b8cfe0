package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/gateway"
	"github.com/fjod/go_storefront/internal/order"
	"github.com/fjod/go_storefront/internal/payment"
	"github.com/google/uuid"
)

type AddressInput struct {
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
}

type Request struct {
	CustomerID      string
	CustomerEmail   string
	Lines           []domain.CartLine
	Payment         payment.MethodRequest
	Address         AddressInput
	AcceptanceToken string
	SessionID       string
}

type Result struct {
	Order *domain.Order
	// GatewayStatus is the gateway's immediate answer, not a final outcome;
	// the webhook reconciler settles it later.
	GatewayStatus string
}

type CheckoutService interface {
	Checkout(ctx context.Context, request *Request) (*Result, error)
}

type Verifier interface {
	Verify(ctx context.Context, lines []domain.CartLine) ([]domain.VerifiedItem, int64, error)
}

type Charger interface {
	Charge(ctx context.Context, request *gateway.ChargeRequest) (*gateway.ChargeResult, error)
}

type CheckoutServiceImpl struct {
	verifier Verifier
	signer   *payment.Signer
	charger  Charger
	repo     order.RepoInterface
	currency string
	timeout  time.Duration
}

func NewCheckoutService(
	verifier Verifier,
	signer *payment.Signer,
	charger Charger,
	repo order.RepoInterface,
	currency string,
	timeout time.Duration,
) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		verifier: verifier,
		signer:   signer,
		charger:  charger,
		repo:     repo,
		currency: currency,
		timeout:  timeout,
	}
}

// Checkout runs one attempt through the pipeline: verify prices, build the
// signed charge, call the gateway, persist. Validation failures abort before
// any external call or write. Each attempt gets its own reference; a retried
// submission is a new attempt with a new reference.
func (s *CheckoutServiceImpl) Checkout(ctx context.Context, request *Request) (*Result, error) {
	items, total, err := s.verifier.Verify(ctx, request.Lines)
	if err != nil {
		return nil, err
	}

	method, err := payment.ParseMethod(request.Payment)
	if err != nil {
		return nil, err
	}

	reference := "ref-" + uuid.NewString()
	chargeRequest := &gateway.ChargeRequest{
		Reference:       reference,
		AmountInCents:   total,
		Currency:        s.currency,
		CustomerEmail:   request.CustomerEmail,
		PaymentMethod:   method.Payload(),
		AcceptanceToken: request.AcceptanceToken,
		Signature:       s.signer.SignCharge(reference, total, s.currency),
		SessionID:       request.SessionID,
	}

	chargeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	chargeResult, err := s.charger.Charge(chargeCtx, chargeRequest)
	if err != nil {
		return nil, err
	}

	log.Printf("charge accepted: reference %s, transaction %s, status %s",
		reference, chargeResult.TransactionID, chargeResult.Status)

	persisted, err := s.persistOrder(ctx, request, reference, items, total, method.Type(), chargeResult)
	if err != nil {
		return nil, err
	}

	return &Result{
		Order:         persisted,
		GatewayStatus: chargeResult.Status,
	}, nil
}

// persistOrder is the post-charge saga: address, then order + items in one
// transaction. Money has already moved, so a failure here is never swallowed;
// it is reported distinctly and queued for operator reconciliation.
func (s *CheckoutServiceImpl) persistOrder(
	ctx context.Context,
	request *Request,
	reference string,
	items []domain.VerifiedItem,
	total int64,
	methodType string,
	chargeResult *gateway.ChargeResult,
) (*domain.Order, error) {
	address := &domain.Address{
		ID:          uuid.New(),
		CustomerID:  request.CustomerID,
		AddressLine: request.Address.AddressLine,
		City:        request.Address.City,
		State:       request.Address.State,
		PostalCode:  request.Address.PostalCode,
		Country:     request.Address.Country,
	}
	if err := s.repo.CreateAddress(ctx, address); err != nil {
		return nil, s.persistFailure("address", reference, chargeResult.TransactionID, err)
	}

	orderItems := make([]domain.OrderItem, len(items))
	for i, item := range items {
		orderItems[i] = domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSlug: item.ProductSlug,
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
			Price:       item.UnitPrice,
		}
	}

	newOrder := &domain.Order{
		ID:            uuid.New(),
		CustomerID:    request.CustomerID,
		AddressID:     address.ID,
		TotalAmount:   total,
		Currency:      s.currency,
		Reference:     reference,
		TransactionID: chargeResult.TransactionID,
		PaymentStatus: domain.PaymentStatusFromGateway(chargeResult.Status),
		PaymentMethod: methodType,
		Status:        domain.OrderStatusPending,
		Items:         orderItems,
	}

	persisted, err := s.repo.CreateOrderWithItems(ctx, newOrder)
	if err != nil {
		return nil, s.persistFailure("order", reference, chargeResult.TransactionID, err)
	}
	return persisted, nil
}

func (s *CheckoutServiceImpl) persistFailure(step, reference, transactionID string, err error) error {
	log.Printf("persistence failure after accepted charge: step %s, reference %s, transaction %s: %v",
		step, reference, transactionID, err)

	payload := order.MarshalReconcile(order.ReconcilePayload{
		Reason:        "partial persistence after accepted charge",
		Reference:     reference,
		TransactionID: transactionID,
		Detail:        fmt.Sprintf("failed at %s step: %v", step, err),
	})
	// best effort: the primary failure is what the caller needs to see
	if e2 := s.repo.InsertOutboxEvent(context.Background(), reference, order.EventOrderReconcile, payload); e2 != nil {
		log.Printf("failed to queue reconcile event for reference %s: %v", reference, e2)
	}

	return &PersistenceError{Step: step, Reference: reference, Err: err}
}
