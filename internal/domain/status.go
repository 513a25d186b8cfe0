package domain

import "strings"

// OrderStatus is the fulfillment lifecycle, advanced by operators or, on
// payment approval, automatically. Distinct from PaymentStatus.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

var orderTransitions = map[OrderStatus]OrderStatus{
	OrderStatusPending: OrderStatusPaid,
	OrderStatusPaid:    OrderStatusShipped,
	OrderStatusShipped: OrderStatusDelivered,
}

// ParseOrderStatus validates a client-supplied status string.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(strings.ToUpper(s)) {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(strings.ToUpper(s)), true
	default:
		return "", false
	}
}

// CanTransitionTo reports whether the fulfillment status may move from
// current to next. Cancellation is allowed from any non-terminal state;
// terminal states never reopen.
func CanTransitionTo(current, next OrderStatus) bool {
	if current.IsTerminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return orderTransitions[current] == next
}

// PaymentStatus is the reconciler-owned view of the gateway transaction.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusApproved PaymentStatus = "APPROVED"
	PaymentStatusDeclined PaymentStatus = "DECLINED"
)

// PaymentStatusFromGateway maps a raw gateway transaction status onto the
// local payment status. Unknown statuses stay PENDING so a later event can
// still settle the order.
func PaymentStatusFromGateway(status string) PaymentStatus {
	switch strings.ToUpper(status) {
	case "APPROVED":
		return PaymentStatusApproved
	case "DECLINED", "ERROR", "VOIDED":
		return PaymentStatusDeclined
	default:
		return PaymentStatusPending
	}
}
