package checkout

import (
	"dawakart/internal/address"
	"dawakart/internal/order"
	"dawakart/internal/payment"
	"dawakart/internal/shipping"
)

// UIState is what the storefront renders for this checkout.
type UIState string

const (
	StateCart            UIState = "cart"
	StateAddressSelected UIState = "address_selected"
	StatePhoneRequired   UIState = "phone_required"
	StateAwaitingPayment UIState = "awaiting_payment"
	StatePaymentFailed   UIState = "payment_failed"
	StatePaymentTimeout  UIState = "payment_timeout"
	StateOrderComplete   UIState = "order_complete"

	// StateOrderCompleteUnverified is the soft success: the order was
	// almost certainly created but its id could not be confirmed, so
	// the UI should point the customer at their order history.
	StateOrderCompleteUnverified UIState = "order_complete_unverified"
)

// Snapshot is a consistent read of the whole checkout for rendering.
type Snapshot struct {
	CheckoutID      string
	State           UIState
	Cart            order.Cart
	Subtotal        float64
	Address         *address.Address
	Quote           *shipping.Quote
	PaymentMethod   order.PaymentMethod
	ResumeAddressID string
	OrderID         string
	OrderUnverified bool
	PaymentStatus   payment.Status
	PaymentMessage  string
	PaymentAttempts int
}
