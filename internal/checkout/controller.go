// Package checkout coordinates the cart, address, shipping, and payment
// components into one checkout flow. A Controller owns the state for a
// single checkout and guarantees at most one active payment session.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"dawakart/internal/address"
	"dawakart/internal/backend"
	"dawakart/internal/logger"
	"dawakart/internal/order"
	"dawakart/internal/payment"
	"dawakart/internal/phone"
	"dawakart/internal/shipping"

	"go.uber.org/zap"
)

type Deps struct {
	Store     Store
	Estimator *shipping.Estimator
	Composer  *order.Composer
	Gateway   payment.Gateway
	Backend   *backend.Client
	Payment   payment.Config
}

type Controller struct {
	id   string
	deps Deps

	mu              sync.Mutex
	cart            order.Cart
	addr            *address.Address
	quote           *shipping.Quote
	method          order.PaymentMethod
	instructions    string
	providedPhone   string
	resumeAddressID string
	orderRef        *order.Ref
	session         *payment.Session
	sessionGen      uint64
	state           UIState
}

func NewController(checkoutID string, deps Deps) *Controller {
	c := &Controller{id: checkoutID, deps: deps, state: StateCart}

	// Resume hint from a previous page load. Advisory only.
	if deps.Store != nil {
		if st, err := deps.Store.Get(context.Background(), checkoutID); err == nil {
			c.resumeAddressID = st.AddressID
			c.providedPhone = st.Phone
		}
	}
	return c
}

func (c *Controller) ID() string { return c.id }

// RefreshCart replaces the cart wholesale from the backend.
func (c *Controller) RefreshCart(ctx context.Context) error {
	var dto struct {
		Items []order.CartLine `json:"items"`
	}
	if err := c.deps.Backend.GetJSON(ctx, "/cart", "", &dto); err != nil {
		return fmt.Errorf("refresh cart: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.completedLocked() {
		return ErrAlreadyComplete
	}
	c.cart = order.Cart{Lines: dto.Items}
	return nil
}

// SetCart seeds the cart directly, for callers that already hold the
// backend's cart representation.
func (c *Controller) SetCart(cart order.Cart) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart = cart
}

// SelectAddress makes addr the delivery address. Any prior shipping
// selection is invalidated and a fresh estimate is fetched.
func (c *Controller) SelectAddress(ctx context.Context, addr address.Address) (*shipping.Quote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeSessionLocked() {
		return nil, ErrPaymentInProgress
	}
	if c.completedLocked() {
		return nil, ErrAlreadyComplete
	}

	if addr.Phone != "" {
		if canonical, err := phone.Normalize(addr.Phone); err == nil {
			addr.Phone = canonical
		} else {
			addr.Phone = ""
		}
	}

	c.addr = &addr
	c.quote = nil // stale options are invalid for the new address

	quote, err := c.deps.Estimator.Estimate(ctx, addr, c.cart.Subtotal(), "")
	if err != nil {
		return nil, err
	}
	c.quote = quote

	c.persistResumeLocked(ctx)
	c.state = StateAddressSelected

	return quote, nil
}

// SelectShipping picks an option from the current estimate. Options
// from an earlier address are gone by construction (SelectAddress
// clears the quote), so anything unknown here is stale.
func (c *Controller) SelectShipping(ctx context.Context, optionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeSessionLocked() {
		return ErrPaymentInProgress
	}
	if c.completedLocked() {
		return ErrAlreadyComplete
	}
	if c.quote == nil {
		return ErrNoShippingOptions
	}
	if err := c.quote.Select(optionID, c.cart.Subtotal()); err != nil {
		return ErrStaleShippingOption
	}
	return nil
}

// ChoosePaymentMethod records the method. Choosing mobile money without
// a usable phone moves the checkout into the phone-required state
// instead of failing; no payment session is created.
func (c *Controller) ChoosePaymentMethod(ctx context.Context, method order.PaymentMethod) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeSessionLocked() {
		return ErrPaymentInProgress
	}
	if c.completedLocked() {
		return ErrAlreadyComplete
	}

	switch method {
	case order.MethodMobileMoney, order.MethodOnDelivery:
	default:
		return ErrUnknownPaymentMethod
	}

	c.method = method

	if method == order.MethodMobileMoney && c.resolvedPhoneLocked() == "" {
		c.state = StatePhoneRequired
		return nil
	}
	if c.state == StatePhoneRequired {
		c.state = StateAddressSelected
	}
	return nil
}

// ProvidePhone attaches a phone number locally. The patched address
// copy supersedes the backend's until resynchronized.
func (c *Controller) ProvidePhone(ctx context.Context, raw string) error {
	canonical, err := phone.Normalize(raw)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.providedPhone = canonical
	if c.addr != nil {
		c.addr.Phone = canonical
	}
	c.persistResumeLocked(ctx)

	if c.state == StatePhoneRequired {
		c.state = StateAddressSelected
	}
	return nil
}

// SetInstructions records delivery instructions for the draft.
func (c *Controller) SetInstructions(instructions string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instructions = instructions
}

// SubmitOrder composes the draft and submits it. On-delivery orders are
// finalized immediately; mobile-money orders start a payment session.
// order.ErrPhoneRequired is a prompt, not a failure: the checkout moves
// to the phone-required state and stays submittable.
func (c *Controller) SubmitOrder(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeSessionLocked() {
		return ErrPaymentInProgress
	}
	if c.completedLocked() {
		return ErrAlreadyComplete
	}
	if c.method == "" {
		return ErrUnknownPaymentMethod
	}

	subtotal := c.cart.Subtotal()
	var shippingCost float64
	var shippingMethodID string
	if c.quote != nil {
		shippingCost = c.quote.Cost
		shippingMethodID = c.quote.SelectedID
	}

	draft := order.Draft{
		Items:            c.cart.Lines,
		AddressID:        c.addressIDLocked(),
		PaymentMethod:    c.method,
		ShippingCost:     shippingCost,
		ShippingMethodID: shippingMethodID,
		Subtotal:         subtotal,
		Total:            subtotal + shippingCost,
		Instructions:     c.instructions,
		ContactPhone:     c.resolvedPhoneLocked(),
	}

	ref, err := c.deps.Composer.Submit(ctx, draft)
	if err != nil {
		if errors.Is(err, order.ErrPhoneRequired) {
			c.state = StatePhoneRequired
		}
		// Anything else leaves the checkout in its pre-call shape.
		return err
	}

	c.orderRef = ref

	if c.method == order.MethodOnDelivery {
		c.finalizeLocked(ctx)
		return nil
	}
	return c.startSessionLocked(ctx, ref, draft.Total)
}

// RetryPayment restarts a failed or timed-out payment for the same
// order.
func (c *Controller) RetryPayment(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return ErrNoPaymentSession
	}

	if err := c.session.Retry(ctx); err != nil {
		if errors.Is(err, payment.ErrNotRetryable) {
			return err
		}
		c.state = StatePaymentFailed
		return err
	}
	c.state = StateAwaitingPayment
	return nil
}

// CancelPayment discards the active session. The order, if one was
// created, stays unpaid on the backend.
func (c *Controller) CancelPayment(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return ErrNoPaymentSession
	}

	c.session.Cancel()
	c.session = nil
	c.sessionGen++ // orphan any pending terminal notification
	c.state = StateAddressSelected
	return nil
}

// Snapshot returns a consistent view for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		CheckoutID:      c.id,
		State:           c.state,
		Cart:            c.cart,
		Subtotal:        c.cart.Subtotal(),
		Address:         c.addr,
		Quote:           c.quote,
		PaymentMethod:   c.method,
		ResumeAddressID: c.resumeAddressID,
	}
	if c.orderRef != nil {
		snap.OrderID = c.orderRef.ID
		snap.OrderUnverified = c.orderRef.Synthesized
	}
	if c.session != nil {
		snap.PaymentStatus = c.session.Status()
		snap.PaymentMessage = c.session.FailureMessage()
		snap.PaymentAttempts = c.session.Attempts()
	}
	return snap
}

// ----------------- internals -----------------

func (c *Controller) startSessionLocked(ctx context.Context, ref *order.Ref, amount float64) error {
	// At most one active session: a new one displaces the old.
	if c.session != nil {
		c.session.Cancel()
		c.session = nil
	}
	c.sessionGen++
	gen := c.sessionGen

	sess, err := payment.Start(ctx, c.deps.Gateway, c.deps.Payment,
		ref.ID, amount, c.resolvedPhoneLocked(),
		func(st payment.Status) { c.onSessionTerminal(gen, st) },
	)
	if sess != nil {
		c.session = sess
	}
	if err != nil {
		if sess != nil {
			// Initiation was rejected; the session is retryable.
			c.state = StatePaymentFailed
		}
		return err
	}

	c.state = StateAwaitingPayment
	return nil
}

func (c *Controller) onSessionTerminal(gen uint64, st payment.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Superseded session: its outcome no longer applies.
	if gen != c.sessionGen {
		return
	}

	switch st {
	case payment.StatusCompleted:
		c.finalizedStateLocked()
		c.clearCartLocked(context.Background())
		c.clearResumeLocked()
	case payment.StatusFailed:
		c.state = StatePaymentFailed
	case payment.StatusTimedOut:
		c.state = StatePaymentTimeout
	}
}

// finalizeLocked completes an on-delivery order: no payment session is
// involved, the order goes straight to finalization.
func (c *Controller) finalizeLocked(ctx context.Context) {
	if err := c.deps.Gateway.Complete(ctx, c.orderRef.ID); err != nil {
		// The order exists; finalization is retried out of band.
		logger.FromCtx(ctx).Error("order finalization failed",
			zap.String("service", "Checkout"),
			zap.String("order_id", c.orderRef.ID),
			zap.Error(err),
		)
	}
	c.finalizedStateLocked()
	c.clearCartLocked(ctx)
	c.clearResumeLocked()
}

func (c *Controller) finalizedStateLocked() {
	if c.orderRef != nil && c.orderRef.Synthesized {
		c.state = StateOrderCompleteUnverified
		return
	}
	c.state = StateOrderComplete
}

// clearCartLocked empties the backend cart after a terminal successful
// order. Best effort; a leftover cart is only cosmetic.
func (c *Controller) clearCartLocked(ctx context.Context) {
	if err := c.deps.Backend.Delete(ctx, "/cart"); err != nil {
		logger.FromCtx(ctx).Warn("cart cleanup failed",
			zap.String("service", "Checkout"),
			zap.Error(err),
		)
	}
	c.cart = order.Cart{}
}

func (c *Controller) persistResumeLocked(ctx context.Context) {
	if c.deps.Store == nil {
		return
	}
	state := &ResumeState{AddressID: c.addressIDLocked(), Phone: c.providedPhone}
	if err := c.deps.Store.Set(ctx, c.id, state); err != nil {
		logger.FromCtx(ctx).Warn("persisting resume state failed",
			zap.String("service", "Checkout"),
			zap.Error(err),
		)
	}
}

func (c *Controller) clearResumeLocked() {
	if c.deps.Store == nil {
		return
	}
	_ = c.deps.Store.Delete(context.Background(), c.id)
}

func (c *Controller) addressIDLocked() string {
	if c.addr == nil {
		return ""
	}
	return c.addr.ID
}

// resolvedPhoneLocked prefers a locally provided number over the
// address's own, normalizing either.
func (c *Controller) resolvedPhoneLocked() string {
	if c.providedPhone != "" {
		return c.providedPhone
	}
	if c.addr != nil && c.addr.Phone != "" {
		if canonical, err := phone.Normalize(c.addr.Phone); err == nil {
			return canonical
		}
	}
	return ""
}

func (c *Controller) activeSessionLocked() bool {
	return c.session != nil && !c.session.Status().Terminal()
}

func (c *Controller) completedLocked() bool {
	return c.state == StateOrderComplete || c.state == StateOrderCompleteUnverified
}
