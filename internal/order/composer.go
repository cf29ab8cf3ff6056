// Package order validates a checkout draft and submits it to the order
// backend. Precondition checks are strict (local mistakes block before
// any network call); response interpretation is deliberately lenient
// (backend shape variance must not fail an order that was likely
// created).
package order

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dawakart/internal/backend"
	"dawakart/internal/logger"
	"dawakart/internal/phone"

	"go.uber.org/zap"
)

type Composer struct {
	client *backend.Client
	now    func() time.Time
}

func NewComposer(client *backend.Client) *Composer {
	return &Composer{client: client, now: time.Now}
}

// Submit validates the draft, posts it, and interprets the response.
// Returns ErrEmptyCart / ErrMissingAddress / ErrPhoneRequired before
// touching the network; a *BackendRejectedError on definitive
// rejection; a wrapped transport error otherwise.
func (c *Composer) Submit(ctx context.Context, draft Draft) (*Ref, error) {
	if len(draft.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if draft.AddressID == "" {
		return nil, ErrMissingAddress
	}

	contactPhone := draft.ContactPhone
	if draft.PaymentMethod == MethodMobileMoney {
		canonical, err := phone.Normalize(contactPhone)
		if err != nil {
			return nil, ErrPhoneRequired
		}
		contactPhone = canonical
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("address_id", draft.AddressID),
		zap.String("payment_method", string(draft.PaymentMethod)),
		zap.Float64("total", draft.Total),
	)

	body := payload{
		Items:                draft.Items,
		AddressID:            draft.AddressID,
		PaymentMethod:        string(draft.PaymentMethod),
		ShippingCost:         draft.ShippingCost,
		ShippingMethodID:     draft.ShippingMethodID,
		Subtotal:             draft.Subtotal,
		TotalAmount:          draft.Total,
		DeliveryInstructions: draft.Instructions,
		ContactPhone:         contactPhone,
	}

	log.Info("submitting order")

	status, respBody, err := c.client.Post(ctx, "/orders", body)
	if err != nil {
		log.Error("order submission failed", zap.Error(err))
		return nil, fmt.Errorf("submit order: %w", err)
	}

	return c.interpret(log, status, respBody)
}

// interpret decides success and locates the order id. Success is any
// of: an explicit success flag, an HTTP created status, or a locatable
// id. Apparent success with no recoverable id becomes a synthesized
// placeholder rather than an error, because the order may genuinely
// exist. Only a 4xx counts as a definitive rejection.
func (c *Composer) interpret(log *zap.Logger, status int, body []byte) (*Ref, error) {
	var tree map[string]any
	if err := json.Unmarshal(body, &tree); err != nil {
		tree = nil
	}

	// 5xx means the backend itself is struggling, not that it declined
	// the order. That is a transient failure the customer can retry.
	if status >= 500 {
		log.Warn("order endpoint unavailable", zap.Int("status", status))
		return nil, fmt.Errorf("submit order: %w", &backend.APIError{Status: status, Body: body})
	}

	if status < 200 || status > 299 {
		msg := rejectionMessage(tree)
		log.Warn("order rejected",
			zap.Int("status", status),
			zap.String("message", msg),
		)
		return nil, &BackendRejectedError{Message: msg}
	}

	id, found := "", false
	if tree != nil {
		id, found = extractOrderID(tree)
	}

	created := status == http.StatusCreated
	flagged := tree != nil && looksSuccessful(tree)

	switch {
	case found:
		log.Info("order created", zap.String("order_id", id))
		return &Ref{ID: id}, nil
	case created || flagged:
		// Soft success: id unrecoverable despite an apparent success.
		ref := &Ref{ID: placeholderID(c.now()), Synthesized: true}
		log.Warn("order likely created but id not found in response",
			zap.String("placeholder_id", ref.ID),
			zap.ByteString("response", body),
		)
		return ref, nil
	default:
		log.Warn("order response carried no success signal", zap.ByteString("response", body))
		return nil, &BackendRejectedError{Message: rejectionMessage(tree)}
	}
}

func rejectionMessage(tree map[string]any) string {
	if tree == nil {
		return ""
	}
	for _, key := range []string{"message", "error", "detail", "description"} {
		if v, ok := tree[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
