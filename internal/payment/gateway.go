package payment

import (
	"context"
	"fmt"
	"net/url"

	"dawakart/internal/backend"
	"dawakart/internal/logger"

	"go.uber.org/zap"
)

// Gateway is the external contract of the mobile-money payment flow:
// start a charge, poll its status, finalize the paid order.
type Gateway interface {
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error)
	Status(ctx context.Context, checkoutRequestID string) (*StatusResult, error)
	Complete(ctx context.Context, orderID string) error
}

type httpGateway struct {
	client *backend.Client
}

func NewHTTPGateway(client *backend.Client) Gateway {
	return &httpGateway{client: client}
}

func (g *httpGateway) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Payment"),
		zap.String("order_id", req.OrderID),
		zap.Float64("amount", req.Amount),
	)

	log.Info("initiating mobile money charge")

	var res InitiateResult
	if err := g.client.PostJSON(ctx, "/payments/initiate", req, &res); err != nil {
		log.Error("charge initiation failed", zap.Error(err))
		return nil, fmt.Errorf("initiate payment: %w", err)
	}
	if res.CheckoutRequestID == "" {
		log.Error("gateway accepted charge without a checkout request id")
		return nil, fmt.Errorf("initiate payment: missing checkoutRequestId")
	}

	log.Info("charge accepted", zap.String("checkout_request_id", res.CheckoutRequestID))
	return &res, nil
}

func (g *httpGateway) Status(ctx context.Context, checkoutRequestID string) (*StatusResult, error) {
	var res StatusResult
	path := "/payments/" + url.PathEscape(checkoutRequestID) + "/status"
	if err := g.client.GetJSON(ctx, path, "", &res); err != nil {
		return nil, fmt.Errorf("poll payment status: %w", err)
	}
	return &res, nil
}

func (g *httpGateway) Complete(ctx context.Context, orderID string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Payment"),
		zap.String("order_id", orderID),
	)

	path := "/payments/" + url.PathEscape(orderID) + "/complete"
	if err := g.client.PostJSON(ctx, path, nil, nil); err != nil {
		log.Error("order finalization failed", zap.Error(err))
		return fmt.Errorf("complete order: %w", err)
	}

	log.Info("order finalized")
	return nil
}
