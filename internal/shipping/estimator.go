// Package shipping quotes delivery costs for an address. The backend
// quote is authoritative; any remote failure downgrades silently to the
// offline zone table so checkout never stalls on shipping.
package shipping

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"dawakart/internal/address"
	"dawakart/internal/backend"
	"dawakart/internal/logger"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var ErrMissingAddress = errors.New("missing address id")

type Estimator struct {
	client  *backend.Client
	breaker *gobreaker.CircuitBreaker[[]Option]
}

func NewEstimator(client *backend.Client) *Estimator {
	breaker := gobreaker.NewCircuitBreaker[[]Option](gobreaker.Settings{
		Name:        "shipping-estimate",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &Estimator{client: client, breaker: breaker}
}

// Estimate returns a shipping quote for the address. preferredID keeps
// an earlier selection when it is still present and available in the
// fresh option set. The only caller error is a missing address id;
// remote failures never escape.
func (e *Estimator) Estimate(ctx context.Context, addr address.Address, cartSubtotal float64, preferredID string) (*Quote, error) {
	if addr.ID == "" {
		return nil, ErrMissingAddress
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Shipping"),
		zap.String("address_id", addr.ID),
	)

	options, err := e.breaker.Execute(func() ([]Option, error) {
		return e.fetchRemote(ctx, addr.ID)
	})
	if err != nil {
		log.Warn("remote shipping estimate unavailable, using zone table", zap.Error(err))
		return e.fallbackQuote(addr, cartSubtotal), nil
	}

	quote := &Quote{Options: options, Source: SourceRemote}
	quote.SelectedID = pickOption(options, preferredID)
	applyFreeRule(quote, cartSubtotal)

	return quote, nil
}

func (e *Estimator) fetchRemote(ctx context.Context, addressID string) ([]Option, error) {
	var options []Option
	query := url.Values{"addressId": {addressID}}.Encode()
	if err := e.client.GetJSON(ctx, "/shipping/estimate", query, &options); err != nil {
		return nil, err
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("empty option set for address %s", addressID)
	}
	return options, nil
}

// fallbackQuote derives a quote from the zone table. Deterministic for
// fixed (address, subtotal).
func (e *Estimator) fallbackQuote(addr address.Address, cartSubtotal float64) *Quote {
	zone := zoneFor(addr.Area, addr.City)

	options := []Option{{
		ID:               "zone-" + zone.Name,
		Name:             zone.Name + " delivery",
		Cost:             zone.BasePrice,
		ETADescription:   zone.etaDescription(),
		MinFreeThreshold: zone.MinFreeThreshold,
		Available:        true,
	}}
	if zone.Express {
		options = append(options, Option{
			ID:               "zone-" + zone.Name + "-express",
			Name:             zone.Name + " express",
			Cost:             zone.BasePrice * 2,
			ETADescription:   "Express delivery",
			MinFreeThreshold: zone.MinFreeThreshold,
			Available:        zone.SameDay,
		})
	}

	quote := &Quote{Options: options, Source: SourceFallback}
	quote.SelectedID = pickOption(options, "")
	applyFreeRule(quote, cartSubtotal)

	return quote
}

// pickOption keeps the preferred option when it is still valid,
// otherwise takes the first available one.
func pickOption(options []Option, preferredID string) string {
	if preferredID != "" {
		for _, o := range options {
			if o.ID == preferredID && o.Available {
				return o.ID
			}
		}
	}
	for _, o := range options {
		if o.Available {
			return o.ID
		}
	}
	return ""
}

// applyFreeRule is identical on the remote and fallback paths: meeting
// the selected option's threshold zeroes the cost.
func applyFreeRule(q *Quote, cartSubtotal float64) {
	sel := q.Selected()
	if sel == nil {
		return
	}
	if sel.MinFreeThreshold > 0 && cartSubtotal >= sel.MinFreeThreshold {
		q.Cost = 0
		q.IsFree = true
		return
	}
	q.Cost = sel.Cost
}
