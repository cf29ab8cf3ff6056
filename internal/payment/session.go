// Package payment drives a mobile-money charge to a terminal state.
// The gateway confirms out-of-band (a push to the customer's phone), so
// a Session polls for the outcome under a bounded number of attempts
// and a bounded wall-clock window. A generation counter guards every
// transition: once a session is cancelled, retried, or superseded, late
// poll results are discarded.
package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"dawakart/internal/backend"
	"dawakart/internal/logger"
	"dawakart/internal/phone"

	"go.uber.org/zap"
)

type Session struct {
	gateway Gateway
	cfg     Config

	orderID string
	phone   string
	amount  float64

	onTerminal func(Status)

	mu                sync.Mutex
	checkoutRequestID string
	status            Status
	attempts          int
	startedAt         time.Time
	failureMessage    string
	generation        uint64
	cancelLoop        context.CancelFunc
}

// Start validates locally, initiates the charge, and begins polling.
// Validation violations (amount bounds, phone) return before any
// network call. A gateway rejection returns the session in FAILED state
// together with the error, so the caller can offer a retry.
func Start(ctx context.Context, gw Gateway, cfg Config, orderID string, amount float64, rawPhone string, onTerminal func(Status)) (*Session, error) {
	cfg = withDefaults(cfg)

	if amount <= 0 || amount > cfg.AmountCeiling {
		return nil, ErrInvalidAmount
	}
	canonical, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, err
	}

	s := &Session{
		gateway:    gw,
		cfg:        cfg,
		orderID:    orderID,
		phone:      canonical,
		amount:     amount,
		onTerminal: onTerminal,
		status:     StatusInitiating,
	}

	if err := s.initiate(ctx); err != nil {
		return s, err
	}
	s.startPolling()
	return s, nil
}

func (s *Session) initiate(ctx context.Context) error {
	res, err := s.gateway.Initiate(ctx, InitiateRequest{
		Phone:   s.phone,
		Amount:  s.amount,
		OrderID: s.orderID,
	})
	if err != nil {
		s.mu.Lock()
		s.status = StatusFailed
		s.failureMessage = failureMessageFromErr(err)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.checkoutRequestID = res.CheckoutRequestID
	s.status = StatusPending
	s.attempts = 0
	s.startedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Retry is only valid from FAILED or TIMED_OUT. It reuses the order id
// and starts over with a fresh checkoutRequestId and attempts reset.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.status != StatusFailed && s.status != StatusTimedOut {
		s.mu.Unlock()
		return ErrNotRetryable
	}
	// Invalidate any straggler poll still in flight from the old run.
	s.generation++
	s.stopLocked()
	s.status = StatusInitiating
	s.checkoutRequestID = ""
	s.failureMessage = ""
	s.mu.Unlock()

	logger.FromCtx(ctx).Info("retrying payment",
		zap.String("service", "Payment"),
		zap.String("order_id", s.orderID),
	)

	if err := s.initiate(ctx); err != nil {
		return err
	}
	s.startPolling()
	return nil
}

// Cancel stops polling immediately and invalidates in-flight polls. No
// state transition occurs afterwards; the session is simply discarded
// by its owner. Safe to call repeatedly.
func (s *Session) Cancel() {
	s.mu.Lock()
	s.generation++
	s.stopLocked()
	s.mu.Unlock()
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// FailureMessage is the gateway's own description when it gave one,
// otherwise generic text; timeouts get a distinct message.
func (s *Session) FailureMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failureMessage
}

func (s *Session) CheckoutRequestID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkoutRequestID
}

func (s *Session) OrderID() string { return s.orderID }
func (s *Session) Amount() float64 { return s.amount }
func (s *Session) Phone() string   { return s.phone }

// startPolling launches the poll loop, first stopping any loop already
// running so the session never has duplicate timers.
func (s *Session) startPolling() {
	s.mu.Lock()
	s.stopLocked()
	s.generation++
	gen := s.generation
	id := s.checkoutRequestID
	deadline := s.startedAt.Add(s.cfg.MaxDuration)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelLoop = cancel
	s.mu.Unlock()

	go s.pollLoop(ctx, gen, id, deadline)
}

func (s *Session) stopLocked() {
	if s.cancelLoop != nil {
		s.cancelLoop()
		s.cancelLoop = nil
	}
}

// pollLoop polls strictly sequentially: the next poll is scheduled only
// after the previous result has been applied. The first poll fires
// immediately.
func (s *Session) pollLoop(ctx context.Context, gen uint64, checkoutRequestID string, deadline time.Time) {
	log := logger.L().With(
		zap.String("service", "Payment"),
		zap.String("checkout_request_id", checkoutRequestID),
	)

	for attempt := 1; ; attempt++ {
		res, err := s.gateway.Status(ctx, checkoutRequestID)

		terminal, done := s.applyPoll(gen, attempt, res, err, deadline)
		if done {
			if terminal == StatusCompleted {
				s.finalize(log)
			}
			if terminal != "" {
				s.notifyTerminal(terminal)
			}
			return
		}

		timer := time.NewTimer(s.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if terminal, expired := s.timeoutIfExpired(gen, deadline); expired {
			if terminal != "" {
				s.notifyTerminal(terminal)
			}
			return
		}
	}
}

// applyPoll folds one poll result into the session. Returns the
// terminal status reached (empty when the loop was superseded) and
// whether the loop must stop.
func (s *Session) applyPoll(gen uint64, attempt int, res *StatusResult, pollErr error, deadline time.Time) (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Late result: the session was cancelled, retried, or a newer loop
	// took over while this poll was in flight.
	if gen != s.generation {
		return "", true
	}

	s.attempts = attempt

	if pollErr == nil {
		switch res.classify() {
		case outcomeCompleted:
			s.status = StatusCompleted
			s.stopLocked()
			return StatusCompleted, true
		case outcomeFailed, outcomeCancelled:
			s.status = StatusFailed
			s.failureMessage = res.description()
			if s.failureMessage == "" {
				s.failureMessage = genericFailureMessage
			}
			s.stopLocked()
			return StatusFailed, true
		}
	}
	// Poll errors are transient: keep polling until a cap is hit.

	if attempt >= s.cfg.MaxAttempts || !time.Now().Before(deadline) {
		s.status = StatusTimedOut
		s.failureMessage = timeoutMessage
		s.stopLocked()
		return StatusTimedOut, true
	}

	return "", false
}

// timeoutIfExpired enforces the wall-clock cap between polls, so a
// session never outlives its window waiting on the next interval.
func (s *Session) timeoutIfExpired(gen uint64, deadline time.Time) (Status, bool) {
	if time.Now().Before(deadline) {
		return "", false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return "", true
	}
	s.status = StatusTimedOut
	s.failureMessage = timeoutMessage
	s.stopLocked()
	return StatusTimedOut, true
}

// finalize marks the order paid. Failure here does not demote the
// session: the charge went through, and reversing it is not an option.
// Finalization is logged for separate retry.
func (s *Session) finalize(log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.gateway.Complete(ctx, s.orderID); err != nil {
		log.Error("payment completed but order finalization failed",
			zap.String("order_id", s.orderID),
			zap.Error(err),
		)
		return
	}
	log.Info("payment completed and order finalized", zap.String("order_id", s.orderID))
}

func (s *Session) notifyTerminal(status Status) {
	if s.onTerminal != nil {
		s.onTerminal(status)
	}
}

func failureMessageFromErr(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
	}
	return genericFailureMessage
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.MaxDuration <= 0 {
		cfg.MaxDuration = def.MaxDuration
	}
	if cfg.AmountCeiling <= 0 {
		cfg.AmountCeiling = def.AmountCeiling
	}
	return cfg
}
