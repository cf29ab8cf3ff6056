package payment

import "errors"

var (
	// -- Local validation (no network call made) --
	ErrInvalidAmount = errors.New("amount outside gateway bounds")

	// -- Session control --
	ErrNotRetryable = errors.New("session is not in a retryable state")
)

const (
	// genericFailureMessage is used when the gateway reports failure
	// without a description of its own.
	genericFailureMessage = "Payment was not completed"

	// timeoutMessage is deliberately distinct from a gateway decline:
	// the charge may still be sitting on the customer's phone.
	timeoutMessage = "Payment confirmation timed out. Check your phone and retry."
)
