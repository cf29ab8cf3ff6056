package order

import "errors"

var (
	// -- Precondition failures (user-fixable, no network call made) --
	ErrEmptyCart      = errors.New("cart is empty")
	ErrMissingAddress = errors.New("no delivery address selected")

	// ErrPhoneRequired is promptable, not terminal: the caller should
	// ask for a phone number and resubmit.
	ErrPhoneRequired = errors.New("contact phone required for mobile money")
)

// BackendRejectedError is a definitive rejection from the order
// endpoint, carrying whatever message it gave.
type BackendRejectedError struct {
	Message string
}

func (e *BackendRejectedError) Error() string {
	if e.Message == "" {
		return "order was rejected"
	}
	return "order was rejected: " + e.Message
}
