package checkout

import "errors"

var (
	// -- Selection & state --
	ErrStaleShippingOption = errors.New("shipping option is not in the current option set")
	ErrNoShippingOptions   = errors.New("no shipping estimate available yet")
	ErrPaymentInProgress   = errors.New("a payment is already in progress")
	ErrNoPaymentSession    = errors.New("no payment session to act on")
	ErrAlreadyComplete     = errors.New("checkout already completed")

	// -- Input --
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
)
