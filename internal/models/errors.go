package models

import "errors"

// Core error taxonomy. Handlers and callers distinguish cases with
// errors.Is; ErrConflict and ErrStoreUnavailable are transient and safe
// to retry with the same arguments, the rest are terminal for the request.
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrLotNotFound     = errors.New("lot not found")
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrInvalidState marks an operation against a lot or auction in the
	// wrong lifecycle state (e.g. closing an upcoming auction).
	ErrInvalidState     = errors.New("invalid lifecycle state")
	ErrLotNotActive     = errors.New("lot is not active")
	ErrAuctionNotActive = errors.New("auction is not active")

	ErrInvalidAmount = errors.New("bid amount must be positive")
	// ErrBidTooLow means the amount did not strictly exceed the current
	// highest bid for the lot. Equal amounts are rejected.
	ErrBidTooLow = errors.New("bid amount does not exceed current highest bid")

	// ErrConflict is a transaction aborted under contention; the caller
	// must retry, never drop it silently.
	ErrConflict         = errors.New("concurrent update conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// IsRetryable reports whether the caller may safely retry the whole
// operation with the same arguments.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrStoreUnavailable)
}
