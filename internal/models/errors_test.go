package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrConflict))
	assert.True(t, IsRetryable(ErrStoreUnavailable))

	// Wrapped transient errors stay retryable.
	assert.True(t, IsRetryable(fmt.Errorf("tx aborted: %w", ErrConflict)))

	for _, err := range []error{
		ErrBidTooLow, ErrInvalidAmount, ErrInvalidState,
		ErrLotNotFound, ErrAuctionNotFound, ErrLotNotActive,
		ErrAuctionNotActive, ErrPaymentNotFound,
	} {
		assert.False(t, IsRetryable(err), "%v", err)
	}
}
