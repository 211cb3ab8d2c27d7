package service

import (
	"context"
	"testing"

	"auction-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPlaceBidRejectsNonPositiveAmounts(t *testing.T) {
	// Non-positive amounts are screened before the store is touched, so
	// a zero-value service is enough here.
	s := &BidService{}

	for _, amount := range []string{"0", "-1", "-250.50"} {
		_, err := s.PlaceBid(context.Background(), &PlaceBidRequest{
			LotID:    "lot-1",
			BidderID: "bidder-1",
			Amount:   decimal.RequireFromString(amount),
		})
		assert.ErrorIs(t, err, models.ErrInvalidAmount, "amount %s", amount)
	}
}

func TestRejectionReason(t *testing.T) {
	tests := []struct {
		err    error
		reason string
	}{
		{models.ErrBidTooLow, "too_low"},
		{models.ErrLotNotFound, "lot_not_found"},
		{models.ErrLotNotActive, "lot_not_active"},
		{models.ErrAuctionNotActive, "auction_not_active"},
		{models.ErrInvalidAmount, "invalid_amount"},
		{models.ErrConflict, "conflict"},
		{models.ErrStoreUnavailable, "store_unavailable"},
		{assert.AnError, "error"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.reason, rejectionReason(tt.err))
	}
}
