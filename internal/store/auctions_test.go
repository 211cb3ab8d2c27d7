package store

import (
	"testing"

	"auction-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestTransitionIsLegal(t *testing.T) {
	tests := []struct {
		from, to string
		legal    bool
	}{
		{models.AuctionStatusUpcoming, models.AuctionStatusActive, true},
		{models.AuctionStatusActive, models.AuctionStatusClosed, true},

		// no skipping
		{models.AuctionStatusUpcoming, models.AuctionStatusClosed, false},

		// never backward
		{models.AuctionStatusActive, models.AuctionStatusUpcoming, false},
		{models.AuctionStatusClosed, models.AuctionStatusActive, false},
		{models.AuctionStatusClosed, models.AuctionStatusUpcoming, false},

		// no self-loops
		{models.AuctionStatusActive, models.AuctionStatusActive, false},
		{models.AuctionStatusClosed, models.AuctionStatusClosed, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.legal, TransitionIsLegal(tt.from, tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}
