package store

import (
	"testing"
	"time"

	"auction-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bidAt(bidder string, amount string, t time.Time) models.Bid {
	return models.Bid{
		ID:       "bid-" + bidder + "-" + amount,
		LotID:    "lot-1",
		BidderID: bidder,
		Amount:   decimal.RequireFromString(amount),
		BidTime:  t,
	}
}

func TestPickWinnerHighestAmount(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	bids := []models.Bid{
		bidAt("X", "100", t1),
		bidAt("Y", "150", t2),
	}

	winner := PickWinner(bids)
	require.NotNil(t, winner)
	assert.Equal(t, "Y", winner.BidderID)
	assert.True(t, winner.Amount.Equal(decimal.RequireFromString("150")))
}

func TestPickWinnerEmpty(t *testing.T) {
	assert.Nil(t, PickWinner(nil))
	assert.Nil(t, PickWinner([]models.Bid{}))
}

func TestPickWinnerTieBrokenByEarliestTime(t *testing.T) {
	// Equal amounts cannot be committed through bid acceptance, but the
	// tie-break must still be deterministic: first to reach the amount
	// wins.
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)

	bids := []models.Bid{
		bidAt("late", "300", t2),
		bidAt("early", "300", t1),
	}

	winner := PickWinner(bids)
	require.NotNil(t, winner)
	assert.Equal(t, "early", winner.BidderID)
}

func TestPickWinnerOrderIndependent(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	bids := []models.Bid{
		bidAt("A", "250", t1),
		bidAt("B", "300", t1.Add(time.Minute)),
		bidAt("C", "275.50", t1.Add(2*time.Minute)),
	}
	reversed := []models.Bid{bids[2], bids[1], bids[0]}

	assert.Equal(t, "B", PickWinner(bids).BidderID)
	assert.Equal(t, "B", PickWinner(reversed).BidderID)
}
