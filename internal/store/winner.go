package store

import "auction-service/internal/models"

// PickWinner selects the winning bid from a lot's committed bid set:
// highest amount, ties broken by earliest bid time. Strictly increasing
// bid enforcement makes true ties impossible at insert time, but the
// tie-break is still defined so settlement stays deterministic if the
// bid set was produced some other way. Returns nil for an empty set.
func PickWinner(bids []models.Bid) *models.Bid {
	var winner *models.Bid
	for i := range bids {
		b := &bids[i]
		if winner == nil {
			winner = b
			continue
		}
		if b.Amount.GreaterThan(winner.Amount) {
			winner = b
			continue
		}
		if b.Amount.Equal(winner.Amount) && b.BidTime.Before(winner.BidTime) {
			winner = b
		}
	}
	return winner
}
