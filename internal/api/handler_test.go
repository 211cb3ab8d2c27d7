package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"auction-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func responseFor(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	respondError(c, err)
	return w
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{models.ErrAuctionNotFound, http.StatusNotFound},
		{models.ErrLotNotFound, http.StatusNotFound},
		{models.ErrPaymentNotFound, http.StatusNotFound},
		{models.ErrBidTooLow, http.StatusUnprocessableEntity},
		{models.ErrInvalidAmount, http.StatusBadRequest},
		{models.ErrLotNotActive, http.StatusConflict},
		{models.ErrAuctionNotActive, http.StatusConflict},
		{models.ErrInvalidState, http.StatusConflict},
		{models.ErrConflict, http.StatusServiceUnavailable},
		{models.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := responseFor(tt.err)
		assert.Equal(t, tt.status, w.Code, "%v", tt.err)
	}

	// Wrapped errors keep their mapping.
	w := responseFor(fmt.Errorf("placing bid: %w", models.ErrBidTooLow))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "bid_too_low")
}

func TestRespondErrorRetryHint(t *testing.T) {
	w := responseFor(models.ErrConflict)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"retry":true`)
}

func TestRejectedBidKeepsIdempotencyKey(t *testing.T) {
	// A too-low bid must not consume the Idempotency-Key: the bidder's
	// corrected resubmission under the same key has to go through. The
	// key is recorded only after a bid is accepted.
	t.Skip("Integration test - requires database, redis and kafka")

	// Outline: build the full handler against test backends, POST a bid
	// below the current high with Idempotency-Key K (expect 422), then
	// POST a higher bid with the same K (expect 201), then replay the
	// accepted bid with K (expect 409 duplicate).
}
