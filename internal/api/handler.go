package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"auction-service/internal/models"
	"auction-service/internal/redisclient"
	"auction-service/internal/service"
	"auction-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	bidService     *service.BidService
	lifecycle      *service.LifecycleService
	paymentService *service.PaymentService
	redis          *redisclient.Client
}

// NewHandler creates a new HTTP handler
func NewHandler(
	bidService *service.BidService,
	lifecycle *service.LifecycleService,
	paymentService *service.PaymentService,
	redis *redisclient.Client,
) *Handler {
	return &Handler{
		bidService:     bidService,
		lifecycle:      lifecycle,
		paymentService: paymentService,
		redis:          redis,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/auctions", h.listAuctions)
		v1.POST("/auctions", h.createAuction)
		v1.GET("/auctions/:id", h.getAuction)
		v1.POST("/auctions/:id/lots", h.addLot)
		v1.POST("/auctions/:id/activate", h.activateAuction)
		v1.POST("/auctions/:id/close", h.closeAuction)
		v1.POST("/sweep", h.activateDueAuctions)

		v1.GET("/lots/:id/bids", h.getBidHistory)
		v1.POST("/lots/:id/bids", h.placeBid)
		v1.POST("/lots/:id/settle", h.settleLot)

		v1.GET("/bidders/:id/bids", h.getBidderHistory)
		v1.GET("/bidders/:id/winnings", h.getWinnings)

		v1.GET("/payments/:id", h.getPayment)
		v1.POST("/payments/:id/confirm", h.confirmPayment)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// placeBid handles bid submission. The bidder identity comes from the
// already-authenticated session layer upstream; it is trusted as given.
func (h *Handler) placeBid(c *gin.Context) {
	var req service.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	req.LotID = c.Param("id")

	// Double-submit guard for impatient clicks; a replayed bid would be
	// rejected as too low anyway since it no longer beats itself.
	key := c.GetHeader("Idempotency-Key")
	if key != "" {
		seen, err := h.redis.CheckIdempotencyKey(c.Request.Context(), key)
		if err == nil && seen {
			c.JSON(http.StatusConflict, gin.H{"error": "Duplicate bid submission"})
			return
		}
	}

	bid, err := h.bidService.PlaceBid(c.Request.Context(), &req)
	if err != nil {
		// A rejected bid burns nothing: the same key stays usable for
		// the corrected resubmission.
		respondError(c, err)
		return
	}

	if key != "" {
		_ = h.redis.SetIdempotencyKey(c.Request.Context(), key, bid.ID, 10*time.Minute)
	}

	c.JSON(http.StatusCreated, bid)
}

// getBidHistory returns a lot's bids with its current high bid
func (h *Handler) getBidHistory(c *gin.Context) {
	lotID := c.Param("id")

	bids, err := h.bidService.GetBidHistory(c.Request.Context(), lotID)
	if err != nil {
		respondError(c, err)
		return
	}

	highest, hasBids, err := h.bidService.GetCurrentHighestBid(c.Request.Context(), lotID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bids":        bids,
		"highest_bid": highest,
		"has_bids":    hasBids,
	})
}

// getBidderHistory returns a bidder's bids across lots
func (h *Handler) getBidderHistory(c *gin.Context) {
	bids, err := h.bidService.GetBidderHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bids": bids})
}

// listAuctions lists auctions with lot counts
func (h *Handler) listAuctions(c *gin.Context) {
	auctions, err := h.lifecycle.ListAuctions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auctions": auctions})
}

// createAuction handles admin auction creation
func (h *Handler) createAuction(c *gin.Context) {
	var req service.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	auction, err := h.lifecycle.CreateAuction(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, auction)
}

// getAuction returns an auction with its lots and current high bids
func (h *Handler) getAuction(c *gin.Context) {
	auction, lots, err := h.lifecycle.GetAuction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"auction": auction,
		"lots":    lots,
	})
}

// addLot assigns an artwork to an auction as its next lot
func (h *Handler) addLot(c *gin.Context) {
	var req struct {
		ArtworkID string `json:"artwork_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	lot, err := h.lifecycle.AddLot(c.Request.Context(), c.Param("id"), req.ArtworkID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

// activateAuction handles the explicit upcoming -> active transition
func (h *Handler) activateAuction(c *gin.Context) {
	if err := h.lifecycle.ActivateAuction(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.AuctionStatusActive})
}

// activateDueAuctions handles the idempotent sweep trigger
func (h *Handler) activateDueAuctions(c *gin.Context) {
	count, err := h.lifecycle.ActivateDueAuctions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activated": count})
}

// closeAuction handles admin closure; settlement happens in the same
// store transaction
func (h *Handler) closeAuction(c *gin.Context) {
	result, err := h.lifecycle.CloseAuction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// settleLot re-runs settlement for one lot of a closed auction
func (h *Handler) settleLot(c *gin.Context) {
	settlement, err := h.lifecycle.SettleLot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settlement)
}

// getPayment returns a payment by ID
func (h *Handler) getPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// confirmPayment transitions a payment pending -> completed
func (h *Handler) confirmPayment(c *gin.Context) {
	if err := h.paymentService.ConfirmPayment(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.PaymentStatusCompleted})
}

// getWinnings returns a bidder's payment obligations
func (h *Handler) getWinnings(c *gin.Context) {
	payments, err := h.paymentService.GetWinnings(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// respondError maps core errors to HTTP responses. A too-low bid is
// reported as exactly that, distinct from structural errors, so the
// caller can prompt the right corrective action. Transient errors get
// a retry hint.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrAuctionNotFound),
		errors.Is(err, models.ErrLotNotFound),
		errors.Is(err, models.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, models.ErrBidTooLow):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Bid amount must exceed the current highest bid",
			"reason": "bid_too_low",
		})

	case errors.Is(err, models.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, models.ErrLotNotActive),
		errors.Is(err, models.ErrAuctionNotActive),
		errors.Is(err, models.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case models.IsRetryable(err):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": err.Error(),
			"retry": true,
		})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
