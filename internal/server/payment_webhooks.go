package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/coursehive/coursehive/internal/order/domain"
	"github.com/gin-gonic/gin"
)

const webhookLockTTL = 30 * time.Second

type paymentWebhookRequest struct {
	OrderID    string `json:"order_id"`
	PaymentKey string `json:"payment_key"`
	Status     string `json:"status"`
}

// HandlePaymentWebhook settles the order when the provider reports the
// payment done. Settlement is exactly-once in the database; the lock only
// keeps concurrent deliveries of the same event from racing.
func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	provider := strings.TrimSpace(c.Param("provider"))
	if provider == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req paymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orderID, err := snowflake.ParseString(strings.TrimSpace(req.OrderID))
	if err != nil {
		AbortWithError(c, newValidationError("order_id", "invalid_order_id", "invalid order_id"))
		return
	}

	if !strings.EqualFold(strings.TrimSpace(req.Status), "done") {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	ctx := c.Request.Context()
	lockKey := fmt.Sprintf("webhook:payment:%s", orderID)
	token, acquired, err := s.locker.TryLock(ctx, lockKey, webhookLockTTL)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !acquired {
		c.JSON(http.StatusOK, gin.H{"status": "processing"})
		return
	}
	defer func() {
		_ = s.locker.Release(ctx, lockKey, token)
	}()

	if err := s.orderSvc.Complete(ctx, orderID, strings.TrimSpace(req.PaymentKey)); err != nil {
		// Redelivery of an already settled event acks cleanly.
		if errors.Is(err, orderdomain.ErrAlreadyCompleted) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
