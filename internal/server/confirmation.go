package server

import (
	"context"
	"errors"
	"github.com/Zolldyk/chaintrace-sub003/pkg/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"net/http"
	"time"
)

func (s *Server) HandleConfirmation(c *gin.Context) {
	productID := c.Param("product_id")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing product id"})
		return
	}

	deadline := s.config.Hedera.ConfirmationBudget.Duration()
	if raw := c.Query("timeout"); raw != "" {
		var parsed types.MarshalledDuration
		if err := parsed.UnmarshalText([]byte(raw)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid timeout"})
			return
		}

		// The configured budget caps caller-supplied timeouts so one client cannot
		// hold a poll loop open indefinitely.
		deadline = parsed.Duration()
		if deadline > s.config.Hedera.ConfirmationBudget.Duration() {
			deadline = s.config.Hedera.ConfirmationBudget.Duration()
		}
	}

	start := time.Now()
	confirmed, err := s.waiter.Wait(c.Request.Context(), s.config.Hedera.TopicID, productID, deadline)
	if err != nil {
		// Only cancellation reaches here: a plain timeout is a false result.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			c.Status(httpStatusClientClosedRequest)
			return
		}

		s.logger.Error("Confirmation wait failed", zap.Error(err), zap.String("product_id", productID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "confirmation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"confirmed":  confirmed,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
}

// httpStatusClientClosedRequest is nginx's non-standard 499, used when the caller went
// away mid-poll.
const httpStatusClientClosedRequest = 499
