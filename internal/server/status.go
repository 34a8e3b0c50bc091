package server

import (
	"context"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"net/http"
	"time"
)

func (s *Server) HandleStatus(c *gin.Context) {
	ctx, cancelFunc := context.WithTimeout(c.Request.Context(), time.Second*5)
	defer cancelFunc()

	if err := s.mirror.Ping(ctx); err != nil {
		s.logger.Error("Mirror node health check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "mirror node unreachable"})
		return
	}

	deadLetters, err := s.deadletters.Count(ctx)
	if err != nil {
		s.logger.Error("Failed to count dead letters", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "error": "dead-letter store unreachable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"dead_letters": deadLetters,
	})
}
