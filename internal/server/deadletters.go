package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"net/http"
	"strconv"
)

const defaultDeadLetterPageSize = 50

// HandleDeadLetters exposes the dead-letter store for manual inspection. Debug only.
func (s *Server) HandleDeadLetters(c *gin.Context) {
	limit := defaultDeadLetterPageSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}

		limit = parsed
	}

	letters, err := s.deadletters.List(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list dead letters", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list dead letters"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":        len(letters),
		"dead_letters": letters,
	})
}
