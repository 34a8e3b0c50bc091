package server

import (
	"github.com/Zolldyk/chaintrace-sub003/pkg/types/trace"
	"github.com/gin-gonic/gin"
	"net/http"
)

func (s *Server) HandleSubmit(c *gin.Context) {
	var event trace.EventRecord
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := event.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receipt := s.publisher.Publish(c.Request.Context(), event)
	if !receipt.Success {
		// Retryable failures mean the log was unreachable; terminal failures mean the
		// payload can never succeed as-is.
		status := http.StatusUnprocessableEntity
		if receipt.Error != nil && receipt.Error.Retryable {
			status = http.StatusBadGateway
		}

		c.JSON(status, receipt)
		return
	}

	c.JSON(http.StatusCreated, receipt)
}
