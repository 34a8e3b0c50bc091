package server

import (
	"errors"
	"github.com/Zolldyk/chaintrace-sub003/pkg/mirror"
	"github.com/Zolldyk/chaintrace-sub003/pkg/query"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"net/http"
)

func (s *Server) HandleGetEvents(c *gin.Context) {
	productID := c.Param("product_id")
	if productID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing product id"})
		return
	}

	filters := query.ByProduct(productID)
	filters = appendOptionalFilter(filters, query.PropertyEventType, query.OperatorEqual, c.Query("event_type"))
	filters = appendOptionalFilter(filters, query.PropertyActorId, query.OperatorEqual, c.Query("actor_id"))
	filters = appendOptionalFilter(filters, query.PropertyTimestamp, query.OperatorAfter, c.Query("after"))
	filters = appendOptionalFilter(filters, query.PropertyTimestamp, query.OperatorBefore, c.Query("before"))

	result, err := s.queries.Fetch(c.Request.Context(), s.config.Hedera.TopicID, filters)
	if err != nil {
		if errors.Is(err, query.ErrInvalidFilter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		status := http.StatusBadGateway
		if errors.Is(err, mirror.ErrTimeout) {
			status = http.StatusGatewayTimeout
		}

		s.logger.Error("Failed to fetch events", zap.Error(err), zap.String("product_id", productID))
		c.JSON(status, gin.H{"error": "failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func appendOptionalFilter(filters []query.Filter, property query.FilterProperty, operator query.Operator, value string) []query.Filter {
	if value == "" {
		return filters
	}

	return append(filters, query.Filter{
		Property: property,
		Operator: operator,
		Value:    value,
	})
}
