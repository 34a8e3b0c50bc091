package server

import (
	"github.com/Zolldyk/chaintrace-sub003/pkg/integrity"
	"github.com/Zolldyk/chaintrace-sub003/pkg/types/trace"
	"github.com/gin-gonic/gin"
	"net/http"
)

type VerifyRequest struct {
	Events []trace.EventRecord `json:"events"`
}

func (s *Server) HandleVerify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A tampered chain is still a 200: the verdict is data, not an error.
	c.JSON(http.StatusOK, integrity.Verify(req.Events))
}
