package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) ToggleCart(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	videoID, err := parseIDParam(c, "videoId")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.cartSvc.Toggle(c.Request.Context(), memberID, videoID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCart(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	items, err := s.cartSvc.List(c.Request.Context(), memberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
