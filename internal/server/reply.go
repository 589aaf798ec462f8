package server

import (
	"net/http"
	"strings"

	replydomain "github.com/coursehive/coursehive/internal/reply/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateReply(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	videoID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req replydomain.CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Content = strings.TrimSpace(req.Content)

	resp, err := s.replySvc.Create(c.Request.Context(), memberID, videoID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListReplies(c *gin.Context) {
	videoID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	replies, err := s.replySvc.ListByVideo(c.Request.Context(), videoID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": replies})
}
