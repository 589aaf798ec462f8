package server

import (
	"net/http"
	"strings"

	channeldomain "github.com/coursehive/coursehive/internal/channel/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) GetChannel(c *gin.Context) {
	channelID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.channelSvc.Get(c.Request.Context(), channelID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMyChannel(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.channelSvc.GetByMember(c.Request.Context(), memberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateMyChannel(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req channeldomain.UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	if err := s.channelSvc.Update(c.Request.Context(), memberID, req); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListChannelVideos(c *gin.Context) {
	channelID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	videos, err := s.videoSvc.ListByChannel(c.Request.Context(), channelID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": videos})
}
