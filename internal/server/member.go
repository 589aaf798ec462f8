package server

import (
	"net/http"
	"strings"

	memberdomain "github.com/coursehive/coursehive/internal/member/domain"
	"github.com/gin-gonic/gin"
)

type UpdateProfileRequest struct {
	Nickname  string  `json:"nickname"`
	ImageFile *string `json:"image_file"`
}

func (s *Server) UpdateProfile(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Nickname) == "" {
		AbortWithError(c, newValidationError("nickname", "invalid_nickname", "invalid nickname"))
		return
	}

	err := s.memberSvc.UpdateProfile(c.Request.Context(), memberID, memberdomain.UpdateProfileRequest{
		Nickname:  strings.TrimSpace(req.Nickname),
		ImageFile: req.ImageFile,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ListMyRewards(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	rewards, err := s.rewardSvc.ListByMember(c.Request.Context(), memberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rewards})
}

func (s *Server) ListMyOrders(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orders, err := s.orderSvc.ListByMember(c.Request.Context(), memberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}
