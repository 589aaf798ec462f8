package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/coursehive/coursehive/internal/order/domain"
	"github.com/gin-gonic/gin"
)

type CreateOrderRequest struct {
	VideoIDs  []string `json:"video_ids"`
	UsePoints int64    `json:"use_points"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	videoIDs := make([]snowflake.ID, 0, len(req.VideoIDs))
	for _, raw := range req.VideoIDs {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, newValidationError("video_ids", "invalid_video_ids", "invalid video_ids"))
			return
		}
		videoIDs = append(videoIDs, id)
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), memberID, orderdomain.CreateOrderRequest{
		VideoIDs:  videoIDs,
		UsePoints: req.UsePoints,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrder(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.orderSvc.Get(c.Request.Context(), memberID, orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelOrder(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.orderSvc.Cancel(c.Request.Context(), memberID, orderID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
