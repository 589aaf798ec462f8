package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	videodomain "github.com/coursehive/coursehive/internal/video/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateVideoUpload(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req videodomain.CreateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	resp, err := s.videoSvc.CreateUpload(c.Request.Context(), memberID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetVideo(c *gin.Context) {
	videoID, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.videoSvc.Get(c.Request.Context(), videoID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CloseVideo(c *gin.Context) {
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

	if err := s.videoSvc.Close(c.Request.Context(), memberID, videoID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type uploadCallbackRequest struct {
	VideoID   string `json:"video_id"`
	FileKey   string `json:"file_key"`
	Expires   int64  `json:"expires"`
	Signature string `json:"signature"`
}

// UploadCallback is hit by the storage frontend once the file landed. The
// signature proves the callback refers to a URL we actually issued.
func (s *Server) UploadCallback(c *gin.Context) {
	var req uploadCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !s.signer.Verify(req.FileKey, req.Expires, req.Signature, s.clock.Now()) {
		AbortWithError(c, ErrForbidden)
		return
	}

	videoID, err := snowflake.ParseString(strings.TrimSpace(req.VideoID))
	if err != nil {
		AbortWithError(c, newValidationError("video_id", "invalid_video_id", "invalid video_id"))
		return
	}

	if err := s.videoSvc.ConfirmUpload(c.Request.Context(), videoID, req.FileKey); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
