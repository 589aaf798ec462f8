package server

import (
	"net/http"
	"strings"

	authdomain "github.com/coursehive/coursehive/internal/auth/domain"
	"github.com/gin-gonic/gin"
)

type VerificationRequest struct {
	Email string `json:"email"`
}

type ConfirmVerificationRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (s *Server) RequestVerification(c *gin.Context) {
	var req VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authSvc.RequestVerification(c.Request.Context(), strings.TrimSpace(req.Email)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ConfirmVerification(c *gin.Context) {
	var req ConfirmVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authSvc.VerifyEmail(c.Request.Context(), strings.TrimSpace(req.Email), strings.TrimSpace(req.Code)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Signup(c *gin.Context) {
	var req authdomain.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	session, err := s.authSvc.Signup(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.setSessionCookie(c, session)
	c.JSON(http.StatusOK, gin.H{"data": session})
}

func (s *Server) Login(c *gin.Context) {
	var req authdomain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	session, err := s.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.setSessionCookie(c, session)
	c.JSON(http.StatusOK, gin.H{"data": session})
}

func (s *Server) Logout(c *gin.Context) {
	if err := s.authSvc.Logout(c.Request.Context(), sessionToken(c)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.SetCookie(sessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Me(c *gin.Context) {
	memberID, ok := currentMemberID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	profile, err := s.memberSvc.GetProfile(c.Request.Context(), memberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (s *Server) setSessionCookie(c *gin.Context, session authdomain.SessionResponse) {
	maxAge := int(session.ExpiresAt.Sub(s.clock.Now()).Seconds())
	if maxAge <= 0 {
		return
	}
	c.SetCookie(sessionCookieName, session.Token, maxAge, "/", "", !s.cfg.IsDevelopment(), true)
}
