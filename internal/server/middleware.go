package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const (
	sessionCookieName  = "ch_session"
	contextMemberIDKey = "member_id"
)

// sessionToken pulls the opaque token from the Authorization header or the
// session cookie. Header wins.
func sessionToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(sessionCookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		memberID, err := s.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextMemberIDKey, memberID)
		c.Next()
	}
}

// currentMemberID returns the member resolved by AuthRequired.
func currentMemberID(c *gin.Context) (snowflake.ID, bool) {
	value, ok := c.Get(contextMemberIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(snowflake.ID)
	return id, ok
}

// Auth endpoints that mint codes or check passwords are throttled per client
// IP. Roughly ten requests a minute with a small burst.
const (
	authRateLimitPerSecond = 10.0 / 60.0
	authRateLimitBurst     = 5
)

func (s *Server) RateLimited(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:auth:" + scope + ":" + c.ClientIP()
		result, err := s.limiter.Allow(c.Request.Context(), key, authRateLimitPerSecond, authRateLimitBurst)
		if err != nil {
			// Redis trouble must not lock everyone out.
			c.Next()
			return
		}
		if !result.Allowed {
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

func parseIDParam(c *gin.Context, name string) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, newValidationError(name, "invalid_"+name, "invalid "+name)
	}
	return id, nil
}
