package server

import (
	"errors"
	"net/http"
	"strings"

	authdomain "github.com/coursehive/coursehive/internal/auth/domain"
	cartdomain "github.com/coursehive/coursehive/internal/cart/domain"
	channeldomain "github.com/coursehive/coursehive/internal/channel/domain"
	memberdomain "github.com/coursehive/coursehive/internal/member/domain"
	orderdomain "github.com/coursehive/coursehive/internal/order/domain"
	replydomain "github.com/coursehive/coursehive/internal/reply/domain"
	rewarddomain "github.com/coursehive/coursehive/internal/reward/domain"
	subscriptiondomain "github.com/coursehive/coursehive/internal/subscription/domain"
	videodomain "github.com/coursehive/coursehive/internal/video/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal_error")
	ErrNotFound        = errors.New("not_found")
	ErrInvalidRequest  = errors.New("invalid_request")
	ErrTooManyRequests = errors.New("too_many_requests")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, videodomain.ErrNotChannelOwner),
		errors.Is(err, orderdomain.ErrNotPurchased):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, memberdomain.ErrInvalidAmount),
		errors.Is(err, memberdomain.ErrInsufficientBalance),
		errors.Is(err, channeldomain.ErrInvalidName),
		errors.Is(err, videodomain.ErrInvalidName),
		errors.Is(err, videodomain.ErrInvalidPrice),
		errors.Is(err, orderdomain.ErrEmptyOrder),
		errors.Is(err, rewarddomain.ErrInvalidSource),
		errors.Is(err, rewarddomain.ErrInvalidPoints),
		errors.Is(err, replydomain.ErrInvalidStar),
		errors.Is(err, replydomain.ErrEmptyContent),
		errors.Is(err, subscriptiondomain.ErrOwnChannel),
		errors.Is(err, authdomain.ErrWeakPassword),
		errors.Is(err, authdomain.ErrInvalidCode),
		errors.Is(err, authdomain.ErrEmailNotVerified):
		return true
	default:
		return false
	}
}

// Conflict covers duplicates, terminal-state replays and toggle races. All of
// them mean the request lost to an earlier write.
func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, memberdomain.ErrMemberExists),
		errors.Is(err, channeldomain.ErrChannelExists),
		errors.Is(err, videodomain.ErrVideoExists),
		errors.Is(err, videodomain.ErrVideoClosed),
		errors.Is(err, videodomain.ErrInvalidStatus),
		errors.Is(err, orderdomain.ErrAlreadyCompleted),
		errors.Is(err, orderdomain.ErrAlreadyCanceled),
		errors.Is(err, rewarddomain.ErrAlreadyCanceled),
		errors.Is(err, replydomain.ErrReplyExists),
		errors.Is(err, cartdomain.ErrConcurrentModification),
		errors.Is(err, subscriptiondomain.ErrConcurrentModification):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, memberdomain.ErrMemberNotFound),
		errors.Is(err, channeldomain.ErrChannelNotFound),
		errors.Is(err, videodomain.ErrVideoNotFound),
		errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, rewarddomain.ErrRewardNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
