package apierr

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lexigraph.dev/dictionary/common/logger"
)

// Body is the structured error response rendered for every failed request.
type Body struct {
	Error     string   `json:"error"`
	Details   []Detail `json:"details,omitempty"`
	Timestamp string   `json:"timestamp"`
	RequestID string   `json:"request_id,omitempty"`
}

// Middleware translates the last error pushed onto the gin context into the
// structured JSON body and matching HTTP status, via the Kind taxonomy.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *Error
		if !errors.As(err, &apiErr) {
			apiErr = Internal(err)
		}

		fields := logger.GetLogFields(c.Request.Context())
		requestID := ""
		if fields.RequestID != nil {
			requestID = *fields.RequestID
		}

		if apiErr.Kind == KindRateLimited && apiErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(apiErr.RetryAfter.Round(time.Second).Seconds())))
		}

		c.JSON(apiErr.HTTPStatus(), Body{
			Error:     apiErr.Error(),
			Details:   apiErr.Details,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			RequestID: requestID,
		})
	}
}

// Abort pushes err onto the gin context and stops the handler chain; the
// Middleware above renders the response once the chain unwinds.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
