package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ContextKeyRequestID = "request_id"

// RequestID reuses the caller's X-Request-ID or assigns a new one, and echoes
// it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// Logger writes one access line per request. Requests made with a session
// carry the user id; anonymous ones log "-".
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		user := "-"
		if id, err := GetUserID(c); err == nil {
			user = id.String()
		}
		log.Printf("[%s] %s %s %d user=%s %s",
			c.GetString(ContextKeyRequestID),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			user,
			time.Since(start),
		)
	}
}

// Recovery turns a panic into the standard error envelope so the client still
// gets an error notice.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("[%s] panic serving %s %s: %v",
			c.GetString(ContextKeyRequestID), c.Request.Method, c.Request.URL.Path, recovered)
		abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong. Please try again")
	})
}
