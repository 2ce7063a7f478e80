package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestID tags every request with a correlation id. Handlers log it next
// to store-level failures so the generic client message can be matched to
// the detailed server log line.
func RequestID(c *gin.Context) {
	id := c.GetHeader("X-Request-ID")
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("request_id", id)
	c.Writer.Header().Set("X-Request-ID", id)
	c.Next()
}
