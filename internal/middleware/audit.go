package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/1300Sarthak/CS157a/internal/models"
)

// AuditRecorder persists audit log rows.
type AuditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Audit creates a middleware that records audit logs after successful requests.
// resourceParam names the route parameter identifying the touched resource, if any.
func Audit(repo AuditRecorder, action, resource, resourceParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if repo == nil || c.Writer.Status() >= 400 {
			return
		}

		var operatorID *string
		if claims := Claims(c); claims != nil {
			operatorID = &claims.OperatorID
		}

		var resourceID *string
		if resourceParam != "" {
			if v := c.Param(resourceParam); v != "" {
				resourceID = &v
			}
		}

		body, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		_ = repo.CreateAuditLog(context.WithoutCancel(c.Request.Context()), &models.AuditLog{
			OperatorID: operatorID,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			NewValues:  body,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		})
	}
}
