package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quill-server-go/internal/domain/admission"
)

// RateLimit guards one operation signature with the admission
// controller. All callers of the route share the signature's bucket.
// Denial is a 429 with a Retry-After hint, deliberately distinct
// from the authentication failure shape.
func RateLimit(ctrl *admission.Controller, signature string, limit admission.Limit) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := ctrl.Admit(signature, limit)
		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "rate limit exceeded",
				"code":    http.StatusTooManyRequests,
				"data":    gin.H{"retry_after_seconds": retryAfter},
			})
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Next()
	}
}
