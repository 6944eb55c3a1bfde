package middleware

import (
	"net/http"
	"strings"

	"repairhub/utils"

	"github.com/gin-gonic/gin"
)

// DeviceMiddleware requires the X-Device-ID header that scopes a client's
// draft slot.
func DeviceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := strings.TrimSpace(c.GetHeader("X-Device-ID"))
		if deviceID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "Missing required device details: X-Device-ID",
			})
			return
		}
		c.Set(utils.CtxDeviceID, deviceID)
		c.Next()
	}
}
