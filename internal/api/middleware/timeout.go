package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"cocktail-generator/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Timeout 設置請求超時，逾時且尚未回應時回傳 504
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		// 檢查是否超時
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			if !c.Writer.Written() {
				common.WriteError(c, http.StatusGatewayTimeout, common.ErrCodeGatewayTimeout, "Request timeout")
			}
		}
	}
}
