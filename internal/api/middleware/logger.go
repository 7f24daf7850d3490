package middleware

import (
	"net/http"
	"time"

	"cocktail-generator/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// logFieldsKey gin context 中存放額外日誌欄位的 key
const logFieldsKey = "access_log_fields"

// AddLogFields 附加欄位到本次請求的存取日誌
func AddLogFields(c *gin.Context, fields ...zap.Field) {
	if len(fields) == 0 {
		return
	}
	c.Set(logFieldsKey, append(LogFields(c), fields...))
}

// LogFields 取出已附加的存取日誌欄位
func LogFields(c *gin.Context) []zap.Field {
	v, ok := c.Get(logFieldsKey)
	if !ok {
		return nil
	}
	fields, _ := v.([]zap.Field)
	return fields
}

// Logger 存取日誌中間件，依狀態碼決定日誌等級
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestid.Get(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes", c.Writer.Size()),
			zap.String("ip", c.ClientIP()),
		}
		// 圖片下載網址只在 debug 等級保留
		if query != "" && common.Logger.Core().Enabled(zap.DebugLevel) {
			fields = append(fields, zap.String("query", query))
		}
		fields = append(fields, LogFields(c)...)
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			common.LogError("伺服器錯誤", fields...)
		case status >= http.StatusBadRequest:
			common.LogWarn("用戶端錯誤", fields...)
		default:
			common.LogInfo("請求完成", fields...)
		}
	}
}

// Recovery 捕捉 panic 並回傳 500
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				common.LogError("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("request_id", requestid.Get(c)),
				)
				common.WriteError(c, http.StatusInternalServerError, common.ErrCodeInternalError, "Internal server error")
			}
		}()

		c.Next()
	}
}
