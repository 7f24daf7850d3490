package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cocktail-generator/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), requestid.New(), Logger())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, common.ErrCodeInternalError, errorCode(t, w))
}

func TestBodySizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodySizeLimit(16))
	r.POST("/echo", func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			common.WriteError(c, http.StatusRequestEntityTooLarge, common.ErrCodeRequestTooLarge, "Request body too large")
			return
		}
		c.String(http.StatusOK, string(data))
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("small")))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "small", w.Body.String())
	})

	t.Run("content length too large", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64))))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, common.ErrCodeRequestTooLarge, errorCode(t, w))
	})

	t.Run("chunked body too large", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(strings.Repeat("x", 64)))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(requestid.New(), Timeout(20*time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) {
		_, hasDeadline := c.Request.Context().Deadline()
		assert.True(t, hasDeadline)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, common.ErrCodeGatewayTimeout, errorCode(t, w))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func observeLogs(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	prev := common.Logger
	common.Logger = zap.New(core)
	t.Cleanup(func() { common.Logger = prev })
	return logs
}

func TestLoggerIncludesRequestFields(t *testing.T) {
	logs := observeLogs(t, zapcore.InfoLevel)

	r := gin.New()
	r.Use(requestid.New(), Logger())
	r.POST("/generate", func(c *gin.Context) {
		AddLogFields(c, zap.Bool("random", true))
		AddLogFields(c, zap.Bool("is_mocktail", true))
		AddLogFields(c)
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) {
		common.WriteError(c, http.StatusBadRequest, common.ErrCodeInvalidRequest, "Image URL is required")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/generate", nil))
	require.Equal(t, 1, logs.Len())

	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, true, fields["random"])
	assert.Equal(t, true, fields["is_mocktail"])
	assert.Equal(t, "/generate", fields["path"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.Equal(t, w.Header().Get("X-Request-ID"), fields["request_id"])

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing?url=http://internal.example", nil))
	require.Equal(t, 2, logs.Len())
	entry = logs.All()[1]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.NotContains(t, entry.ContextMap(), "query")
	assert.NotContains(t, entry.ContextMap(), "random")
}
