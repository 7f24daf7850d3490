package health

import (
	"net/http"
	"runtime"
	"time"

	"cocktail-generator/internal/infrastructure/config"
	"cocktail-generator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConfigKey gin context 中存放設定的 key
const ConfigKey = "config"

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Models    *ModelStatus           `json:"models,omitempty"`
	Runtime   map[string]interface{} `json:"runtime"`
}

// ModelStatus 目前使用的模型
type ModelStatus struct {
	TextProvider string `json:"text_provider"`
	TextModel    string `json:"text_model"`
	ImageModel   string `json:"image_model"`
}

func configFromContext(c *gin.Context) (*config.Config, bool) {
	v, exists := c.Get(ConfigKey)
	if !exists {
		return nil, false
	}
	cfg, ok := v.(*config.Config)
	return cfg, ok && cfg != nil
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	cfg, ok := configFromContext(c)
	if !ok {
		common.LogError("Configuration not found in context")
		common.WriteError(c, http.StatusInternalServerError, common.ErrCodeInternalError, "Configuration not found")
		return
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   cfg.App.Version,
		Models: &ModelStatus{
			TextProvider: cfg.Text.Provider,
			TextModel:    cfg.TextModel(),
			ImageModel:   cfg.Image.Model,
		},
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，設定已載入才算就緒
func ReadinessCheck(c *gin.Context) {
	if _, ok := configFromContext(c); !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
