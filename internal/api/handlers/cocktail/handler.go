package cocktail

import (
	"context"

	cocktailService "cocktail-generator/internal/core/cocktail"
	"cocktail-generator/internal/core/image"
	"cocktail-generator/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
)

// Generator 酒譜生成介面
type Generator interface {
	Generate(ctx context.Context, prefs cocktailService.Preferences) (*cocktailService.Result, error)
}

// ImageFetcher 圖片下載介面
type ImageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*image.Download, error)
}

// Handler 調酒相關的 HTTP 處理程序
type Handler struct {
	generator Generator
	fetcher   ImageFetcher
}

// NewHandler 創建新的處理程序
func NewHandler(generator Generator, fetcher ImageFetcher) *Handler {
	return &Handler{
		generator: generator,
		fetcher:   fetcher,
	}
}

// Register 註冊路由
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/generate", h.HandleGenerate)
	rg.GET("/download-image", h.HandleDownloadImage)
}

// requestContext 取得請求 ID 並放入 context
func requestContext(c *gin.Context) (context.Context, string) {
	requestID := requestid.Get(c)
	if requestID == "" {
		requestID = common.GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}
	return common.WithRequestID(c.Request.Context(), requestID), requestID
}
