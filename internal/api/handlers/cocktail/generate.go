package cocktail

import (
	"errors"
	"math"
	"net/http"

	"cocktail-generator/internal/api/middleware"
	cocktailService "cocktail-generator/internal/core/cocktail"
	"cocktail-generator/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const generateFailedMessage = "Failed to generate recipe"

// GenerateRequest 酒譜生成請求
type GenerateRequest struct {
	Ingredients string `json:"ingredients"`
	Sweetness   *float64 `json:"sweetness"`
	Strength    *float64 `json:"strength"`
	Notes       string   `json:"notes,omitempty"`
	Random      bool     `json:"random"`
	IsMocktail  bool     `json:"isMocktail"`
}

// roundLevel 任意數字四捨五入為整數，超出 int32 的值夾在邊界交給範圍檢查處理
func roundLevel(v *float64) *int {
	if v == nil {
		return nil
	}
	r := math.Round(*v)
	switch {
	case r > math.MaxInt32:
		r = math.MaxInt32
	case r < math.MinInt32:
		r = math.MinInt32
	}
	n := int(r)
	return &n
}

// Preferences 轉為服務層的偏好設定
func (r *GenerateRequest) Preferences() cocktailService.Preferences {
	return cocktailService.Preferences{
		Ingredients: r.Ingredients,
		Sweetness:   roundLevel(r.Sweetness),
		Strength:    roundLevel(r.Strength),
		Notes:       r.Notes,
		IsMocktail:  r.IsMocktail,
		Random:      r.Random,
	}
}

// HandleGenerate 生成酒譜與圖片
func (h *Handler) HandleGenerate(c *gin.Context) {
	ctx, requestID := requestContext(c)

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			common.WriteError(c, http.StatusRequestEntityTooLarge, common.ErrCodeRequestTooLarge, "Request body too large")
			return
		}
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		common.WriteError(c, http.StatusBadRequest, common.ErrCodeInvalidRequest, "Invalid request format")
		return
	}

	middleware.AddLogFields(c,
		zap.Bool("random", req.Random),
		zap.Bool("is_mocktail", req.IsMocktail),
	)

	common.LogInfo("開始處理酒譜生成請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
		zap.Bool("random", req.Random),
		zap.Bool("is_mocktail", req.IsMocktail),
	)

	result, err := h.generator.Generate(ctx, req.Preferences())
	if err != nil {
		status, code, message := common.StatusFromError(err, generateFailedMessage)
		if status >= http.StatusInternalServerError {
			common.LogError("酒譜生成失敗",
				zap.Error(err),
				zap.Int("status", status),
				zap.String("request_id", requestID),
			)
		}
		_ = c.Error(err)
		common.WriteError(c, status, code, message)
		return
	}

	middleware.AddLogFields(c,
		zap.String("recipe", result.Name),
		zap.Bool("has_image", result.ImageURL != ""),
	)
	c.JSON(http.StatusOK, result)
}
