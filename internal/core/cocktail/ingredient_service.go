package cocktail

import (
	"context"
	"strings"

	"cocktail-generator/internal/core/ai/provider"
	"cocktail-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// IngredientService 隨機材料產生服務
type IngredientService struct {
	text        TextGenerator
	maxTokens   int
	temperature float64
}

// NewIngredientService 創建隨機材料服務
func NewIngredientService(text TextGenerator, maxTokens int, temperature float64) *IngredientService {
	return &IngredientService{
		text:        text,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// GenerateRandomIngredients 請模型隨機挑選 2-4 種材料，回傳逗號分隔的清單
func (s *IngredientService) GenerateRandomIngredients(ctx context.Context, isMocktail bool) (string, error) {
	resp, err := s.text.Generate(ctx, &provider.Request{
		Messages:    provider.SystemAndUser(RandomIngredientsSystemPrompt, BuildRandomIngredientsPrompt(isMocktail)),
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return "", asUpstream("Failed to generate random ingredients", err)
	}

	ingredients := firstLine(resp.Content)
	if ingredients == "" {
		return "", common.NewUpstreamError("Failed to generate random ingredients", ErrEmptyResponse)
	}

	common.LogDebug("隨機材料",
		zap.Bool("is_mocktail", isMocktail),
		zap.String("ingredients", ingredients),
		zap.String("request_id", common.RequestIDFromContext(ctx)),
	)

	return ingredients, nil
}

// firstLine 取出去除空白後的第一行
func firstLine(content string) string {
	content = strings.TrimSpace(content)
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	return strings.TrimSpace(content)
}
