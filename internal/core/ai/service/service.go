package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cocktail-generator/internal/core/ai/anthropic"
	"cocktail-generator/internal/core/ai/image"
	"cocktail-generator/internal/core/ai/openrouter"
	"cocktail-generator/internal/core/ai/provider"
	"cocktail-generator/internal/core/ai/together"
	"cocktail-generator/internal/infrastructure/config"
	"cocktail-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// Service AI 文字服務，包裝選定的供應商
type Service struct {
	provider provider.Provider
	name     string
}

// NewProvider 依設定建立文字模型供應商
func NewProvider(cfg *config.Config) (provider.Provider, error) {
	timeout := cfg.Text.Timeout

	switch cfg.Text.Provider {
	case config.ProviderOpenRouter:
		return openrouter.NewClient(provider.Config{
			APIKey:  cfg.OpenRouter.APIKey,
			Model:   cfg.OpenRouter.Model,
			BaseURL: cfg.OpenRouter.BaseURL,
			Timeout: timeout,
		})
	case config.ProviderAnthropic:
		return anthropic.NewClient(provider.Config{
			APIKey:  cfg.Anthropic.APIKey,
			Model:   cfg.Anthropic.Model,
			BaseURL: cfg.Anthropic.BaseURL,
			Timeout: timeout,
		})
	case config.ProviderTogether, "":
		return together.NewTextClient(provider.Config{
			APIKey:  cfg.Together.APIKey,
			Model:   cfg.Together.TextModel,
			BaseURL: cfg.Together.BaseURL,
			Timeout: timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported text provider: %s", cfg.Text.Provider)
	}
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config) (*Service, error) {
	p, err := NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create text provider: %w", err)
	}

	name := cfg.Text.Provider
	if name == "" {
		name = config.ProviderTogether
	}
	return NewServiceWithProvider(name, p), nil
}

// NewServiceWithProvider 以既有供應商建立服務
func NewServiceWithProvider(name string, p provider.Provider) *Service {
	return &Service{provider: p, name: name}
}

// Generate 呼叫文字模型，失敗時包裝為上游錯誤
func (s *Service) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, errors.New("empty AI request")
	}

	start := time.Now()
	resp, err := s.provider.Generate(ctx, req)
	duration := time.Since(start)
	requestID := common.RequestIDFromContext(ctx)

	common.LogAICall("text", s.provider.GetModel(), duration, err, requestID)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, common.NewUpstreamError("Text model request cancelled", err)
		}
		return nil, common.NewUpstreamError("Text model request failed", err)
	}

	common.LogDebug("AI 回應內容",
		zap.String("provider", s.name),
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("content", common.Preview(resp.Content, 200)),
		zap.String("request_id", requestID),
	)

	return resp, nil
}

// GetModel 獲取目前使用的模型
func (s *Service) GetModel() string {
	return s.provider.GetModel()
}

// Name 供應商名稱
func (s *Service) Name() string {
	return s.name
}

// Close 關閉供應商連接
func (s *Service) Close() error {
	return s.provider.Close()
}

// ImageService 圖片生成服務，包裝圖片生成器並記錄呼叫
type ImageService struct {
	generator image.Generator
}

// NewImageService 創建圖片生成服務
func NewImageService(generator image.Generator) *ImageService {
	return &ImageService{generator: generator}
}

// Generate 生成圖片，失敗時包裝為上游錯誤
func (s *ImageService) Generate(ctx context.Context, req *image.Request) (string, error) {
	start := time.Now()
	url, err := s.generator.Generate(ctx, req)
	common.LogAICall("image", req.Model, time.Since(start), err, common.RequestIDFromContext(ctx))
	if err != nil {
		if errors.Is(err, image.ErrEmptyPrompt) {
			return "", err
		}
		return "", common.NewUpstreamError("Image generation failed", err)
	}
	return url, nil
}
