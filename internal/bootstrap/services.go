package bootstrap

import (
	"errors"
	"fmt"

	"cocktail-generator/internal/core/ai/service"
	"cocktail-generator/internal/core/ai/together"
	"cocktail-generator/internal/core/cocktail"
	"cocktail-generator/internal/core/image"
	"cocktail-generator/internal/infrastructure/config"
	"cocktail-generator/internal/pkg/common"

	"go.uber.org/zap"
)

// Services 應用程式共用的服務組合
type Services struct {
	AI       *service.Service
	Images   *service.ImageService
	Cocktail *cocktail.Service
	Relay    *image.Service

	imageClient *together.ImageClient
}

// GeneratorConfig 由設定轉換為酒譜生成參數
func GeneratorConfig(cfg *config.Config) cocktail.Config {
	return cocktail.Config{
		RecipeMaxTokens:        cfg.Text.MaxTokens,
		RecipeTemperature:      cfg.Text.Temperature,
		IngredientsMaxTokens:   cfg.Text.IngredientsMaxTokens,
		IngredientsTemperature: cfg.Text.IngredientsTemperature,
		ImageModel:             cfg.Image.Model,
		ImageSteps:             cfg.Image.Steps,
		ImageWidth:             cfg.Image.Width,
		ImageHeight:            cfg.Image.Height,
		AllowDegradedImage:     cfg.Image.AllowDegraded,
	}
}

// NewRelay 依設定建立圖片下載轉發服務
func NewRelay(cfg *config.Config) *image.Service {
	return image.NewService(cfg.Relay.MaxSizeBytes, cfg.Relay.Timeout, cfg.Relay.Filename,
		image.WithMaxPixels(cfg.Relay.MaxPixels),
		image.WithAllowedHosts(cfg.Relay.AllowedHosts),
	)
}

// NewServices 依設定初始化所有服務
func NewServices(cfg *config.Config) (*Services, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	aiService, err := service.NewService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AI service: %w", err)
	}

	imageClient, err := together.NewImageClient(cfg.Together.APIKey, cfg.Together.BaseURL, cfg.Image.Timeout)
	if err != nil {
		_ = aiService.Close()
		return nil, fmt.Errorf("failed to initialize image client: %w", err)
	}
	imageService := service.NewImageService(imageClient)

	svcs := &Services{
		AI:          aiService,
		Images:      imageService,
		Cocktail:    cocktail.NewService(aiService, imageService, GeneratorConfig(cfg)),
		Relay:       NewRelay(cfg),
		imageClient: imageClient,
	}

	common.LogInfo("Services initialized",
		zap.String("text_provider", aiService.Name()),
		zap.String("text_model", aiService.GetModel()),
		zap.String("image_model", cfg.Image.Model),
		zap.Bool("allow_degraded_image", cfg.Image.AllowDegraded),
	)
	return svcs, nil
}

// Close 釋放服務資源
func (s *Services) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.AI != nil {
		errs = append(errs, s.AI.Close())
	}
	if s.imageClient != nil {
		errs = append(errs, s.imageClient.Close())
	}
	return errors.Join(errs...)
}
