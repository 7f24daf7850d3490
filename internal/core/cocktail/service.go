package cocktail

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"strings"

	"cocktail-generator/internal/core/ai/image"
	"cocktail-generator/internal/core/ai/provider"
	"cocktail-generator/internal/pkg/common"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// 缺少必要欄位時回傳給用戶端的訊息
const missingFieldsMessage = "Missing required fields"

// TextGenerator 文字模型介面
type TextGenerator interface {
	Generate(ctx context.Context, req *provider.Request) (*provider.Response, error)
}

// ImageGenerator 圖片模型介面
type ImageGenerator interface {
	Generate(ctx context.Context, req *image.Request) (string, error)
}

// Config 生成參數
type Config struct {
	RecipeMaxTokens        int
	RecipeTemperature      float64
	IngredientsMaxTokens   int
	IngredientsTemperature float64
	ImageModel             string
	ImageSteps             int
	ImageWidth             int
	ImageHeight            int
	// AllowDegradedImage 為 true 時圖片失敗仍回傳酒譜
	AllowDegradedImage bool
}

// DefaultConfig 預設生成參數
func DefaultConfig() Config {
	return Config{
		RecipeMaxTokens:        1000,
		RecipeTemperature:      0.7,
		IngredientsMaxTokens:   100,
		IngredientsTemperature: 0.9,
		ImageModel:             "black-forest-labs/FLUX.1-schnell",
		ImageSteps:             8,
		ImageWidth:             1024,
		ImageHeight:            1024,
	}
}

// ServiceOption 服務選項
type ServiceOption func(*Service)

// WithRandom 替換亂數來源，fn(n) 須回傳 [0,n) 的整數
func WithRandom(fn func(n int) int) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.intn = fn
		}
	}
}

// Service 酒譜生成服務
type Service struct {
	text        TextGenerator
	images      ImageGenerator
	ingredients *IngredientService
	cfg         Config
	intn        func(n int) int
	validate    *validator.Validate
}

// levels 需要做範圍檢查的數值
type levels struct {
	Sweetness int `json:"sweetness" validate:"min=0,max=100"`
	Strength  int `json:"strength" validate:"min=0,max=100"`
}

// NewService 創建酒譜生成服務
func NewService(text TextGenerator, images ImageGenerator, cfg Config, opts ...ServiceOption) *Service {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	s := &Service{
		text:        text,
		images:      images,
		ingredients: NewIngredientService(text, cfg.IngredientsMaxTokens, cfg.IngredientsTemperature),
		cfg:         cfg,
		intn:        rand.Intn,
		validate:    v,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate 依偏好生成酒譜與圖片
func (s *Service) Generate(ctx context.Context, prefs Preferences) (*Result, error) {
	requestID := common.RequestIDFromContext(ctx)

	ingredients := strings.TrimSpace(prefs.Ingredients)
	sweetness := prefs.Sweetness
	strength := prefs.Strength

	var generated *GeneratedValues
	if prefs.Random {
		random, err := s.ingredients.GenerateRandomIngredients(ctx, prefs.IsMocktail)
		if err != nil {
			return nil, err
		}
		sw := s.intn(100)
		st := 0
		if !prefs.IsMocktail {
			st = s.intn(100)
		}
		ingredients, sweetness, strength = random, &sw, &st
		generated = &GeneratedValues{Ingredients: random, Sweetness: sw, Strength: st}
	}

	if ingredients == "" || sweetness == nil || (strength == nil && !prefs.IsMocktail) {
		return nil, common.NewValidationError(missingFieldsMessage)
	}

	finalStrength := 0
	if !prefs.IsMocktail {
		finalStrength = *strength
	}
	if err := s.validateLevels(*sweetness, finalStrength); err != nil {
		return nil, err
	}

	common.LogInfo("開始生成酒譜",
		zap.Bool("random", prefs.Random),
		zap.Bool("is_mocktail", prefs.IsMocktail),
		zap.Int("sweetness", *sweetness),
		zap.Int("strength", finalStrength),
		zap.String("request_id", requestID),
	)

	recipe, err := s.generateRecipe(ctx, ingredients, *sweetness, finalStrength, prefs.IsMocktail, prefs.Notes)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.images.Generate(ctx, &image.Request{
		Prompt: BuildImagePrompt(recipe.Name, recipe.Description, prefs.IsMocktail),
		Model:  s.cfg.ImageModel,
		Steps:  s.cfg.ImageSteps,
		Width:  s.cfg.ImageWidth,
		Height: s.cfg.ImageHeight,
	})
	if err != nil {
		if !s.cfg.AllowDegradedImage {
			return nil, asUpstream("Image generation failed", err)
		}
		common.LogWarn("圖片生成失敗，僅回傳酒譜",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		imageURL = ""
	}

	common.LogInfo("酒譜生成完成",
		zap.String("name", recipe.Name),
		zap.Bool("has_image", imageURL != ""),
		zap.String("request_id", requestID),
	)

	return &Result{
		Recipe:          *recipe,
		ImageURL:        imageURL,
		GeneratedValues: generated,
	}, nil
}

func (s *Service) generateRecipe(ctx context.Context, ingredients string, sweetness, strength int, isMocktail bool, notes string) (*Recipe, error) {
	resp, err := s.text.Generate(ctx, &provider.Request{
		Messages:    provider.SystemAndUser(RecipeSystemPrompt, BuildRecipePrompt(ingredients, sweetness, strength, isMocktail, notes)),
		MaxTokens:   s.cfg.RecipeMaxTokens,
		Temperature: s.cfg.RecipeTemperature,
	})
	if err != nil {
		return nil, asUpstream("Failed to generate recipe", err)
	}

	recipe, err := ParseRecipe(resp.Content)
	if err != nil {
		// 原始內容只寫入日誌
		common.LogError("Failed to parse AI response",
			zap.Error(err),
			zap.String("content", common.Preview(resp.Content, 500)),
			zap.String("request_id", common.RequestIDFromContext(ctx)),
		)
		if errors.Is(err, ErrEmptyResponse) {
			return nil, common.NewUpstreamError("Failed to generate recipe", err)
		}
		return nil, common.NewParseError("Failed to parse AI response", err)
	}

	return recipe, nil
}

func (s *Service) validateLevels(sweetness, strength int) error {
	err := s.validate.Struct(levels{Sweetness: sweetness, Strength: strength})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		return common.NewFieldValidationError(field, fmt.Sprintf("%s must be between 0 and 100", field))
	}
	return common.NewValidationError(err.Error())
}

// asUpstream 已是 CustomError 則保留，否則包裝為上游錯誤
func asUpstream(message string, err error) error {
	var ce *common.CustomError
	if errors.As(err, &ce) {
		return err
	}
	return common.NewUpstreamError(message, err)
}
