package together

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cocktail-generator/internal/core/ai/provider"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultBaseURL Together AI 的 OpenAI 相容端點
const DefaultBaseURL = "https://api.together.xyz/v1"

// TextClient 透過 OpenAI 相容介面呼叫 Together 的 chat completions
type TextClient struct {
	client openai.Client
	model  string
	cfg    provider.Config
}

// NewTextClient 創建 Together 文字客戶端
func NewTextClient(cfg provider.Config) (*TextClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("together API key required")
	}
	if cfg.Model == "" {
		return nil, errors.New("together text model required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		// 失敗直接回報，不自動重試
		option.WithMaxRetries(0),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &TextClient{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		cfg:    cfg,
	}, nil
}

// Generate 生成回應
func (c *TextClient) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case provider.RoleSystem:
			messages = append(messages, openai.SystemMessage(msg.Content))
		case provider.RoleUser:
			messages = append(messages, openai.UserMessage(msg.Content))
		case provider.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("together API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices in together response")
	}

	model := resp.Model
	if model == "" {
		model = c.model
	}

	return &provider.Response{
		Content: resp.Choices[0].Message.Content,
		Model:   model,
		Usage: provider.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// GetModel 獲取模型名稱
func (c *TextClient) GetModel() string {
	return c.model
}

// GetTimeout 獲取請求超時時間
func (c *TextClient) GetTimeout() time.Duration {
	return c.cfg.Timeout
}

// Close 關閉客戶端
func (c *TextClient) Close() error {
	return nil
}

var _ provider.Provider = (*TextClient)(nil)
