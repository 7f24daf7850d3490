package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cocktail-generator/internal/core/ai/provider"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultModel     = "claude-3-5-haiku-latest"
	defaultMaxTokens = 1024
)

// Client Anthropic Messages API 客戶端
type Client struct {
	client anthropic.Client
	model  string
	cfg    provider.Config
}

// NewClient 創建 Anthropic 客戶端
func NewClient(cfg provider.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic API key required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Client{
		client: anthropic.NewClient(opts...),
		model:  model,
		cfg:    cfg,
	}, nil
}

// Generate 生成回應，system 訊息改以 system 參數傳送
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	var system []string

	for _, msg := range req.Messages {
		switch msg.Role {
		case provider.RoleSystem:
			system = append(system, msg.Content)
		case provider.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case provider.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(clampTemperature(req.Temperature)),
	}
	if len(system) > 0 {
		params.System = []anthropic.TextBlockParam{
			{Text: strings.Join(system, "\n\n")},
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if b, ok := block.AsAny().(anthropic.TextBlock); ok {
			content.WriteString(b.Text)
		}
	}

	return &provider.Response{
		Content: content.String(),
		Model:   string(resp.Model),
		Usage: provider.Usage{
			PromptTokens:     int(resp.Usage.InputTokens),
			CompletionTokens: int(resp.Usage.OutputTokens),
			TotalTokens:      int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
		},
	}, nil
}

// Anthropic 的 temperature 上限為 1
func clampTemperature(t float64) float64 {
	if t > 1 {
		return 1
	}
	if t < 0 {
		return 0
	}
	return t
}

// GetModel 獲取模型名稱
func (c *Client) GetModel() string {
	return c.model
}

// GetTimeout 獲取請求超時時間
func (c *Client) GetTimeout() time.Duration {
	return c.cfg.Timeout
}

// Close 關閉客戶端
func (c *Client) Close() error {
	return nil
}

var _ provider.Provider = (*Client)(nil)
