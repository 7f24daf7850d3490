package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cocktail-generator/internal/core/ai/provider"
	"cocktail-generator/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	maxLoggedBody  = 500
)

// Client OpenRouter API 客戶端
type Client struct {
	client *resty.Client
	model  string
	cfg    provider.Config
}

// Request 表示 API 請求
type Request struct {
	Model       string             `json:"model"`
	Messages    []provider.Message `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float64            `json:"temperature"`
	Stream      bool               `json:"stream"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []Choice       `json:"choices"`
	Usage   provider.Usage `json:"usage"`
}

// Choice 選擇結構
type Choice struct {
	Message provider.Message `json:"message"`
}

// Error 表示 API 錯誤
type Error struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg provider.Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", "https://cocktail-generator.local").
		SetHeader("X-Title", "Cocktail Generator")

	return &Client{
		client: client,
		model:  cfg.Model,
		cfg:    cfg,
	}, nil
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := &Request{
		Model:       c.model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}

	common.LogDebug("Sending request to OpenRouter",
		zap.String("model", c.model),
		zap.Int("messages", len(req.Messages)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, apiError(resp)
	}

	// 解析回應
	var result Response
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		common.LogError("Failed to parse OpenRouter response",
			zap.Error(err),
			zap.String("model", c.model),
			zap.String("response", common.Preview(resp.String(), maxLoggedBody)),
		)
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(result.Choices) == 0 {
		return nil, errors.New("no choices in OpenRouter response")
	}

	model := result.Model
	if model == "" {
		model = c.model
	}

	return &provider.Response{
		Content: result.Choices[0].Message.Content,
		Model:   model,
		Usage:   result.Usage,
	}, nil
}

// apiError 將非 200 回應轉為錯誤，優先使用 API 回傳的錯誤訊息
func apiError(resp *resty.Response) error {
	var apiErr Error
	if err := json.Unmarshal(resp.Body(), &apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("OpenRouter API error (status %d): %s", resp.StatusCode(), apiErr.Error.Message)
	}
	return fmt.Errorf("OpenRouter API error (status %d): %s", resp.StatusCode(), common.Preview(resp.String(), maxLoggedBody))
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
	c.client.GetClient().CloseIdleConnections()
	return nil
}

var _ provider.Provider = (*Client)(nil)
