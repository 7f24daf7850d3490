package together

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cocktail-generator/internal/core/ai/image"
	"cocktail-generator/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ImageClient Together 圖片生成客戶端
type ImageClient struct {
	client *resty.Client
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Steps  int    `json:"steps"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	N      int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewImageClient 創建 Together 圖片客戶端
func NewImageClient(apiKey, baseURL string, timeout time.Duration) (*ImageClient, error) {
	if apiKey == "" {
		return nil, errors.New("together API key required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &ImageClient{client: client}, nil
}

// Generate 生成圖片並回傳第一張圖片的 URL
func (c *ImageClient) Generate(ctx context.Context, req *image.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	body := imageRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		Steps:  req.Steps,
		Width:  req.Width,
		Height: req.Height,
		N:      1,
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/images/generations")
	if err != nil {
		return "", fmt.Errorf("failed to send image request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		var e apiError
		if json.Unmarshal(resp.Body(), &e) == nil && e.Error.Message != "" {
			return "", fmt.Errorf("together image API error (status %d): %s", resp.StatusCode(), e.Error.Message)
		}
		return "", fmt.Errorf("together image API error (status %d): %s", resp.StatusCode(), common.Preview(resp.String(), 500))
	}

	var result imageResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse image response: %w", err)
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", errors.New("no image url in together response")
	}

	common.LogDebug("圖片生成完成",
		zap.String("model", req.Model),
		zap.String("url", result.Data[0].URL),
	)

	return result.Data[0].URL, nil
}

// Close 關閉客戶端
func (c *ImageClient) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

var _ image.Generator = (*ImageClient)(nil)
