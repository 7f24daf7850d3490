package image

import (
	"context"
	"errors"
)

// ErrEmptyPrompt 圖片提示詞為空
var ErrEmptyPrompt = errors.New("image prompt is empty")

// Request 圖片生成請求
type Request struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
	Steps  int    `json:"steps"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Validate 檢查請求是否可送出
func (r *Request) Validate() error {
	if r == nil || r.Prompt == "" {
		return ErrEmptyPrompt
	}
	if r.Steps <= 0 || r.Width <= 0 || r.Height <= 0 {
		return errors.New("image steps and size must be positive")
	}
	return nil
}

// Generator 圖片生成介面，回傳可公開存取的圖片 URL
type Generator interface {
	Generate(ctx context.Context, req *Request) (string, error)
}
