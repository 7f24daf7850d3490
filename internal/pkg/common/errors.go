package common

import (
	"context"
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Error string `json:"error"`          // 錯誤信息
	Code  string `json:"code,omitempty"` // 錯誤代碼
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息（可回傳給用戶端）
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓預定義錯誤可搭配 errors.Is 使用
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// NewUpstreamError 上游模型或圖片來源呼叫失敗
func NewUpstreamError(message string, err error) *CustomError {
	return NewError(ErrCodeUpstream, message, http.StatusInternalServerError, err)
}

// NewParseError 模型輸出無法還原為有效資料
func NewParseError(message string, err error) *CustomError {
	return NewError(ErrCodeParse, message, http.StatusInternalServerError, err)
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	Field   string
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// NewFieldValidationError 創建指定欄位的驗證錯誤
func NewFieldValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"  // 400
	ErrCodeValidation      = "VALIDATION_ERROR" // 400
	ErrCodeNotFound        = "NOT_FOUND"        // 404
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"  // 408
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"

	// 服務器錯誤 (5xx)
	ErrCodeInternalError  = "INTERNAL_ERROR" // 500
	ErrCodeUpstream       = "UPSTREAM_ERROR" // 500
	ErrCodeParse          = "PARSE_ERROR"    // 500
	ErrCodeGatewayTimeout = "GATEWAY_TIMEOUT"
)

// 預定義錯誤
var (
	ErrInvalidRequest = NewError(ErrCodeInvalidRequest, "Invalid request format", http.StatusBadRequest, nil)
	ErrInternalError  = NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, nil)
	ErrUpstream       = NewError(ErrCodeUpstream, "Upstream model request failed", http.StatusInternalServerError, nil)
	ErrParse          = NewError(ErrCodeParse, "Failed to parse AI response", http.StatusInternalServerError, nil)
)

// StatusFromError 將任意錯誤轉為 HTTP 狀態碼、錯誤代碼與可公開的訊息。
// 5xx 一律回傳通用訊息，原始錯誤只寫入日誌。
func StatusFromError(err error, fallback string) (int, string, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, ErrCodeGatewayTimeout, "Request timeout"
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ErrCodeValidation, ve.Error()
	}

	var ce *CustomError
	if errors.As(err, &ce) {
		if ce.Status >= 400 && ce.Status < 500 {
			return ce.Status, ce.Code, ce.Message
		}
		return ce.Status, ce.Code, fallback
	}

	return http.StatusInternalServerError, ErrCodeInternalError, fallback
}
