package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "image/gif"  // 支援 GIF
	_ "image/jpeg" // 支援 JPEG

	"cocktail-generator/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // 支援 WebP
)

// ContentTypePNG 下載回應固定使用的 Content-Type
const ContentTypePNG = "image/png"

// DefaultMaxPixels 轉檔前允許的最大像素數，超過時原樣回傳
const DefaultMaxPixels = 4096 * 4096

var (
	// ErrInvalidURL 圖片網址為空或格式不正確
	ErrInvalidURL = errors.New("invalid image url")
	// ErrTooLarge 圖片超過大小上限
	ErrTooLarge = errors.New("image exceeds maximum size")
)

// Download 下載結果
type Download struct {
	Data         []byte
	ContentType  string
	Filename     string
	SourceFormat string
	Converted    bool
}

// Service 圖片下載轉發服務
type Service struct {
	client       *resty.Client
	maxSizeBytes int64
	maxPixels    int64
	allowedHosts []string
	filename     string
}

// Option 服務選項
type Option func(*Service)

// WithMaxPixels 設定轉檔的像素上限，n <= 0 時沿用預設值
func WithMaxPixels(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxPixels = n
		}
	}
}

// WithAllowedHosts 限制可下載的圖片主機，子網域也算符合；空清單不限制
func WithAllowedHosts(hosts []string) Option {
	return func(s *Service) {
		s.allowedHosts = s.allowedHosts[:0]
		for _, h := range hosts {
			h = strings.ToLower(strings.TrimSpace(h))
			if h != "" {
				s.allowedHosts = append(s.allowedHosts, h)
			}
		}
	}
}

// NewService 創建新的圖片下載服務
func NewService(maxSizeBytes int64, timeout time.Duration, filename string, opts ...Option) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if filename == "" {
		filename = "cocktail.png"
	}
	s := &Service{
		client:       resty.New().SetTimeout(timeout).SetDoNotParseResponse(true),
		maxSizeBytes: maxSizeBytes,
		maxPixels:    DefaultMaxPixels,
		filename:     filename,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// hostAllowed 檢查主機是否在允許清單內
func (s *Service) hostAllowed(host string) bool {
	if len(s.allowedHosts) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, allowed := range s.allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}

// Filename 下載檔名
func (s *Service) Filename() string {
	return s.filename
}

// ValidateURL 檢查網址是否為絕對的 http(s) 網址
func ValidateURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, common.NewError(common.ErrCodeInvalidRequest, "Image URL is required", http.StatusBadRequest, ErrInvalidURL)
	}

	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, common.NewError(common.ErrCodeInvalidRequest, "Invalid image URL", http.StatusBadRequest, ErrInvalidURL)
	}
	return u, nil
}

// Fetch 下載圖片，必要時轉成 PNG
func (s *Service) Fetch(ctx context.Context, rawURL string) (*Download, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	if !s.hostAllowed(u.Hostname()) {
		return nil, common.NewError(common.ErrCodeInvalidRequest, "Image host not allowed", http.StatusBadRequest, ErrInvalidURL)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		Get(u.String())
	if err != nil {
		return nil, common.NewUpstreamError("Failed to download image", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, common.NewUpstreamError("Failed to download image",
			fmt.Errorf("image host returned status %d", resp.StatusCode()))
	}

	data, err := s.readLimited(body)
	if err != nil {
		return nil, common.NewUpstreamError("Failed to download image", err)
	}

	download := normalizePNG(data, s.maxPixels)
	download.Filename = s.filename

	common.LogDebug("圖片下載完成",
		zap.String("host", u.Host),
		zap.Int("bytes", len(download.Data)),
		zap.String("source_format", download.SourceFormat),
		zap.Bool("converted", download.Converted),
		zap.String("request_id", common.RequestIDFromContext(ctx)),
	)

	return download, nil
}

func (s *Service) readLimited(r io.Reader) ([]byte, error) {
	if s.maxSizeBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, s.maxSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > s.maxSizeBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, s.maxSizeBytes)
	}
	return data, nil
}

// normalizePNG 可解碼的非 PNG 圖片重新編碼為 PNG。
// 無法解碼或像素數超過 maxPixels 時原樣回傳。
func normalizePNG(data []byte, maxPixels int64) *Download {
	download := &Download{Data: data, ContentType: ContentTypePNG}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return download
	}
	download.SourceFormat = format
	if format == "png" {
		return download
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		common.LogWarn("圖片尺寸過大，略過 PNG 轉檔",
			zap.String("format", format),
			zap.Int("width", cfg.Width),
			zap.Int("height", cfg.Height),
			zap.Int64("max_pixels", maxPixels),
		)
		return download
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return download
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		common.LogWarn("PNG 轉檔失敗，回傳原始資料", zap.String("format", format), zap.Error(err))
		return download
	}

	download.Data = buf.Bytes()
	download.Converted = true
	return download
}
