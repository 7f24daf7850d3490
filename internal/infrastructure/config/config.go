package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 支援的文字模型供應商
const (
	ProviderTogether   = "together"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
)

// Config 應用配置
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Together   TogetherConfig   `mapstructure:"together"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Text       TextConfig       `mapstructure:"text"`
	Image      ImageConfig      `mapstructure:"image"`
	Relay      RelayConfig      `mapstructure:"relay"`
	CORS       CORSConfig       `mapstructure:"cors"`
	LogLevel   string           `mapstructure:"log_level"`
	LogFile    string           `mapstructure:"log_file"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// TogetherConfig Together AI 配置（圖片生成必用，文字生成預設）
type TogetherConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	TextModel string `mapstructure:"text_model"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// AnthropicConfig Anthropic 配置
type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// TextConfig 文字生成參數
type TextConfig struct {
	Provider               string        `mapstructure:"provider"`
	MaxTokens              int           `mapstructure:"max_tokens"`
	Temperature            float64       `mapstructure:"temperature"`
	IngredientsMaxTokens   int           `mapstructure:"ingredients_max_tokens"`
	IngredientsTemperature float64       `mapstructure:"ingredients_temperature"`
	Timeout                time.Duration `mapstructure:"timeout"`
}

// ImageConfig 圖片生成配置
type ImageConfig struct {
	Model         string        `mapstructure:"model"`
	Steps         int           `mapstructure:"steps"`
	Width         int           `mapstructure:"width"`
	Height        int           `mapstructure:"height"`
	Timeout       time.Duration `mapstructure:"timeout"`
	AllowDegraded bool          `mapstructure:"allow_degraded"`
}

// RelayConfig 圖片下載轉發配置
type RelayConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	MaxSizeBytes int64         `mapstructure:"max_size_bytes"`
	MaxPixels    int64         `mapstructure:"max_pixels"`
	Filename     string        `mapstructure:"filename"`
	// AllowedHosts 為空時不限制圖片主機
	AllowedHosts []string `mapstructure:"allowed_hosts"`
}

// CORSConfig 跨域設定
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// TextModel 回傳目前選用供應商的模型名稱
func (c *Config) TextModel() string {
	switch c.Text.Provider {
	case ProviderOpenRouter:
		return c.OpenRouter.Model
	case ProviderAnthropic:
		return c.Anthropic.Model
	default:
		return c.Together.TextModel
	}
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件（不存在時略過）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string]string{
		"together.api_key":     "TOGETHER_API_KEY",
		"together.base_url":    "TOGETHER_BASE_URL",
		"together.text_model":  "TOGETHER_TEXT_MODEL",
		"openrouter.api_key":   "OPENROUTER_API_KEY",
		"openrouter.model":     "OPENROUTER_MODEL",
		"anthropic.api_key":    "ANTHROPIC_API_KEY",
		"anthropic.model":      "ANTHROPIC_MODEL",
		"text.provider":        "TEXT_PROVIDER",
		"image.allow_degraded": "IMAGE_ALLOW_DEGRADED",
		"relay.allowed_hosts":  "RELAY_ALLOWED_HOSTS",
		"server.port":          "PORT",
		"log_level":            "LOG_LEVEL",
		"log_file":             "LOG_FILE",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Text.Provider = strings.ToLower(strings.TrimSpace(config.Text.Provider))

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// logger 尚未初始化，輸出到 stderr 以免干擾 CLI 的 stdout
	fmt.Fprintln(os.Stderr, "Loading configuration",
		"text_provider:", config.Text.Provider,
		"text_model:", config.TextModel(),
		"together_api_key:", maskAPIKey(config.Together.APIKey),
	)

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "cocktail-generator")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "150s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// Together 設定
	v.SetDefault("together.api_key", "")
	v.SetDefault("together.base_url", "https://api.together.xyz/v1")
	v.SetDefault("together.text_model", "mistralai/Mixtral-8x7B-Instruct-v0.1")

	// OpenRouter 設定
	v.SetDefault("openrouter.api_key", "")
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "mistralai/mixtral-8x7b-instruct")

	// Anthropic 設定（base_url 空白時使用 SDK 預設）
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.model", "claude-3-5-haiku-latest")

	// 文字生成設定
	v.SetDefault("text.provider", ProviderTogether)
	v.SetDefault("text.max_tokens", 1000)
	v.SetDefault("text.temperature", 0.7)
	v.SetDefault("text.ingredients_max_tokens", 100)
	v.SetDefault("text.ingredients_temperature", 0.9)
	v.SetDefault("text.timeout", "60s")

	// 圖片生成設定
	v.SetDefault("image.model", "black-forest-labs/FLUX.1-schnell")
	v.SetDefault("image.steps", 8)
	v.SetDefault("image.width", 1024)
	v.SetDefault("image.height", 1024)
	v.SetDefault("image.timeout", "60s")
	v.SetDefault("image.allow_degraded", false)

	// 圖片下載設定
	v.SetDefault("relay.timeout", "30s")
	v.SetDefault("relay.max_size_bytes", 10*1024*1024) // 10MB
	v.SetDefault("relay.max_pixels", 4096*4096)
	v.SetDefault("relay.filename", "cocktail.png")
	v.SetDefault("relay.allowed_hosts", []string{})

	v.SetDefault("cors.allow_origins", []string{"*"})

	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "logs/app.log")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RequestTimeout <= 0 {
		return fmt.Errorf("invalid server request timeout")
	}

	// 圖片生成一律走 Together
	if config.Together.APIKey == "" {
		return fmt.Errorf("TOGETHER_API_KEY is required")
	}

	// 驗證文字供應商
	switch config.Text.Provider {
	case ProviderTogether:
	case ProviderOpenRouter:
		if config.OpenRouter.APIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required when text provider is %s", ProviderOpenRouter)
		}
	case ProviderAnthropic:
		if config.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when text provider is %s", ProviderAnthropic)
		}
	default:
		return fmt.Errorf("unsupported text provider: %q", config.Text.Provider)
	}

	// 驗證生成參數
	if config.Text.MaxTokens <= 0 || config.Text.IngredientsMaxTokens <= 0 {
		return fmt.Errorf("invalid text max tokens")
	}
	if config.Text.Temperature < 0 || config.Text.Temperature > 2 ||
		config.Text.IngredientsTemperature < 0 || config.Text.IngredientsTemperature > 2 {
		return fmt.Errorf("invalid text temperature")
	}
	if config.Image.Steps <= 0 || config.Image.Width <= 0 || config.Image.Height <= 0 {
		return fmt.Errorf("invalid image generation size or steps")
	}

	if config.Relay.MaxSizeBytes <= 0 {
		return fmt.Errorf("invalid relay max size")
	}
	if config.Relay.MaxPixels <= 0 {
		return fmt.Errorf("invalid relay max pixels")
	}

	return nil
}
