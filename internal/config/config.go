package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	// Gemini API密钥池，配额耗尽时按顺序轮换
	GeminiAPIKeys []string `mapstructure:"gemini_api_keys"`

	// 池为空时使用的单个静态密钥
	GeminiAPIKey string `mapstructure:"gemini_api_key"`

	// Gemini OpenAI兼容端点
	GeminiAPIBase string `mapstructure:"gemini_api_base"`

	// 使用的模型
	GeminiModel string `mapstructure:"gemini_model"`

	// MinerU 文档抽取服务
	MineruAPIKey  string `mapstructure:"mineru_api_key"`
	MineruAPIBase string `mapstructure:"mineru_api_base"`

	// 语言对
	SourceLanguage string `mapstructure:"source_language"`
	TargetLanguage string `mapstructure:"target_language"`

	// 分块参数（token估算值）
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`

	// 块间延迟，缓解请求频率限制
	RequestDelay time.Duration `mapstructure:"request_delay"`

	// 生成参数
	Temperature     float32 `mapstructure:"temperature"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`

	// 单次外部调用超时
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	Debug bool `mapstructure:"debug"`
}

// Load 加载配置
// configPath 为空时在 $HOME 和当前目录搜索 .glossary-translator.yaml，
// 找不到配置文件时使用默认值；环境变量 GEMINI_API_KEY(S) 和 MINERU_API_KEY 优先生效
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(home)
		v.AddConfigPath(".")
		v.SetConfigName(".glossary-translator")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("gemini_api_base", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("mineru_api_base", "https://mineru.net/api/v4")
	v.SetDefault("source_language", "English")
	v.SetDefault("target_language", "Simplified Chinese")
	v.SetDefault("chunk_size", 1500)
	v.SetDefault("chunk_overlap", 100)
	v.SetDefault("request_delay", 300*time.Millisecond)
	v.SetDefault("temperature", 0.3)
	v.SetDefault("max_output_tokens", 4096)
	v.SetDefault("request_timeout", 2*time.Minute)
	v.SetDefault("debug", false)
}

// applyEnv 环境变量覆盖文件配置
func applyEnv(cfg *Config) {
	if keys := os.Getenv("GEMINI_API_KEYS"); keys != "" {
		cfg.GeminiAPIKeys = splitKeys(keys)
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.GeminiAPIKey = key
	}
	if key := os.Getenv("MINERU_API_KEY"); key != "" {
		cfg.MineruAPIKey = key
	}
}

// splitKeys 解析逗号分隔的密钥列表
func splitKeys(s string) []string {
	parts := strings.Split(s, ",")
	keys := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			keys = append(keys, part)
		}
	}
	return keys
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must not be negative, got %d", c.ChunkOverlap)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %v", c.Temperature)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("max_output_tokens must be positive, got %d", c.MaxOutputTokens)
	}
	return nil
}

// HasGeminiKey 是否配置了任何Gemini密钥
func (c *Config) HasGeminiKey() bool {
	return len(c.GeminiAPIKeys) > 0 || c.GeminiAPIKey != ""
}
