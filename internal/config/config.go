package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server         ServerConfig
	Store          StoreConfig
	Catalog        CatalogConfig
	Log            LogConfig
	AI             AIConfig
	Recommendation RecommendationConfig
	Conversation   ConversationConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	reco, err := loadRecommendationConfig()
	if err != nil {
		return nil, err
	}

	conv, err := loadConversationConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:         server,
		Store:          StoreConfig{DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL"))},
		Catalog:        CatalogConfig{File: strings.TrimSpace(os.Getenv("CATALOG_FILE"))},
		Log:            LogConfig{Level: getEnvOrDefault("LOG_LEVEL", "info")},
		AI:             ai,
		Recommendation: reco,
		Conversation:   conv,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	origins := splitList(getEnvOrDefault("CORS_ORIGINS", "*"))

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, CORSOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, CORSOrigins: origins}, nil
}

// StoreConfig 选择记录存储，DatabaseURL 为空时状态保存在内存中。
type StoreConfig struct {
	DatabaseURL string
}

// Durable 表示是否配置了 postgres 存储。
func (c StoreConfig) Durable() bool {
	return c.DatabaseURL != ""
}

// CatalogConfig 指向 YAML 菜单文件，为空时使用内置的演示门店。
type CatalogConfig struct {
	File string
}

// LogConfig 描述日志配置。
type LogConfig struct {
	Level string
}

// NewLogger 按配置的级别创建生产环境 zap 日志器。
func (c LogConfig) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL value %q: %w", c.Level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	if level == zapcore.DebugLevel {
		cfg.Development = true
	}
	return cfg.Build()
}

// Provider 表示自由问答所使用的模型后端。
type Provider string

const (
	ProviderArk    Provider = "ark"
	ProviderOpenAI Provider = "openai"
)

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider     Provider
	APIKey       string
	AccessKey    string
	SecretKey    string
	Model        string
	BaseURL      string
	Region       string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
	OpenAIKey    string
	OpenAIModel  string
	HistoryLimit int
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAIKey != ""
	default:
		return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
	}
}

// NewChatModel 使用配置创建一个 Ark 模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.Model == "" || (c.APIKey == "" && (c.AccessKey == "" || c.SecretKey == "")) {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY and Model, or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	provider := Provider(strings.ToLower(getEnvOrDefault("AI_PROVIDER", string(ProviderArk))))
	if provider != ProviderArk && provider != ProviderOpenAI {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}

	history := 6
	if override, err := parseOptionalIntEnv("AI_HISTORY_LIMIT"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		history = max(*override, 0)
	}

	return AIConfig{
		Provider:     provider,
		APIKey:       strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:    strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:    strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:        strings.TrimSpace(os.Getenv("Model")),
		BaseURL:      getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:       getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:  temperature,
		TopP:         topP,
		MaxTokens:    maxTokens,
		OpenAIKey:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:  getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		HistoryLimit: history,
	}, nil
}

// RecommendationConfig 描述推荐问答流程的阈值。
type RecommendationConfig struct {
	SmallMax  int
	MediumMax int
	Shortlist int
}

func loadRecommendationConfig() (RecommendationConfig, error) {
	cfg := RecommendationConfig{SmallMax: 2, MediumMax: 5, Shortlist: 5}
	for key, target := range map[string]*int{
		"RECO_SMALL_MAX":  &cfg.SmallMax,
		"RECO_MEDIUM_MAX": &cfg.MediumMax,
		"RECO_SHORTLIST":  &cfg.Shortlist,
	} {
		val, err := parseOptionalIntEnv(key)
		if err != nil {
			return RecommendationConfig{}, err
		}
		if val == nil {
			continue
		}
		if *val < 1 {
			return RecommendationConfig{}, fmt.Errorf("invalid %s value %d: must be positive", key, *val)
		}
		*target = *val
	}
	if cfg.MediumMax < cfg.SmallMax {
		return RecommendationConfig{}, fmt.Errorf("RECO_MEDIUM_MAX (%d) must not be below RECO_SMALL_MAX (%d)", cfg.MediumMax, cfg.SmallMax)
	}
	return cfg, nil
}

// ConversationConfig 描述对话引擎配置。
type ConversationConfig struct {
	RecentTemplates int
}

func loadConversationConfig() (ConversationConfig, error) {
	recent := 6
	if override, err := parseOptionalIntEnv("CONVERSATION_RECENT_TEMPLATES"); err != nil {
		return ConversationConfig{}, err
	} else if override != nil {
		recent = max(*override, 1)
	}
	return ConversationConfig{RecentTemplates: recent}, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
