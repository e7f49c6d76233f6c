package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Metrics        MetricsConfig        `mapstructure:"metrics"`
	Redis          RedisConfig          `mapstructure:"redis"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	Moderation     ModerationConfig     `mapstructure:"moderation"`
	Primary        PrimaryConfig        `mapstructure:"primary"`
	HuggingFace    HuggingFaceConfig    `mapstructure:"huggingface"`
	OpenAI         OpenAIConfig         `mapstructure:"openai"`
	Local          LocalConfig          `mapstructure:"local"`
	Health         HealthConfig         `mapstructure:"health"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Log            LogConfig            `mapstructure:"log"`
}

type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	MetricsPort int    `mapstructure:"metrics_port"`
	Host        string `mapstructure:"host"`
	EnableDocs  bool   `mapstructure:"enable_docs"`

	// AllowOrigins feeds the CORS middleware. Empty means any origin.
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
	// Backend is "memory" or "redis".
	Backend string `mapstructure:"backend"`
}

type ModerationConfig struct {
	// Strict disables the keyword fallback, so an exhausted chain is reported as unavailable.
	Strict          bool          `mapstructure:"strict"`
	StrategyTimeout time.Duration `mapstructure:"strategy_timeout"`
	// Order lists upstream classifiers by priority. Unknown or unconfigured names are skipped.
	Order []string `mapstructure:"order"`
}

type PrimaryConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIName           string        `mapstructure:"api_name"`
	CallPrefix        string        `mapstructure:"call_prefix"`
	ReconnectCooldown time.Duration `mapstructure:"reconnect_cooldown"`
}

type HuggingFaceConfig struct {
	URL   string `mapstructure:"url"`
	Token string `mapstructure:"token"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type LocalConfig struct {
	URL string `mapstructure:"url"`
}

type HealthConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type CircuitBreakerConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxFailures uint32        `mapstructure:"max_failures"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`
	FileDisabled bool   `mapstructure:"file_disabled"`
}

var globalConfig Config

func Load(configPath string) error {
	v := viper.New()
	setDefaultValues(v)

	var cfg Config
	if err := loadConfigFile(v, configPath, "config", &cfg); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}
	globalConfig = cfg
	return nil
}

func loadConfigFile(v *viper.Viper, configPath, fileName string, out interface{}) error {
	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("log.level", "LOG_LEVEL")
	_ = v.BindEnv("log.file_disabled", "LOG_FILE_DISABLED")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
		}
		// environment variables and defaults only
	}

	// Env overrides arrive as strings, e.g. MODERATION_ORDER=primary,openai.
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(out, decodeHook); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.enable_docs", false)
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("metrics.enabled", false)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)

	v.SetDefault("rate_limit.requests", 20)
	v.SetDefault("rate_limit.window", time.Hour)
	v.SetDefault("rate_limit.backend", "memory")

	v.SetDefault("moderation.strict", false)
	v.SetDefault("moderation.strategy_timeout", 30*time.Second)
	v.SetDefault("moderation.order", []string{"primary", "huggingface", "openai", "local"})

	v.SetDefault("primary.base_url", "https://duchaba-friendly-text-moderation.hf.space")
	v.SetDefault("primary.api_name", "fetch_toxicity_level")
	v.SetDefault("primary.call_prefix", "/gradio_api/call")
	v.SetDefault("primary.reconnect_cooldown", 30*time.Second)

	v.SetDefault("huggingface.url", "https://router.huggingface.co/hf-inference/models/unitary/toxic-bert")
	v.SetDefault("huggingface.token", "")

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")

	v.SetDefault("local.url", "")

	v.SetDefault("health.cache_ttl", 30*time.Second)

	v.SetDefault("circuit_breaker.timeout", 30*time.Second)
	v.SetDefault("circuit_breaker.max_failures", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file_disabled", false)
}

func GetConfig() *Config {
	return &globalConfig
}
