package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	VLM       VLMConfig
	LLM       LLMConfig
	Reward    RewardConfig
	Guest     GuestConfig
	Admin     AdminConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	CacheTTL int
}

type VLMConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type LLMConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

type RewardConfig struct {
	DefaultAccuracy    float64
	DefaultHelpfulness float64
	DefaultLatency     float64
	UpdateLimit        int
}

type GuestConfig struct {
	MaxAnalyses int
	WindowSec   int
}

type AdminConfig struct {
	Secret string
}

type RateLimitConfig struct {
	MaxRequestsPerMinute int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/dreamforge")

	viper.SetEnvPrefix("DREAMFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 10485760)

	viper.SetDefault("sqlite.path", "./data/dreamforge.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.cacheTTL", 3600)

	// Secrets default to empty so AutomaticEnv picks them up: viper only
	// feeds Unmarshal for keys it already knows about.
	viper.SetDefault("admin.secret", "")
	viper.SetDefault("vlm.apiKey", "")
	viper.SetDefault("llm.apiKey", "")

	viper.SetDefault("vlm.model", "gpt-4-vision-preview")
	viper.SetDefault("vlm.temperature", 0.4)
	viper.SetDefault("vlm.maxTokens", 1024)
	viper.SetDefault("vlm.timeoutSec", 45)

	viper.SetDefault("llm.model", "gpt-4")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.maxTokens", 1024)
	viper.SetDefault("llm.timeoutSec", 30)

	viper.SetDefault("reward.defaultAccuracy", 2.0)
	viper.SetDefault("reward.defaultHelpfulness", 1.0)
	viper.SetDefault("reward.defaultLatency", -1.0)
	viper.SetDefault("reward.updateLimit", 100)

	viper.SetDefault("guest.maxAnalyses", 5)
	viper.SetDefault("guest.windowSec", 86400)

	viper.SetDefault("ratelimit.maxRequestsPerMinute", 60)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
