// Package config loads application settings from defaults, an optional YAML
// file and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileEnv names the environment variable holding an optional config file path.
const FileEnv = "CONFIG_FILE"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Candles    CandlesConfig    `mapstructure:"candles"`
	Deriv      DerivConfig      `mapstructure:"deriv"`
	TwelveData TwelveDataConfig `mapstructure:"twelvedata"`
	Binance    BinanceConfig    `mapstructure:"binance"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Prompt     PromptConfig     `mapstructure:"prompt"`
	Redis      RedisConfig      `mapstructure:"redis"`
	DB         DBConfig         `mapstructure:"db"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	GinMode         string        `mapstructure:"gin_mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CandlesConfig selects the market data source used by both the analysis
// pipeline and the candles endpoint.
type CandlesConfig struct {
	Source  string        `mapstructure:"source"` // deriv | twelvedata | binance
	Count   int           `mapstructure:"count"`
	Timeout time.Duration `mapstructure:"timeout"`
	Cache   bool          `mapstructure:"cache"`
}

type DerivConfig struct {
	URL   string `mapstructure:"url"`
	AppID string `mapstructure:"app_id"`
}

type TwelveDataConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type BinanceConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // gemini | openai
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float64       `mapstructure:"temperature"`
}

type PromptConfig struct {
	Strategy      string  `mapstructure:"strategy"`
	Window        int     `mapstructure:"window"`
	MinRewardRisk float64 `mapstructure:"min_reward_risk"`
}

// RedisConfig enables the candle cache when Host is set.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

// Enabled reports whether a Redis host is configured.
func (r RedisConfig) Enabled() bool { return r.Host != "" }

type DBConfig struct {
	Driver      string `mapstructure:"driver"` // sqlite | postgres
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

var defaults = map[string]any{
	"server.port":             "8080",
	"server.gin_mode":         "release",
	"server.shutdown_timeout": 10 * time.Second,
	"server.allow_origins":    []string{"*"},
	"log.level":               "info",
	"log.format":              "text",
	"candles.source":          "deriv",
	"candles.count":           200,
	"candles.timeout":         15 * time.Second,
	"candles.cache":           true,
	"deriv.url":               "wss://ws.derivws.com/websockets/v3",
	"deriv.app_id":            "1089",
	"twelvedata.api_key":      "",
	"twelvedata.base_url":     "https://api.twelvedata.com",
	"binance.base_url":        "https://api.binance.com",
	"llm.provider":            "gemini",
	"llm.model":               "",
	"llm.api_key":             "",
	"llm.base_url":            "",
	"llm.timeout":             60 * time.Second,
	"llm.temperature":         0.2,
	"prompt.strategy":         "analyst",
	"prompt.window":           100,
	"prompt.min_reward_risk":  1.5,
	"redis.host":              "",
	"redis.port":              "6379",
	"redis.password":          "",
	"redis.db":                0,
	"db.driver":               "sqlite",
	"db.dsn":                  "file:aifx.db?_pragma=busy_timeout(5000)",
	"db.auto_migrate":         true,
}

// aliases maps keys to extra environment variable names kept for compatibility
// with the provider SDKs' own conventions.
var aliases = map[string][]string{
	"llm.api_key":        {"LLM_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY"},
	"twelvedata.api_key": {"TWELVEDATA_API_KEY", "TWELVE_DATA_API_KEY"},
	"server.port":        {"SERVER_PORT", "PORT"},
}

// Load reads configuration. The YAML file named by CONFIG_FILE is optional;
// environment variables use upper snake case keys such as LLM_PROVIDER.
func Load() (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if path := os.Getenv(FileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range aliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unknown provider names and non-positive limits.
func (c *Config) Validate() error {
	var errs []error
	switch c.Candles.Source {
	case "deriv", "twelvedata", "binance":
	default:
		errs = append(errs, fmt.Errorf("candles.source: unknown source %q", c.Candles.Source))
	}
	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		errs = append(errs, fmt.Errorf("llm.provider: unknown provider %q", c.LLM.Provider))
	}
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("db.driver: unknown driver %q", c.DB.Driver))
	}
	if c.Candles.Count <= 0 {
		errs = append(errs, errors.New("candles.count must be positive"))
	}
	if c.Candles.Timeout <= 0 {
		errs = append(errs, errors.New("candles.timeout must be positive"))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("llm.timeout must be positive"))
	}
	return errors.Join(errs...)
}
