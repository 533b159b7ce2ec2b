package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override (SCREENER_PORT, ...).
const EnvPrefix = "SCREENER"

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"45s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Provider struct {
		BaseURL   string        `yaml:"base_url" default:"https://scanner.tradingview.com"`
		Market    string        `yaml:"market" default:"india"`
		Timeout   time.Duration `yaml:"timeout" default:"30s"`
		UserAgent string        `yaml:"user_agent" default:"Mozilla/5.0 (X11; Linux x86_64) TechScreener/1.0"`
	} `yaml:"provider"`
	Scan struct {
		LockBackend string        `yaml:"lock_backend" default:"memory"`
		LockTTL     time.Duration `yaml:"lock_ttl" default:"45s"`
		RateLimit   struct {
			Capacity     float64 `yaml:"capacity" default:"5"`
			RefillPerSec float64 `yaml:"refill_per_sec" default:"0.5"`
		} `yaml:"rate_limit"`
	} `yaml:"scan"`
	Redis struct {
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"screener"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled        bool          `yaml:"enabled"`
		Brokers        []string      `yaml:"brokers"`
		LogTopic       string        `yaml:"log_topic" default:"screener.logs"`
		Compression    string        `yaml:"compression" default:"gzip"`
		RequiredAcks   int           `yaml:"required_acks" default:"-1"`
		FlushInterval  time.Duration `yaml:"flush_interval" default:"30s"`
		FlushThreshold int           `yaml:"flush_threshold" default:"100"`
	} `yaml:"kafka"`
}

// envOverrides lists the settings that may come from the environment.
// Zero values leave the file value in place.
type envOverrides struct {
	Environment     string        `envconfig:"ENV"`
	Port            int           `envconfig:"PORT"`
	LogLevel        string        `envconfig:"LOG_LEVEL"`
	LogFormat       string        `envconfig:"LOG_FORMAT"`
	ProviderBaseURL string        `envconfig:"PROVIDER_BASE_URL"`
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT"`
	LockBackend     string        `envconfig:"LOCK_BACKEND"`
	RedisHost       string        `envconfig:"REDIS_HOST"`
	RedisPort       int           `envconfig:"REDIS_PORT"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	KafkaBrokers    []string      `envconfig:"KAFKA_BROKERS"`
}

// Default returns a config populated from the default tags only.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (if present), the YAML file (if present, otherwise
// defaults) and then applies SCREENER_* environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	var (
		c   *Config
		err error
	)
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		c, err = Default()
	} else {
		c, err = Load(path)
	}
	if err != nil {
		return nil, err
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	c.apply(env)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) apply(env envOverrides) {
	if env.Environment != "" {
		c.Environment = env.Environment
	}
	if env.Port != 0 {
		c.Server.Port = env.Port
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		c.Log.Format = env.LogFormat
	}
	if env.ProviderBaseURL != "" {
		c.Provider.BaseURL = env.ProviderBaseURL
	}
	if env.ProviderTimeout > 0 {
		c.Provider.Timeout = env.ProviderTimeout
	}
	if env.LockBackend != "" {
		c.Scan.LockBackend = env.LockBackend
	}
	if env.RedisHost != "" {
		c.Redis.Host = env.RedisHost
	}
	if env.RedisPort != 0 {
		c.Redis.Port = env.RedisPort
	}
	if env.RedisPassword != "" {
		c.Redis.Password = env.RedisPassword
	}
	if len(env.KafkaBrokers) > 0 {
		c.Kafka.Brokers = env.KafkaBrokers
		c.Kafka.Enabled = true
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required")
	}
	if c.Provider.Market == "" {
		return fmt.Errorf("provider.market is required")
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("provider.timeout must be positive")
	}
	if c.Scan.LockBackend != "memory" && c.Scan.LockBackend != "redis" {
		return fmt.Errorf("scan.lock_backend must be 'memory' or 'redis', got '%s'", c.Scan.LockBackend)
	}
	if c.Scan.LockTTL < c.Provider.Timeout {
		return fmt.Errorf("scan.lock_ttl (%s) must not be shorter than provider.timeout (%s)", c.Scan.LockTTL, c.Provider.Timeout)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
