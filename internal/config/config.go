package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "KASSE"

type AppConfig struct {
	Gin       *GinConfig       `mapstructure:"gin"`
	API       *APIConfig       `mapstructure:"api"`
	Log       *LogConfig       `mapstructure:"log"`
	Database  *DatabaseConfig  `mapstructure:"database"`
	Postgres  *PostgresConfig  `mapstructure:"postgres"`
	SQLite    *SQLiteConfig    `mapstructure:"sqlite"`
	Cart      *CartConfig      `mapstructure:"cart"`
	Redis     *RedisConfig     `mapstructure:"redis"`
	Kafka     *KafkaConfig     `mapstructure:"kafka"`
	RateLimit *RateLimitConfig `mapstructure:"rate_limit"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	JWTTTL             time.Duration `mapstructure:"jwt_ttl"`
	AdminPasswordHash  string        `mapstructure:"admin_password_hash"`
	AdminPassword      string        `mapstructure:"admin_password"`
	SessionCookie      string        `mapstructure:"session_cookie"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type CartConfig struct {
	// Backend is "memory" or "redis".
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Mock          bool     `mapstructure:"mock"`
	Brokers       []string `mapstructure:"brokers"`
	OrderLogTopic string   `mapstructure:"order_log_topic"`
	ShotLogTopic  string   `mapstructure:"shot_log_topic"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

// Load reads the YAML file at path. Environment variables prefixed with
// KASSE_ override file values, e.g. KASSE_API_PORT for api.port.
func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return decode(v)
}

// LoadAndWatch is Load plus a file watch. onChange receives every config that
// decodes cleanly after a write to the file.
func LoadAndWatch(path string, onChange func(*AppConfig)) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}

		updated, err := decode(v)
		if err != nil {
			zap.L().Warn("ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
			return
		}

		zap.L().Info("config reloaded", zap.String("file", e.Name))
		onChange(updated)
	})
	v.WatchConfig()

	return conf, nil
}

func (c *AppConfig) validate() error {
	if c.API == nil || c.Gin == nil {
		return fmt.Errorf("config: api and gin sections are required")
	}
	if c.API.Port == "" {
		return fmt.Errorf("config: api.port is required")
	}
	if c.Log == nil {
		c.Log = &LogConfig{Level: "info"}
	}
	if c.Database == nil {
		c.Database = &DatabaseConfig{Driver: "postgres"}
	}
	if c.Cart == nil {
		c.Cart = &CartConfig{Backend: "memory"}
	}
	if c.API.SessionCookie == "" {
		c.API.SessionCookie = "kasse_session"
	}
	if c.API.JWTTTL <= 0 {
		c.API.JWTTTL = 12 * time.Hour
	}

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unknown database.driver %q", c.Database.Driver)
	}
	switch c.Cart.Backend {
	case "memory":
	case "redis":
		if c.Redis == nil || c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required for the redis cart backend")
		}
	default:
		return fmt.Errorf("config: unknown cart.backend %q", c.Cart.Backend)
	}

	return nil
}
