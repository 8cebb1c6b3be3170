package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration resolved once at startup and
// passed explicitly into every component constructor.
type Config struct {
	ServerPort  string `mapstructure:"server_port"`
	Environment string `mapstructure:"environment"`

	MySQLDSN string `mapstructure:"mysql_dsn"`

	RedisAddr string `mapstructure:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db"`
	RedisPass string `mapstructure:"redis_password"`

	JWTSecret        string `mapstructure:"jwt_secret"`
	JWTAlgorithm     string `mapstructure:"jwt_algorithm"`
	TokenLifetimeMin int    `mapstructure:"token_lifetime_minutes"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load resolves configuration from defaults, an optional fleetreport.yaml in
// the working directory, and FLEETREPORT_* environment variables.
//
// Deployments outside development must provide a JWT secret; Load refuses to
// start without one.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server_port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("mysql_dsn", "user:password@tcp(localhost:3306)/fleet?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_password", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_algorithm", "HS256")
	v.SetDefault("token_lifetime_minutes", 60)
	v.SetDefault("allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetConfigName("fleetreport")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("fleetreport")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.JWTSecret == "" {
		if cfg.Environment != "development" {
			return nil, fmt.Errorf("jwt_secret must be set when environment is %q", cfg.Environment)
		}
		cfg.JWTSecret = "dev-only-secret"
	}
	if cfg.JWTAlgorithm != "HS256" {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", cfg.JWTAlgorithm)
	}
	if cfg.TokenLifetimeMin <= 0 {
		return nil, fmt.Errorf("token_lifetime_minutes must be positive, got %d", cfg.TokenLifetimeMin)
	}

	return &cfg, nil
}

// TokenLifetime returns the configured token validity window.
func (c *Config) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMin) * time.Minute
}
