package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"
)

type (
	Config struct {
		Host       string `mapstructure:"HOST"`
		Port       string `mapstructure:"PORT"`
		DBHost     string `mapstructure:"DB_HOST"`
		DBPort     string `mapstructure:"DB_PORT"`
		DBUser     string `mapstructure:"DB_USER"`
		DBPassword string `mapstructure:"DB_PASSWORD"`
		DBName     string `mapstructure:"DB_NAME"`
		DBSSLMode  string `mapstructure:"DB_SSL_MODE"`

		SMTPHost     string `mapstructure:"SMTP_HOST"`
		SMTPPort     string `mapstructure:"SMTP_PORT"`
		SMTPUser     string `mapstructure:"SMTP_USER"`
		SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
		SMTPFrom     string `mapstructure:"SMTP_FROM"`

		ResetBaseURL  string `mapstructure:"RESET_BASE_URL"`
		ResetTokenTTL string `mapstructure:"RESET_TOKEN_TTL"`
	}
)

func NewConfig() (*Config, error) {
	viper.SetEnvPrefix("JOBBOARD")

	viper.SetDefault("HOST", "0.0.0.0")
	viper.SetDefault("PORT", "1323")
	viper.SetDefault("DB_HOST", "0.0.0.0")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "db")
	viper.SetDefault("DB_SSL_MODE", sslModeDisable)
	viper.SetDefault("SMTP_HOST", "0.0.0.0")
	viper.SetDefault("SMTP_PORT", "25")
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("SMTP_FROM", "noreply@jobboard.local")
	viper.SetDefault("RESET_BASE_URL", "http://0.0.0.0:3000/reset-password")
	viper.SetDefault("RESET_TOKEN_TTL", "24h")

	envs := []string{
		"HOST", "PORT",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASSWORD", "SMTP_FROM",
		"RESET_BASE_URL", "RESET_TOKEN_TTL",
	}
	for _, key := range envs {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// ResetTTL returns the parsed reset-token lifetime. The raw value is validated
// in NewConfig, so the fallback only guards a hand-built Config.
func (c *Config) ResetTTL() time.Duration {
	d, err := time.ParseDuration(c.ResetTokenTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

func validate(cfg *Config) error {
	if _, err := time.ParseDuration(cfg.ResetTokenTTL); err != nil {
		return errors.Wrap(err, "RESET_TOKEN_TTL is invalid")
	}

	validSSLValues := []string{sslModeDisable, sslModeRequire}
	for _, validValue := range validSSLValues {
		if cfg.DBSSLMode == validValue {
			return nil
		}
	}
	return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
}
