package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddress string
	DatabaseURL string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	AccessTokenPrivateKeyPath  string
	AccessTokenPublicKeyPath   string
	RefreshTokenPrivateKeyPath string
	RefreshTokenPublicKeyPath  string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	SessionTTL      time.Duration

	PasswordPepper string

	CookieDomain     string
	CookieSecure     bool
	AllowedOrigins   []string
	AllowCredentials bool
}

var requiredKeys = []string{
	"DATABASE_URL",
	"REDIS_ADDRESS",
	"ACCESS_TOKEN_PRIVATE_KEY_PATH",
	"ACCESS_TOKEN_PUBLIC_KEY_PATH",
	"REFRESH_TOKEN_PRIVATE_KEY_PATH",
	"REFRESH_TOKEN_PUBLIC_KEY_PATH",
	"ACCESS_TOKEN_TTL",
	"REFRESH_TOKEN_TTL",
	"SESSION_TTL",
	"PASSWORD_PEPPER",
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	for _, key := range append(requiredKeys,
		"HTTP_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
		"COOKIE_DOMAIN", "COOKIE_SECURE",
		"ALLOWED_ORIGINS", "ALLOW_CREDENTIALS",
	) {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	viper.SetDefault("HTTP_ADDRESS", ":8080")

	for _, key := range requiredKeys {
		if viper.GetString(key) == "" {
			return nil, fmt.Errorf("%s is not set", key)
		}
	}

	cfg := &Config{
		HTTPAddress:                viper.GetString("HTTP_ADDRESS"),
		DatabaseURL:                viper.GetString("DATABASE_URL"),
		RedisAddress:               viper.GetString("REDIS_ADDRESS"),
		RedisPassword:              viper.GetString("REDIS_PASSWORD"),
		RedisDB:                    viper.GetInt("REDIS_DB"),
		AccessTokenPrivateKeyPath:  viper.GetString("ACCESS_TOKEN_PRIVATE_KEY_PATH"),
		AccessTokenPublicKeyPath:   viper.GetString("ACCESS_TOKEN_PUBLIC_KEY_PATH"),
		RefreshTokenPrivateKeyPath: viper.GetString("REFRESH_TOKEN_PRIVATE_KEY_PATH"),
		RefreshTokenPublicKeyPath:  viper.GetString("REFRESH_TOKEN_PUBLIC_KEY_PATH"),
		AccessTokenTTL:             viper.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:            viper.GetDuration("REFRESH_TOKEN_TTL"),
		SessionTTL:                 viper.GetDuration("SESSION_TTL"),
		PasswordPepper:             viper.GetString("PASSWORD_PEPPER"),
		CookieDomain:               viper.GetString("COOKIE_DOMAIN"),
		CookieSecure:               viper.GetBool("COOKIE_SECURE"),
		AllowedOrigins:             viper.GetStringSlice("ALLOWED_ORIGINS"),
		AllowCredentials:           viper.GetBool("ALLOW_CREDENTIALS"),
	}

	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_TTL must be positive")
	}
	if cfg.RefreshTokenTTL <= 0 {
		return nil, fmt.Errorf("REFRESH_TOKEN_TTL must be positive")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}

	return cfg, nil
}
