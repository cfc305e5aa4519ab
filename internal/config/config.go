package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	AdminKey        string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	MaxUploadSizeMB int64         `mapstructure:"MAX_UPLOAD_MB"`
	HomeCountry     string        `mapstructure:"HOME_COUNTRY"`
	AttachmentsRoot string        `mapstructure:"ATTACHMENTS_ROOT"`
	AIAPIKey        string        `mapstructure:"AI_API_KEY"`
	AIBaseURL       string        `mapstructure:"AI_BASE_URL"`
	AIModel         string        `mapstructure:"AI_MODEL"`
	AIMaxRequests   int           `mapstructure:"AI_MAX_REQUESTS"`
	AIMinInterval   time.Duration `mapstructure:"AI_MIN_INTERVAL"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("HOME_COUNTRY", "Казахстан")
	v.SetDefault("ATTACHMENTS_ROOT", ".")
	// AI_API_KEY has no default on purpose: absence disables the external
	// endpoint entirely.
	v.SetDefault("AI_MAX_REQUESTS", 0)
	v.SetDefault("AI_MIN_INTERVAL", "2s")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
