package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/RaikyD/einlagen-orders-service/internal/schedule"
)

type Config struct {
	HTTP_PORT            string `env:"HTTP_PORT"`
	DB_STRING            string `env:"DB_STRING"`
	KAFKA_BROKERS        string `env:"KAFKA_BROKERS"`
	KAFKA_TOPIC          string `env:"KAFKA_TOPIC"`
	KAFKA_PREFILL_TOPIC  string `env:"KAFKA_PREFILL_TOPIC"`
	KAFKA_GROUP_ID       string `env:"KAFKA_GROUP_ID"`
	REDIS_ADDR           string `env:"REDIS_ADDR"`
	CORS_ORIGINS         string `env:"CORS_ORIGINS"`
	COMPLETION_DAYS      string `env:"COMPLETION_DAYS"`
	COMPLETION_TIME_MODE string `env:"COMPLETION_TIME_MODE"`
	APP_ENV              string `env:"APP_ENV"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		HTTP_PORT:            getEnv("HTTP_PORT", "8080"),
		DB_STRING:            os.Getenv("DB_STRING"),
		KAFKA_BROKERS:        getEnv("KAFKA_BROKERS", "localhost:9092"),
		KAFKA_TOPIC:          getEnv("KAFKA_TOPIC", "orders.created"),
		KAFKA_PREFILL_TOPIC:  getEnv("KAFKA_PREFILL_TOPIC", "orders.prefill"),
		KAFKA_GROUP_ID:       getEnv("KAFKA_GROUP_ID", "einlagen-orders-service"),
		REDIS_ADDR:           os.Getenv("REDIS_ADDR"),
		CORS_ORIGINS:         getEnv("CORS_ORIGINS", "*"),
		COMPLETION_DAYS:      os.Getenv("COMPLETION_DAYS"),
		COMPLETION_TIME_MODE: getEnv("COMPLETION_TIME_MODE", "wallclock"),
		APP_ENV:              getEnv("APP_ENV", "development"),
	}

	if cfg.DB_STRING == "" {
		return nil, fmt.Errorf("DB_STRING is required")
	}
	if cfg.COMPLETION_DAYS != "" && schedule.ParseLeadDays(cfg.COMPLETION_DAYS) == nil {
		return nil, fmt.Errorf("COMPLETION_DAYS must be a non-negative integer, got %q", cfg.COMPLETION_DAYS)
	}
	switch strings.ToLower(cfg.COMPLETION_TIME_MODE) {
	case "wallclock", "chosen":
	default:
		return nil, fmt.Errorf("COMPLETION_TIME_MODE must be wallclock or chosen, got %q", cfg.COMPLETION_TIME_MODE)
	}

	return cfg, nil
}

// LeadDays is the partner completionDays setting, nil when not configured.
func (c *Config) LeadDays() *int {
	return schedule.ParseLeadDays(c.COMPLETION_DAYS)
}

func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORS_ORIGINS, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
