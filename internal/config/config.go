// Package config загрузка конфигурации сервиса из toml-файла
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Auth      AuthConfig      `toml:"auth"`
	Stripe    StripeConfig    `toml:"stripe"`
	OneSignal OneSignalConfig `toml:"onesignal"`
	Worker    WorkerConfig    `toml:"worker"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN возвращает строку подключения PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// AuthConfig настройки проверки JWT
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

// StripeConfig настройки интеграции со Stripe
type StripeConfig struct {
	SecretKey            string `toml:"secret_key"`
	WebhookSecret        string `toml:"webhook_secret"`
	OnboardingReturnURL  string `toml:"onboarding_return_url"`
	OnboardingRefreshURL string `toml:"onboarding_refresh_url"`
}

// OneSignalConfig настройки интеграции с OneSignal
type OneSignalConfig struct {
	AppID      string `toml:"app_id"`
	RestAPIKey string `toml:"rest_api_key"`
	Timeout    int    `toml:"timeout"` // секунды
}

// WorkerConfig настройки фоновых воркеров
type WorkerConfig struct {
	PollInterval       int `toml:"poll_interval"`        // секунды между проходами expirer
	ReconcileInterval  int `toml:"reconcile_interval"`   // секунды между проходами reconciler
	PendingGracePeriod int `toml:"pending_grace_period"` // минуты до отмены зависших pending бронирований
}

// Load читает конфигурацию из toml-файла и применяет значения по умолчанию
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	cfg.applyDefaults()

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("config: auth.jwt_secret is required")
	}
	if cfg.Database.Host == "" {
		return nil, fmt.Errorf("config: database.host is required")
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "hsm-marketplace"
	}
	if c.OneSignal.Timeout == 0 {
		c.OneSignal.Timeout = 10
	}
	if c.Worker.PollInterval == 0 {
		c.Worker.PollInterval = 30
	}
	if c.Worker.ReconcileInterval == 0 {
		c.Worker.ReconcileInterval = 300
	}
	if c.Worker.PendingGracePeriod == 0 {
		c.Worker.PendingGracePeriod = 60
	}
}
