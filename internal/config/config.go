// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	DB       DBConfig       `yaml:"db"`
	Redis    RedisConfig    `yaml:"redis"`
	Security SecurityConfig `yaml:"security"`
	Timeouts TimeoutConfig  `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE" env-default:"15s"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"50080"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig содержит параметры выпуска и валидации access-токенов.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"ACCESS_TOKEN_TTL" env-default:"24h"`
	Issuer         string        `yaml:"issuer" env:"ISSUER" env-default:"webapp-starter"`
}

// DBConfig — настройки подключения к базе данных.
// Пустой URL переключает сервис на in-memory хранилище (локальный режим).
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL"`
}

// RedisConfig — настройки Redis для CSRF-стора.
// Пустой URL переключает CSRF-стор на память процесса.
type RedisConfig struct {
	RedisURL string `yaml:"redis_url" env:"REDIS_URL"`
}

// SecurityConfig — параметры request-security pipeline.
type SecurityConfig struct {
	// AllowedOrigins — белый список Origin для prod; вне prod
	// любой непустой Origin отражается как есть.
	AllowedOrigins []string        `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
	CSRFTTL        time.Duration   `yaml:"csrf_ttl" env:"CSRF_TTL" env-default:"24h"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig — два независимых лимитера с одинаковой политикой:
// общий на auth-эндпоинты и более строгий на login.
type RateLimitConfig struct {
	AuthMax       int           `yaml:"auth_max" env:"RATE_AUTH_MAX" env-default:"20"`
	AuthWindow    time.Duration `yaml:"auth_window" env:"RATE_AUTH_WINDOW" env-default:"15m"`
	LoginMax      int           `yaml:"login_max" env:"RATE_LOGIN_MAX" env-default:"5"`
	LoginWindow   time.Duration `yaml:"login_window" env:"RATE_LOGIN_WINDOW" env-default:"15m"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"RATE_SWEEP_INTERVAL" env-default:"5m"`
}

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// minProdSecretLen — минимальная длина JWT-секрета в prod.
const minProdSecretLen = 32

// Validate проверяет инварианты, обязательные в prod.
func (c *Config) Validate() error {
	if c.Env != EnvProd {
		return nil
	}

	if len(c.Auth.JWTSecret) < minProdSecretLen {
		return fmt.Errorf("jwt_secret must be at least %d bytes in prod", minProdSecretLen)
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed_origins must not be empty in prod")
	}

	return nil
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// ВАЖНО: после чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func load(path string) (*Config, error) {
	var cfg Config

	// чтение файла + overlay ENV.
	tryRead := func(p string) (*Config, error) {
		if p == "" {
			return nil, fmt.Errorf("empty config path")
		}

		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	return &cfg, nil
}
