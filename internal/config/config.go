// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Окружения, в которых может работать сервис.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// DevJWTSecret используется только при env=local, если секрет не задан.
// В любом другом окружении пустой секрет приводит к остановке процесса.
const DevJWTSecret = "local-development-secret-do-not-deploy"

// Config общая структура для хранения настроек
type Config struct {
	Env                     string        `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string        `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string        `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	SecurityStore           string        `yaml:"security_store" env:"SECURITY_STORE" env-default:"memory"`
	SettingsCacheTTL        time.Duration `yaml:"settings_cache_ttl" env-default:"30s"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	LoginLimit              `yaml:"login_limit"`
	APILimit                `yaml:"api_limit"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
	Admin                   `yaml:"admin"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP  string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP  time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"60s"`
	StaticDir    string        `yaml:"static_dir" env-default:"./web"`
	CookieDomain string        `yaml:"cookie_domain" env:"COOKIE_DOMAIN"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
	Leeway       time.Duration `yaml:"leeway" env-default:"30s"`
}

// LoginLimit настройки ограничения попыток входа.
type LoginLimit struct {
	MaxAttempts int           `yaml:"max_attempts" env-default:"5"`
	Window      time.Duration `yaml:"window" env-default:"15m"`
}

// APILimit настройки ограничения частоты запросов к API с одного адреса.
type APILimit struct {
	RPS   float64 `yaml:"rps" env-default:"10"`
	Burst int     `yaml:"burst" env-default:"20"`
}

// RabbitMQ настройки подключения к брокеру уведомлений.
// Пустой URL отключает публикацию уведомлений.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// SMTP настройки почтового сервера.
type SMTP struct {
	SMTPHost string `yaml:"host" env:"SMTP_HOST"`
	SMTPPort string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser string `yaml:"user" env:"SMTP_USER"`
	SMTPPass string `yaml:"password" env:"SMTP_PASSWORD"`
}

// Admin учётная запись администратора, которая создаётся при старте, если её ещё нет.
// Пустой email отключает создание.
type Admin struct {
	AdminName     string `yaml:"name" env:"ADMIN_NAME" env-default:"Administrator"`
	AdminEmail    string `yaml:"email" env:"ADMIN_EMAIL"`
	AdminPassword string `yaml:"password" env:"ADMIN_PASSWORD"`
}

// MustLoad функция для загрузки конфига, возвращает конфиг, сгенерированный из config/config.go
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из файла, применяет переменные окружения и проверяет его.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные поля и подставляет секрет для локальной разработки.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	if c.JWTSecretKey == "" {
		if c.Env != EnvLocal {
			return errors.New("jwt secret is required outside of local env")
		}
		c.JWTSecretKey = DevJWTSecret
	}
	if c.SecurityStore != "memory" && c.SecurityStore != "redis" {
		return fmt.Errorf("unknown security store %q", c.SecurityStore)
	}
	if c.SecurityStore == "redis" && c.AddressRedis == "" {
		return errors.New("redis address is required for redis security store")
	}
	if c.MaxAttempts <= 0 || c.Window <= 0 {
		return errors.New("login limit must be positive")
	}
	if c.AdminEmail != "" && len(c.AdminPassword) < 8 {
		return errors.New("admin password must be at least 8 characters")
	}
	return nil
}

// UsesDevSecret сообщает, что подписи токенов используют небезопасный секрет по умолчанию.
func (c *Config) UsesDevSecret() bool {
	return c.JWTSecretKey == DevJWTSecret
}

// SecureCookies включает флаг Secure у cookie сессий.
func (c *Config) SecureCookies() bool {
	return c.Env == EnvProd
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"SecurityStore: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  TokenTTL: %s\n"+
			"LoginLimit:\n"+
			"  MaxAttempts: %d\n"+
			"  Window: %s\n",
		c.Env,
		c.SecurityStore,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.TokenTTL,
		c.MaxAttempts,
		c.Window,
	)
}
