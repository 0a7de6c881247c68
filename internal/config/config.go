// Package config загружает конфигурацию BookEase из YAML-файла с
// переопределением через переменные окружения (cleanenv).
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура настроек.
type Config struct {
	Env            string `yaml:"env" env:"ENV" env-default:"local"`
	ClientURL      string `yaml:"client_url" env:"CLIENT_URL" env-default:"http://localhost:3000"`
	Storage        `yaml:"storage"`
	HTTPServer     `yaml:"http_server"`
	JWTToken       `yaml:"jwttoken"`
	Razorpay       `yaml:"razorpay"`
	RateLimit      `yaml:"rate_limit"`
	SignInThrottle `yaml:"signin_throttle"`
	Guard          `yaml:"guard"`
	Scheduler      `yaml:"scheduler"`

	RedisConnection RedisConnection `yaml:"redis_connection"`
	RabbitMQ        RabbitMQ        `yaml:"rabbitmq"`
	SMTP            SMTP            `yaml:"smtp"`
}

// Storage настройки базы данных: postgres или sqlite.
type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	DSN    string `yaml:"dsn" env:"STORAGE_DSN"`
}

// HTTPServer настройки HTTP-сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// JWTToken настройки сессионных токенов.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_EXPIRES_IN" env-default:"168h"`
}

// Razorpay настройки платёжного шлюза.
type Razorpay struct {
	KeyID          string        `yaml:"key_id" env:"RAZORPAY_KEY_ID"`
	KeySecret      string        `yaml:"key_secret" env:"RAZORPAY_KEY_SECRET"`
	APIURL         string        `yaml:"api_url" env:"RAZORPAY_API_URL" env-default:"https://api.razorpay.com"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"10s"`
}

// RateLimit ограничение запросов к /api на один IP.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"5"`
	Burst int     `yaml:"burst" env-default:"10"`
}

// SignInThrottle блокировка входа после серии неудачных попыток.
// Работает только при настроенном Redis.
type SignInThrottle struct {
	MaxAttempts int           `yaml:"max_attempts" env-default:"5"`
	Window      time.Duration `yaml:"window" env-default:"15m"`
}

// Guard защита раздела /dashboard.
type Guard struct {
	FrontendURL   string        `yaml:"frontend_url" env:"GUARD_FRONTEND_URL"`
	StatusURL     string        `yaml:"status_url" env:"GUARD_STATUS_URL" env-default:"http://localhost:8080/api/payment/subscription"`
	StatusTimeout time.Duration `yaml:"status_timeout" env-default:"3s"`
}

// Scheduler период фонового обхода просроченных подписок.
type Scheduler struct {
	Interval time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"1h"`
}

// RedisConnection настройки подключения к Redis. Пустой адрес отключает Redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeout"`
}

// RabbitMQ настройки брокера. Пустой URL отключает публикацию событий.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	MaxRetries int           `yaml:"max_retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// SMTP настройки почтового сервера для notification-sender.
type SMTP struct {
	Host string `yaml:"host" env:"SMTP_HOST"`
	Port string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User string `yaml:"user" env:"SMTP_USER"`
	Pass string `yaml:"pass" env:"SMTP_PASS"`
}

var (
	ErrNoJWTSecret      = errors.New("JWT_SECRET is not set")
	ErrNoRazorpaySecret = errors.New("RAZORPAY_KEY_SECRET is not set")
	ErrUnknownDriver    = errors.New("unknown storage driver")
	ErrNoRabbitMQURL    = errors.New("RABBITMQ_URL is not set")
	ErrNoSMTPHost       = errors.New("SMTP_HOST is not set")
)

// MustLoad читает конфиг API по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	return mustLoad((*Config).Validate)
}

// MustLoadSender читает конфиг notification-sender: секреты API ему не нужны.
func MustLoadSender() *Config {
	return mustLoad((*Config).ValidateSender)
}

// MustLoadScheduler читает конфиг scheduler: нужны только хранилище и брокер.
func MustLoadScheduler() *Config {
	return mustLoad((*Config).validateStorage)
}

func mustLoad(validate func(*Config) error) *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := read(configPath)
	if err == nil {
		err = validate(cfg)
	}
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}
	return cfg
}

// Load читает и проверяет конфиг API.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	cfg, err := read(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

func read(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры.
func (c *Config) Validate() error {
	if c.JWTSecretKey == "" {
		return ErrNoJWTSecret
	}
	if c.KeySecret == "" {
		return ErrNoRazorpaySecret
	}
	return c.validateStorage()
}

func (c *Config) validateStorage() error {
	switch c.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Driver)
	}
	return nil
}

// ValidateSender проверяет параметры notification-sender.
func (c *Config) ValidateSender() error {
	if c.RabbitMQ.URL == "" {
		return ErrNoRabbitMQURL
	}
	if c.SMTP.Host == "" {
		return ErrNoSMTPHost
	}
	return nil
}

// String возвращает конфиг без секретов, для логов старта.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"ClientURL: %s\n"+
			"Storage: %s\n"+
			"HTTPServer: %s (timeout %s, idle %s)\n"+
			"TokenTTL: %s\n"+
			"Razorpay: key %s, api %s\n"+
			"Redis: %q\n"+
			"RabbitMQ enabled: %t\n",
		c.Env,
		c.ClientURL,
		c.Driver,
		c.AddressHTTP, c.TimeoutHTTP, c.IdleTimeout,
		c.TokenTTL,
		c.KeyID, c.APIURL,
		c.RedisConnection.AddressRedis,
		c.RabbitMQ.URL != "",
	)
}
