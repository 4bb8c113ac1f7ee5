// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек клиента
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	BackendURL      string `yaml:"backend_url" env:"BACKEND_URL" env-default:"https://perfect-insta-extension-production.up.railway.app"`
	RedisConnection `yaml:"redis_connection"`
	Coordinator     `yaml:"coordinator"`
	Auth            `yaml:"auth"`
	Plans           `yaml:"plans"`
	Analytics       `yaml:"analytics"`
	Capability      `yaml:"capability"`
	Browser         `yaml:"browser"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// Coordinator структура для настройки фонового координатора
type Coordinator struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"127.0.0.1:8090"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// Auth структура для настройки жизненного цикла токена
type Auth struct {
	LoginTimeout     time.Duration `yaml:"login_timeout" env-default:"2m"`
	ValidateInterval time.Duration `yaml:"validate_interval" env-default:"30m"`
}

// Plans структура с месячными квотами тарифных планов
type Plans struct {
	FreePostsPerMonth int `yaml:"free_posts_per_month" env-default:"5"`
	ProPostsPerMonth  int `yaml:"pro_posts_per_month" env-default:"50"`
}

// Analytics структура для настройки батчера аналитики
type Analytics struct {
	Enabled        bool          `yaml:"enabled" env:"ANALYTICS_ENABLED" env-default:"true"`
	BatchSize      int           `yaml:"batch_size" env-default:"10"`
	FlushInterval  time.Duration `yaml:"flush_interval" env-default:"30s"`
	QueueCap       int           `yaml:"queue_cap" env-default:"1000"`
	AMQPURL        string        `yaml:"amqp_url" env:"AMQP_URL"`
	AMQPExchange   string        `yaml:"amqp_exchange" env-default:"analytics"`
	AMQPRoutingKey string        `yaml:"amqp_routing_key" env-default:"events"`
}

// Capability структура для настройки цепочки провайдеров генерации
type Capability struct {
	OnDeviceURL     string        `yaml:"on_device_url" env:"ON_DEVICE_URL"`
	OnDeviceTimeout time.Duration `yaml:"on_device_timeout" env-default:"15s"`
}

// Browser структура для подключения к браузеру через DevTools-протокол
type Browser struct {
	ControlURL string `yaml:"control_url" env:"BROWSER_CONTROL_URL"`
	Headless   bool   `yaml:"headless" env-default:"false"`
}

// MustLoad функция для загрузки конфига, завершает процесс при ошибке
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

// PostsLimit возвращает месячную квоту для тарифного плана.
// Неизвестный план трактуется как бесплатный.
func (p Plans) PostsLimit(plan string) int {
	if plan == "pro" {
		return p.ProPostsPerMonth
	}
	return p.FreePostsPerMonth
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"BackendURL: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"Coordinator:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Auth:\n"+
			"  LoginTimeout: %s\n"+
			"  ValidateInterval: %s\n"+
			"Plans:\n"+
			"  Free: %d\n"+
			"  Pro: %d\n"+
			"Analytics:\n"+
			"  Enabled: %t\n"+
			"  BatchSize: %d\n"+
			"  FlushInterval: %s\n"+
			"  QueueCap: %d\n",
		c.Env,
		c.BackendURL,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.LoginTimeout,
		c.ValidateInterval,
		c.FreePostsPerMonth,
		c.ProPostsPerMonth,
		c.Enabled,
		c.BatchSize,
		c.FlushInterval,
		c.QueueCap,
	)
}
