package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"social_sync/internal/domain"
)

type Config struct {
	Database  DatabaseConfig            `yaml:"database"`
	Storage   StorageConfig             `yaml:"storage"`
	RabbitMQ  RabbitMQConfig            `yaml:"rabbitmq"`
	Redis     RedisConfig               `yaml:"redis"`
	HTTP      HTTPConfig                `yaml:"http"`
	Scraper   ScraperConfig             `yaml:"scraper"`
	Platforms map[string]PlatformConfig `yaml:"platforms"`
	Sync      SyncConfig                `yaml:"sync"`
	LogLevel  string                    `yaml:"log_level"`
}

type StorageConfig struct {
	// Driver is "postgres" or "memory".
	Driver string `yaml:"driver"`
}

// RabbitMQConfig is optional: an empty URL disables event publishing.
type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

// RedisConfig is optional: an empty URL selects in-process locking.
type RedisConfig struct {
	URL       string `yaml:"url"`
	KeyPrefix string `yaml:"key_prefix"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// RatePerMinute limits connect and sync calls per user. Zero disables the limit.
	RatePerMinute int `yaml:"rate_per_minute"`
}

type ScraperConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Token         string        `yaml:"token"`
	Timeout       time.Duration `yaml:"timeout"`
	WaitForFinish time.Duration `yaml:"wait_for_finish"`
	RunTimeout    time.Duration `yaml:"run_timeout"`
	Rate          RateConfig    `yaml:"rate"`
	Retry         RetryConfig   `yaml:"retry"`
}

type RateConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type PlatformConfig struct {
	ActorID  string        `yaml:"actor_id"`
	MaxItems int           `yaml:"max_items"`
	TTL      time.Duration `yaml:"ttl"`
}

type SyncConfig struct {
	DefaultTTL         time.Duration `yaml:"default_ttl"`
	FetchLimit         int           `yaml:"fetch_limit"`
	RefreshInterval    time.Duration `yaml:"refresh_interval"`
	RefreshBatch       int           `yaml:"refresh_batch"`
	RefreshConcurrency int           `yaml:"refresh_concurrency"`
	LockTTL            time.Duration `yaml:"lock_ttl"`
}

var defaultActors = map[domain.Platform]string{
	domain.PlatformTwitter:   "apidojo/tweet-scraper",
	domain.PlatformInstagram: "apify/instagram-profile-scraper",
	domain.PlatformTikTok:    "clockworks/tiktok-scraper",
	domain.PlatformYouTube:   "streamers/youtube-scraper",
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Platform returns the settings for p, defaults applied.
func (c *Config) Platform(p domain.Platform) PlatformConfig {
	pc := c.Platforms[p.String()]
	if pc.ActorID == "" {
		pc.ActorID = defaultActors[p]
	}
	if pc.MaxItems == 0 {
		pc.MaxItems = 20
	}
	if pc.TTL == 0 {
		pc.TTL = c.Sync.DefaultTTL
	}
	return pc
}

// TTLs returns the freshness window of every platform.
func (c *Config) TTLs() map[domain.Platform]time.Duration {
	ttls := make(map[domain.Platform]time.Duration, len(domain.Platforms))
	for _, p := range domain.Platforms {
		ttls[p] = c.Platform(p).TTL
	}
	return ttls
}

func (c *Config) setDefaults() {
	if c.Storage.Driver == "" {
		c.Storage.Driver = "postgres"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "social_sync"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "accounts"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "account_events"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "social_sync:lock:"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 150 * time.Second
	}
	if c.Scraper.Timeout == 0 {
		c.Scraper.Timeout = 120 * time.Second
	}
	if c.Scraper.WaitForFinish == 0 {
		c.Scraper.WaitForFinish = 60 * time.Second
	}
	if c.Scraper.RunTimeout == 0 {
		c.Scraper.RunTimeout = 120 * time.Second
	}
	if c.Scraper.Rate.PerSecond == 0 {
		c.Scraper.Rate.PerSecond = 5
	}
	if c.Scraper.Rate.Burst == 0 {
		c.Scraper.Rate.Burst = 10
	}
	if c.Scraper.Retry.MaxAttempts == 0 {
		c.Scraper.Retry.MaxAttempts = 3
	}
	if c.Scraper.Retry.InitialBackoff == 0 {
		c.Scraper.Retry.InitialBackoff = 1 * time.Second
	}
	if c.Scraper.Retry.MaxBackoff == 0 {
		c.Scraper.Retry.MaxBackoff = 30 * time.Second
	}
	if c.Sync.DefaultTTL == 0 {
		c.Sync.DefaultTTL = domain.DefaultTTL
	}
	if c.Sync.FetchLimit == 0 {
		c.Sync.FetchLimit = 50
	}
	if c.Sync.RefreshBatch == 0 {
		c.Sync.RefreshBatch = 50
	}
	if c.Sync.RefreshConcurrency == 0 {
		c.Sync.RefreshConcurrency = 4
	}
	if c.Sync.LockTTL == 0 {
		c.Sync.LockTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	platforms := make(map[string]PlatformConfig, len(c.Platforms))
	for name, pc := range c.Platforms {
		p, err := domain.ParsePlatform(name)
		if err != nil {
			return fmt.Errorf("platforms: %w", err)
		}
		platforms[p.String()] = pc
	}
	c.Platforms = platforms
	return nil
}
