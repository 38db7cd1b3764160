package config

import (
	"cmp"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type StorageKind string

const (
	Memory   StorageKind = "memory"
	Postgres StorageKind = "postgres"
)

type CacheConfig struct {
	QuoteTTL   time.Duration `yaml:"quote_ttl"`
	MetricsTTL time.Duration `yaml:"metrics_ttl"`
}

const (
	_quoteTTLDefault   = 15 * time.Second
	_metricsTTLDefault = 5 * time.Minute
)

func (c *CacheConfig) Setup() {
	if c.QuoteTTL <= 0 {
		c.QuoteTTL = _quoteTTLDefault
	}
	if c.MetricsTTL <= 0 {
		c.MetricsTTL = _metricsTTLDefault
	}
}

type ProvidersConfig struct {
	QuoteAPIURL        string `yaml:"quote_api_url"`
	FinancePagesURL    string `yaml:"finance_pages_url"`
	QuoteConcurrency   int    `yaml:"quote_concurrency"`
	MetricsConcurrency int    `yaml:"metrics_concurrency"`
}

const (
	_quoteAPIURLDefault     = "https://query1.finance.yahoo.com"
	_financePagesURLDefault = "https://www.google.com/finance"

	// Both sources impose informal rate limits; the ceilings bound burst load
	// per warming cycle or request.
	_quoteConcurrencyDefault   = 5
	_metricsConcurrencyDefault = 3
)

func (c *ProvidersConfig) Setup() error {
	c.QuoteAPIURL = cmp.Or(c.QuoteAPIURL, _quoteAPIURLDefault)
	c.FinancePagesURL = cmp.Or(c.FinancePagesURL, _financePagesURLDefault)

	if _, err := url.Parse(c.QuoteAPIURL); err != nil {
		return fmt.Errorf("%w: invalid quote api url", err)
	}
	if _, err := url.Parse(c.FinancePagesURL); err != nil {
		return fmt.Errorf("%w: invalid finance pages url", err)
	}

	if c.QuoteConcurrency <= 0 {
		c.QuoteConcurrency = _quoteConcurrencyDefault
	}
	if c.MetricsConcurrency <= 0 {
		c.MetricsConcurrency = _metricsConcurrencyDefault
	}

	return nil
}

type WarmingConfig struct {
	QuotesSpec  string `yaml:"quotes_spec"`
	MetricsSpec string `yaml:"metrics_spec"`
}

const (
	_quotesWarmSpecDefault  = "*/30 * * * * *"
	_metricsWarmSpecDefault = "0 */15 * * * *"
)

func (c *WarmingConfig) Setup() {
	c.QuotesSpec = cmp.Or(c.QuotesSpec, _quotesWarmSpecDefault)
	c.MetricsSpec = cmp.Or(c.MetricsSpec, _metricsWarmSpecDefault)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"-"`
	DB       int    `yaml:"db"`
}

func (c *RedisConfig) Setup() {
	c.Addr = cmp.Or(os.Getenv("REDIS_ADDR"), c.Addr, "localhost:6379")
	c.Password = os.Getenv("REDIS_PASSWORD")
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"-"`
	DBName   string `yaml:"db_name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (c *PostgresConfig) Setup() {
	c.Host = cmp.Or(os.Getenv("POSTGRES_HOST"), c.Host, "localhost")
	c.Port = cmp.Or(os.Getenv("POSTGRES_PORT"), c.Port, "5432")
	c.Username = cmp.Or(os.Getenv("POSTGRES_USERNAME"), c.Username, "postgres")
	c.Password = cmp.Or(os.Getenv("POSTGRES_PASSWORD"), "postgres")
	c.DBName = cmp.Or(os.Getenv("POSTGRES_DB_NAME"), c.DBName, "postgres")
	c.SSLMode = cmp.Or(os.Getenv("POSTGRES_SSL_MODE"), c.SSLMode, "disable")
}

func (c *PostgresConfig) String() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.DBName, c.Password, c.SSLMode,
	)
}

type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Port      string          `yaml:"port"`
	Storage   StorageKind     `yaml:"storage"`
	SeedFile  string          `yaml:"seed_file"`
	Cache     CacheConfig     `yaml:"cache"`
	Providers ProvidersConfig `yaml:"providers"`
	Warming   WarmingConfig   `yaml:"warming"`
	Redis     RedisConfig     `yaml:"redis"`
	Postgres  PostgresConfig  `yaml:"postgres"`
}

func (c *Config) ValidateAndSetup() error {
	c.LogLevel = cmp.Or(c.LogLevel, "info")
	c.Port = cmp.Or(os.Getenv("PORT"), c.Port, "5000")

	switch c.Storage {
	case "":
		c.Storage = Memory
	case Memory, Postgres:
	default:
		return fmt.Errorf("unknown storage kind %q", c.Storage)
	}

	c.Cache.Setup()
	if err := c.Providers.Setup(); err != nil {
		return fmt.Errorf("%w: can't setup providers cfg", err)
	}
	c.Warming.Setup()
	c.Redis.Setup()
	if c.Storage == Postgres {
		c.Postgres.Setup()
	}

	return nil
}

func Load(filename string) (Config, error) {
	var cfg Config
	input, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("%w: can't read file", err)
	}

	if err := yaml.Unmarshal(input, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: can't unmarshal config", err)
	}

	if err := cfg.ValidateAndSetup(); err != nil {
		return cfg, fmt.Errorf("%w: can't setup cfg", err)
	}

	return cfg, nil
}
