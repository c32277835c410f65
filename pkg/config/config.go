package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"AutoTrade/pkg/util"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8000"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		CORSOrigins     []string      `yaml:"cors_origins" default:"[\"*\"]"`
		RateLimit       struct {
			Enabled bool    `yaml:"enabled" default:"true"`
			RPS     float64 `yaml:"rps" default:"5"`
			Burst   int     `yaml:"burst" default:"10"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Data struct {
		Source        string        `yaml:"source" default:"yahoo"`
		BaseURL       string        `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
		UserAgent     string        `yaml:"user_agent" default:"Mozilla/5.0 (AutoTrade)"`
		Interval      string        `yaml:"interval" default:"1m"`
		Range         string        `yaml:"range" default:"5d"`
		FetchTimeout  time.Duration `yaml:"fetch_timeout" default:"10s"`
		CacheTTL      time.Duration `yaml:"cache_ttl" default:"1h"`
		DefaultSuffix string        `yaml:"default_suffix"`
		KnownSuffixes []string      `yaml:"known_suffixes" default:"[\".NS\",\".BO\"]"`
		HistoryBars   int           `yaml:"history_bars" default:"1000"`
	} `yaml:"data"`
	Cache struct {
		Backend   string `yaml:"backend" default:"memory"`
		KeyPrefix string `yaml:"key_prefix" default:"autotrade:series:"`
		Redis     struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Predictor struct {
		Kind            string        `yaml:"kind" default:"linear"`
		ServiceURL      string        `yaml:"service_url"`
		Lookback        int           `yaml:"lookback" default:"60"`
		ConfirmCount    int           `yaml:"confirm_count" default:"3"`
		MinMovePct      float64       `yaml:"min_move_pct" default:"0.30"`
		ConfidenceLimit float64       `yaml:"confidence_limit" default:"90"`
		ChartPoints     int           `yaml:"chart_points" default:"100"`
		Epochs          int           `yaml:"epochs" default:"5"`
		LearningRate    float64       `yaml:"learning_rate" default:"0.05"`
		FitTimeout      time.Duration `yaml:"fit_timeout" default:"30s"`
	} `yaml:"predictor"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"autotrade.predictions"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			BatchTimeout time.Duration `yaml:"batch_timeout" default:"200ms"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Pipeline struct {
			BufferSize    int           `yaml:"buffer_size" default:"256"`
			Throttle      time.Duration `yaml:"throttle" default:"1s"`
			FlushInterval time.Duration `yaml:"flush_interval" default:"500ms"`
			BatchSize     int           `yaml:"batch_size" default:"50"`
		} `yaml:"pipeline"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host         string        `yaml:"host" default:"localhost"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"default"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		CandlesTable string        `yaml:"candles_table" default:"candles_1m"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		MaxExecTime  time.Duration `yaml:"max_execution_time" default:"10s"`
	} `yaml:"clickhouse"`
	Warmup struct {
		Enabled bool     `yaml:"enabled"`
		Cron    string   `yaml:"cron" default:"0 */30 * * * *"`
		Symbols []string `yaml:"symbols"`
	} `yaml:"warmup"`
}

// Default returns a configuration populated from struct defaults only.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads a YAML configuration file on top of the defaults.
// A missing file is not an error; the defaults are used as-is.
func Load(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (if present), the YAML file, then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("APP_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	c.Server.Port = util.ParseIntDefault(getenv("PORT"), c.Server.Port)
	c.Server.RateLimit.RPS = util.ParseFloatDefault(getenv("RATE_LIMIT_RPS"), c.Server.RateLimit.RPS)
	c.Predictor.Lookback = util.ParseIntDefault(getenv("PREDICTOR_LOOKBACK"), c.Predictor.Lookback)
	if v := getenv("DATA_SOURCE"); v != "" {
		c.Data.Source = v
	}
	if v, ok := lookup(getenv, "DEFAULT_SUFFIX"); ok {
		c.Data.DefaultSuffix = v
	}
	if v := getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v := getenv("PREDICTOR_URL"); v != "" {
		c.Predictor.ServiceURL = v
		c.Predictor.Kind = "http"
	}
}

// lookup treats the literal "none" as an explicit empty value.
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	if v == "" {
		return "", false
	}
	if strings.EqualFold(v, "none") {
		return "", true
	}
	return v, true
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch c.Data.Source {
	case "yahoo", "clickhouse", "mock":
	default:
		return fmt.Errorf("data.source must be 'yahoo', 'clickhouse' or 'mock', got '%s'", c.Data.Source)
	}
	if c.Data.CacheTTL <= 0 {
		return fmt.Errorf("data.cache_ttl must be positive")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	p := c.Predictor
	switch p.Kind {
	case "linear":
	case "http":
		if p.ServiceURL == "" {
			return fmt.Errorf("predictor.service_url is required for kind 'http'")
		}
	default:
		return fmt.Errorf("predictor.kind must be 'linear' or 'http', got '%s'", p.Kind)
	}
	if p.Lookback < 1 {
		return fmt.Errorf("predictor.lookback must be >= 1")
	}
	if p.ConfirmCount < 1 {
		return fmt.Errorf("predictor.confirm_count must be >= 1")
	}
	if p.ConfidenceLimit < 0 || p.ConfidenceLimit > 100 {
		return fmt.Errorf("predictor.confidence_limit must be within [0,100]")
	}
	if p.MinMovePct < 0 {
		return fmt.Errorf("predictor.min_move_pct must be >= 0")
	}
	if p.ChartPoints < 1 {
		return fmt.Errorf("predictor.chart_points must be >= 1")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Warmup.Enabled && len(c.Warmup.Symbols) == 0 {
		return fmt.Errorf("warmup.symbols cannot be empty when warmup is enabled")
	}
	return nil
}
