package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emperorhan/chain-ledger-export/internal/domain/model"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Explorers     map[model.Chain]ExplorerConfig
	Export        ExportConfig
	RewardSenders map[model.Chain][]string
	Log           LogConfig
	Tracing       TracingConfig
	Metrics       MetricsConfig
	Alert         AlertConfig
}

// ExplorerConfig selects the explorer API of one chain. At most one of
// APIKeyParam and APIKeyHeader is set; it says where the key is sent.
type ExplorerConfig struct {
	BaseURL      string
	APIKey       string
	APIKeyParam  string
	APIKeyHeader string
	RPS          float64
	Burst        int
	Timeout      time.Duration
	MaxAttempts  int
}

type ExportConfig struct {
	// PageSize of zero selects the chain's default.
	PageSize int
	// PageOverlap below zero selects half a page.
	PageOverlap int
	// MaxPages of zero means unbounded.
	MaxPages int
}

type LogConfig struct {
	Level      string
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type TracingConfig struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

type MetricsConfig struct {
	PushgatewayURL string
}

type AlertConfig struct {
	SlackWebhookURL string
	WebhookURL      string
	Cooldown        time.Duration
}

type explorerDefaults struct {
	baseURL      string
	apiKeyParam  string
	apiKeyHeader string
	rps          float64
	pageSize     int
}

var defaults = map[model.Chain]explorerDefaults{
	model.ChainEthereum: {baseURL: "https://api.etherscan.io/api", apiKeyParam: "apikey", rps: 5, pageSize: 1000},
	model.ChainTezos:    {baseURL: "https://api.tzkt.io", rps: 10, pageSize: 1000},
	model.ChainAlgorand: {baseURL: "https://api.algoexplorer.io", rps: 5, pageSize: 100},
	model.ChainPolkadot: {baseURL: "https://polkadot.api.subscan.io", apiKeyHeader: "X-API-Key", rps: 2, pageSize: 100},
	model.ChainKusama:   {baseURL: "https://kusama.api.subscan.io", apiKeyHeader: "X-API-Key", rps: 2, pageSize: 100},
	model.ChainHedera:   {baseURL: "https://api.dragonglass.me/hedera", apiKeyHeader: "X-API-KEY", rps: 5, pageSize: 100},
}

// DefaultPageSize is the page size used for chain when none is configured.
func DefaultPageSize(chain model.Chain) int {
	if d, ok := defaults[chain]; ok {
		return d.pageSize
	}
	return 100
}

// PageSize resolves the configured page size for chain.
func (c *Config) PageSize(chain model.Chain) int {
	if c.Export.PageSize > 0 {
		return c.Export.PageSize
	}
	return DefaultPageSize(chain)
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; variables already set win. When
// CONFIG_FILE names a YAML file its values are applied before validation.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Explorers:     make(map[model.Chain]ExplorerConfig, len(model.AllChains)),
		RewardSenders: make(map[model.Chain][]string),
		Export: ExportConfig{
			PageSize:    getEnvInt("PAGE_SIZE", 0),
			PageOverlap: getEnvInt("PAGE_OVERLAP", -1),
			MaxPages:    getEnvInt("MAX_PAGES", 0),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			FilePath:   getEnv("LOG_FILE_PATH", ""),
			MaxSizeMB:  getEnvInt("LOG_FILE_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_FILE_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvInt("LOG_FILE_MAX_AGE_DAYS", 7),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 1),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: getEnv("METRICS_PUSHGATEWAY_URL", ""),
		},
		Alert: AlertConfig{
			SlackWebhookURL: getEnv("ALERT_SLACK_WEBHOOK_URL", ""),
			WebhookURL:      getEnv("ALERT_WEBHOOK_URL", ""),
			Cooldown:        time.Duration(getEnvInt("ALERT_COOLDOWN_SEC", 300)) * time.Second,
		},
	}

	for _, ch := range model.AllChains {
		d := defaults[ch]
		prefix := strings.ToUpper(ch.String()) + "_"
		cfg.Explorers[ch] = ExplorerConfig{
			BaseURL:      getEnv(prefix+"EXPLORER_URL", d.baseURL),
			APIKey:       getEnv(prefix+"API_KEY", ""),
			APIKeyParam:  d.apiKeyParam,
			APIKeyHeader: d.apiKeyHeader,
			RPS:          getEnvFloat(prefix+"RPS", d.rps),
			Burst:        getEnvInt(prefix+"BURST", 1),
			Timeout:      time.Duration(getEnvInt(prefix+"TIMEOUT_SEC", 30)) * time.Second,
			MaxAttempts:  getEnvInt(prefix+"MAX_ATTEMPTS", 3),
		}
		if senders := getEnvList(prefix + "REWARD_SENDERS"); len(senders) > 0 {
			cfg.RewardSenders[ch] = senders
		}
	}

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fileConfig is the YAML overlay. Only the fields that are awkward to carry
// in environment variables live here.
type fileConfig struct {
	RewardSenders map[string][]string `yaml:"reward_senders"`
	Explorers     map[string]struct {
		BaseURL string  `yaml:"base_url"`
		APIKey  string  `yaml:"api_key"`
		RPS     float64 `yaml:"rps"`
	} `yaml:"explorers"`
}

func (c *Config) applyFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	for name, senders := range fc.RewardSenders {
		ch, err := model.ParseChain(name)
		if err != nil {
			return fmt.Errorf("config file %s: reward_senders: %w", path, err)
		}
		c.RewardSenders[ch] = append(c.RewardSenders[ch], senders...)
	}
	for name, e := range fc.Explorers {
		ch, err := model.ParseChain(name)
		if err != nil {
			return fmt.Errorf("config file %s: explorers: %w", path, err)
		}
		ec := c.Explorers[ch]
		if e.BaseURL != "" {
			ec.BaseURL = e.BaseURL
		}
		if e.APIKey != "" {
			ec.APIKey = e.APIKey
		}
		if e.RPS > 0 {
			ec.RPS = e.RPS
		}
		c.Explorers[ch] = ec
	}
	return nil
}

func (c *Config) validate() error {
	if c.Export.PageSize < 0 {
		return fmt.Errorf("PAGE_SIZE must be >= 0, got %d", c.Export.PageSize)
	}
	if c.Export.MaxPages < 0 {
		return fmt.Errorf("MAX_PAGES must be >= 0, got %d", c.Export.MaxPages)
	}
	if size := c.Export.PageSize; size > 0 && c.Export.PageOverlap >= size {
		return fmt.Errorf("PAGE_OVERLAP (%d) must be smaller than PAGE_SIZE (%d)", c.Export.PageOverlap, size)
	}
	for ch, e := range c.Explorers {
		if e.BaseURL == "" {
			return fmt.Errorf("%s_EXPLORER_URL is required", strings.ToUpper(ch.String()))
		}
		if e.RPS < 0 {
			return fmt.Errorf("%s_RPS must be >= 0", strings.ToUpper(ch.String()))
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, s := range strings.Split(os.Getenv(key), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
