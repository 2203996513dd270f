package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	DefaultProductionURL  = "https://terms-conditions-analyser-zrfr.onrender.com"
	DefaultDevelopmentURL = "http://localhost:8080"

	DefaultAnalysisTimeout = 120 * time.Second
	serverWriteMargin      = 30 * time.Second
)

type Config struct {
	APIPort   string
	LogLevel  string
	LogFormat string

	AnalysisURL            string
	Environment            string
	ProductionURL          string
	DevelopmentURL         string
	AnalysisTimeoutSeconds int
	StrictContract         bool

	BreakerEnabled            bool
	BreakerMinRequests        int
	BreakerFailureRatio       float64
	BreakerOpenTimeoutSeconds int

	APIRateLimitRPS   float64
	APIRateLimitBurst int
	MaxUploadMB       int
}

func Default() Config {
	return Config{
		APIPort:   "8090",
		LogLevel:  "info",
		LogFormat: "json",

		Environment:            EnvProduction,
		ProductionURL:          DefaultProductionURL,
		DevelopmentURL:         DefaultDevelopmentURL,
		AnalysisTimeoutSeconds: 120,
		StrictContract:         false,

		BreakerEnabled:            true,
		BreakerMinRequests:        5,
		BreakerFailureRatio:       0.6,
		BreakerOpenTimeoutSeconds: 30,

		APIRateLimitRPS:   10,
		APIRateLimitBurst: 20,
		MaxUploadMB:       10,
	}
}

// Load resolves configuration from defaults, then the optional YAML file
// named by TRACKER_CONFIG, then the environment. A .env file in the working
// directory is loaded first and never overrides variables already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("TRACKER_CONFIG")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.APIPort = mustEnv("API_PORT", cfg.APIPort)
	cfg.LogLevel = mustEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = mustEnv("LOG_FORMAT", cfg.LogFormat)

	cfg.AnalysisURL = mustEnv("ANALYSIS_API_URL", cfg.AnalysisURL)
	cfg.Environment = mustEnv("TRACKER_ENV", cfg.Environment)
	cfg.ProductionURL = mustEnv("ANALYSIS_PRODUCTION_URL", cfg.ProductionURL)
	cfg.DevelopmentURL = mustEnv("ANALYSIS_DEVELOPMENT_URL", cfg.DevelopmentURL)
	cfg.AnalysisTimeoutSeconds = mustEnvInt("ANALYSIS_TIMEOUT_SECONDS", cfg.AnalysisTimeoutSeconds)
	cfg.StrictContract = mustEnvBool("ANALYSIS_STRICT_CONTRACT", cfg.StrictContract)

	cfg.BreakerEnabled = mustEnvBool("BREAKER_ENABLED", cfg.BreakerEnabled)
	cfg.BreakerMinRequests = mustEnvInt("BREAKER_MIN_REQUESTS", cfg.BreakerMinRequests)
	cfg.BreakerFailureRatio = mustEnvFloat("BREAKER_FAILURE_RATIO", cfg.BreakerFailureRatio)
	cfg.BreakerOpenTimeoutSeconds = mustEnvInt("BREAKER_OPEN_TIMEOUT_SECONDS", cfg.BreakerOpenTimeoutSeconds)

	cfg.APIRateLimitRPS = mustEnvFloat("API_RATE_LIMIT_RPS", cfg.APIRateLimitRPS)
	cfg.APIRateLimitBurst = mustEnvInt("API_RATE_LIMIT_BURST", cfg.APIRateLimitBurst)
	cfg.MaxUploadMB = mustEnvInt("MAX_UPLOAD_MB", cfg.MaxUploadMB)
}

// AnalysisBaseURL picks the explicit service URL when one is set, otherwise
// the default for the configured environment.
func (c Config) AnalysisBaseURL() string {
	if u := strings.TrimSpace(c.AnalysisURL); u != "" {
		return strings.TrimRight(u, "/")
	}
	if strings.EqualFold(strings.TrimSpace(c.Environment), EnvDevelopment) {
		return strings.TrimRight(c.DevelopmentURL, "/")
	}
	return strings.TrimRight(c.ProductionURL, "/")
}

// AnalysisTimeout bounds one call to the analysis service. Non-positive
// settings fall back to the default.
func (c Config) AnalysisTimeout() time.Duration {
	if c.AnalysisTimeoutSeconds <= 0 {
		return DefaultAnalysisTimeout
	}
	return time.Duration(c.AnalysisTimeoutSeconds) * time.Second
}

// ServerWriteTimeout covers a local API submission: the upload or paste call
// and the clause fetch run back to back, each up to AnalysisTimeout.
func (c Config) ServerWriteTimeout() time.Duration {
	return 2*c.AnalysisTimeout() + serverWriteMargin
}

func (c Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.BreakerOpenTimeoutSeconds) * time.Second
}

func (c Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(c.MaxUploadMB) << 20
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

type fileConfig struct {
	Analysis struct {
		URL            string `yaml:"url"`
		Environment    string `yaml:"environment"`
		ProductionURL  string `yaml:"production_url"`
		DevelopmentURL string `yaml:"development_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		StrictContract *bool  `yaml:"strict_contract"`
	} `yaml:"analysis"`
	Breaker struct {
		Enabled            *bool   `yaml:"enabled"`
		MinRequests        int     `yaml:"min_requests"`
		FailureRatio       float64 `yaml:"failure_ratio"`
		OpenTimeoutSeconds int     `yaml:"open_timeout_seconds"`
	} `yaml:"breaker"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	API struct {
		Port           string  `yaml:"port"`
		RateLimitRPS   float64 `yaml:"rate_limit_rps"`
		RateLimitBurst int     `yaml:"rate_limit_burst"`
		MaxUploadMB    int     `yaml:"max_upload_mb"`
	} `yaml:"api"`
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.AnalysisURL, fc.Analysis.URL)
	setString(&cfg.Environment, fc.Analysis.Environment)
	setString(&cfg.ProductionURL, fc.Analysis.ProductionURL)
	setString(&cfg.DevelopmentURL, fc.Analysis.DevelopmentURL)
	setInt(&cfg.AnalysisTimeoutSeconds, fc.Analysis.TimeoutSeconds)
	if fc.Analysis.StrictContract != nil {
		cfg.StrictContract = *fc.Analysis.StrictContract
	}

	if fc.Breaker.Enabled != nil {
		cfg.BreakerEnabled = *fc.Breaker.Enabled
	}
	setInt(&cfg.BreakerMinRequests, fc.Breaker.MinRequests)
	if fc.Breaker.FailureRatio > 0 {
		cfg.BreakerFailureRatio = fc.Breaker.FailureRatio
	}
	setInt(&cfg.BreakerOpenTimeoutSeconds, fc.Breaker.OpenTimeoutSeconds)

	setString(&cfg.LogLevel, fc.Log.Level)
	setString(&cfg.LogFormat, fc.Log.Format)

	setString(&cfg.APIPort, fc.API.Port)
	if fc.API.RateLimitRPS > 0 {
		cfg.APIRateLimitRPS = fc.API.RateLimitRPS
	}
	setInt(&cfg.APIRateLimitBurst, fc.API.RateLimitBurst)
	setInt(&cfg.MaxUploadMB, fc.API.MaxUploadMB)
	return nil
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}
