// Package config loads the process configuration from defaults, an optional YAML file, and the
// environment
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aouyang1/go-salesforecaster/forecast"
	"github.com/aouyang1/go-salesforecaster/summarizer"
)

var ErrInvalidConfig = errors.New("invalid config")

var validate = validator.New()

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	BaseURL    string           `yaml:"base_url" default:"http://localhost:8000" validate:"required,url"`
	StaticDir  string           `yaml:"static_dir" default:"static" validate:"required"`
	Log        LogConfig        `yaml:"log"`
	Forecast   ForecastConfig   `yaml:"forecast"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" default:":8000" validate:"required"`
	BodyLimitMB  int           `yaml:"body_limit_mb" default:"10" validate:"gt=0"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"30s" validate:"gte=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"120s" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"text" validate:"oneof=text json"`
}

type ForecastConfig struct {
	Periods         int    `yaml:"periods" default:"7" validate:"gt=0"`
	MinGroupSize    int    `yaml:"min_group_size" default:"10" validate:"gt=0"`
	Regressor       string `yaml:"regressor" default:"gbt" validate:"oneof=gbt ols lasso"`
	Parallelization int    `yaml:"parallelization" default:"1" validate:"gt=0"`
	Seed            uint64 `yaml:"seed"`
}

type SummarizerConfig struct {
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model" default:"gemini-2.5-flash-lite" validate:"required"`
	Temperature       float32       `yaml:"temperature" default:"0.7" validate:"gte=0,lte=2"`
	MaxOutputTokens   int32         `yaml:"max_output_tokens" default:"1024" validate:"gt=0"`
	Timeout           time.Duration `yaml:"timeout" default:"60s" validate:"gte=0"`
	RequestsPerMinute int           `yaml:"requests_per_minute" default:"15" validate:"gte=0"`
}

// Default returns a config holding only default values
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("unable to set config defaults, %w", err)
	}
	return &c, nil
}

// Load builds the config from defaults, then the YAML file at path if one is given, then the
// environment. Variables in a .env file of the working directory are loaded into the
// environment first without replacing ones already set.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read config %s, %w", path, err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("unable to parse config %s, %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("unable to load .env, %w", err)
	}
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Summarizer.APIKey = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		c.StaticDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate checks every field against its constraints and reports all failures at once
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w, %s", ErrInvalidConfig, err.Error())
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		msgs = append(msgs, errorMessage(e))
	}
	return fmt.Errorf("%w, %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func errorMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid url", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// ForecastOptions converts the forecast section into forecaster options
func (c *Config) ForecastOptions() *forecast.Options {
	opt := forecast.NewDefaultOptions()
	opt.Periods = c.Forecast.Periods
	opt.MinGroupSize = c.Forecast.MinGroupSize
	opt.Regressor = forecast.Regressor(c.Forecast.Regressor)
	opt.Parallelization = c.Forecast.Parallelization
	opt.Seed = c.Forecast.Seed
	return opt
}

// GeminiOptions converts the summarizer section into Gemini client options
func (c *Config) GeminiOptions() *summarizer.GeminiOptions {
	return &summarizer.GeminiOptions{
		APIKey:            c.Summarizer.APIKey,
		Model:             c.Summarizer.Model,
		Temperature:       c.Summarizer.Temperature,
		MaxOutputTokens:   c.Summarizer.MaxOutputTokens,
		Timeout:           c.Summarizer.Timeout,
		RequestsPerMinute: c.Summarizer.RequestsPerMinute,
	}
}

// BodyLimit returns the upload size limit in bytes
func (c *Config) BodyLimit() int {
	return c.Server.BodyLimitMB * 1024 * 1024
}

// NewLogger builds the process logger writing to w in the configured format and level
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	hopt := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopt))
	}
	return slog.New(slog.NewTextHandler(w, hopt))
}
