package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"

	"github.com/i474232898/weather-flatten/internal/weather"
)

const (
	sectionAPI    = "api"
	sectionCities = "cities"
	sectionFields = "fields"
)

var (
	errNoFields  = errors.New("config: [fields] section is missing or empty")
	errNoBaseURL = errors.New("config: api url is not set")
)

type AppConfig struct {
	BaseURL string
	APIKey  string

	// Cities to fetch when a request does not name any.
	Cities []string

	// Fields is the group -> field list extraction spec, in file order.
	Fields weather.FieldSpec

	FailurePolicy weather.FailurePolicy
	HTTPTimeout   time.Duration

	// FetchInterval enables periodic batch runs in serve mode (0 = disabled).
	FetchInterval time.Duration

	Port     string
	LogLevel string
	Env      string
}

// Load reads .env (if any), then the INI file at path, then applies
// environment overrides.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded", slog.Any("error", err))
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	return fromFile(file)
}

// Parse is Load for an in-memory INI document; .env is not read.
func Parse(data []byte) (*AppConfig, error) {
	file, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return fromFile(file)
}

func fromFile(file *ini.File) (*AppConfig, error) {
	cfg := &AppConfig{}

	api := file.Section(sectionAPI)
	cfg.BaseURL = getenvDefault("OPENWEATHER_BASE_URL", api.Key("url").String())
	cfg.APIKey = getenvDefault("OPENWEATHER_API_KEY", api.Key("key").String())
	if cfg.BaseURL == "" {
		return nil, errNoBaseURL
	}

	if names := getenvDefault("WEATHER_CITIES", file.Section(sectionCities).Key("names").String()); names != "" {
		cfg.Cities = weather.StringToList(names)
	}

	fields, err := file.GetSection(sectionFields)
	if err != nil || len(fields.Keys()) == 0 {
		return nil, errNoFields
	}
	pairs := make([]weather.KeyValue, 0, len(fields.Keys()))
	// Group names are matched lower-case, like configparser option names.
	for _, k := range fields.Keys() {
		pairs = append(pairs, weather.KeyValue{Key: strings.ToLower(k.Name()), Value: k.Value()})
	}
	cfg.Fields = weather.NewFieldSpec(pairs)

	policy, err := weather.ParseFailurePolicy(os.Getenv("WEATHER_FAILURE_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEATHER_FAILURE_POLICY: %w", err)
	}
	cfg.FailurePolicy = policy

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	interval, err := time.ParseDuration(getenvDefault("FETCH_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %w", err)
	}
	if interval < 0 {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: %s is negative", interval)
	}
	cfg.FetchInterval = interval

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.Env = getenvDefault("ENV", "development")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
