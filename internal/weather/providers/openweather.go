package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-flatten/internal/weather"
)

// DefaultOpenWeatherURL is the current-weather endpoint, ready for query parameters.
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather?"

// OpenWeatherProvider implements weather.Fetcher for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewOpenWeatherProvider creates a provider for baseURL. An empty baseURL
// selects DefaultOpenWeatherURL.
func NewOpenWeatherProvider(client *http.Client, baseURL, apiKey string, breaker BreakerConfig, logger *slog.Logger) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		circuit: newBreaker("openweather", breaker, logger),
		logger:  logger,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Fetch requests current weather for location. The request is sent once.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, location string) (weather.Response, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	u := weather.BuildRequestURL(p.baseURL, p.apiKey, location)
	p.logger.DebugContext(ctx, "fetching current weather", slog.String("city", location))

	resp, err := getJSON(ctx, p.client, p.circuit, u)
	if err != nil {
		return nil, fmt.Errorf("openweather: %w", err)
	}
	return resp, nil
}
