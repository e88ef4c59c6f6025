package providers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/i474232898/weather-flatten/internal/weather"
)

// GetWeather fetches every city from an OpenWeather-compatible endpoint and
// returns the flattened table. Any failure aborts the batch.
func GetWeather(ctx context.Context, client *http.Client, baseURL, apiKey string, cities []string, spec weather.FieldSpec, logger *slog.Logger) (weather.Table, error) {
	if client == nil {
		client = http.DefaultClient
	}
	provider := NewOpenWeatherProvider(client, baseURL, apiKey, DefaultBreakerConfig, logger)
	service := weather.NewService(provider, spec, weather.PolicyAbort, logger)

	report, err := service.Run(ctx, cities)
	if err != nil {
		return weather.Table{}, err
	}
	return report.Table, nil
}
