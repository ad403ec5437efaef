package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/FarmSight/FarmSight-Go/utils"
)

// Conditions is the ambient weather context a recommendation starts from
type Conditions struct {
	TemperatureC float64 `json:"temp_c"`
	HumidityPct  float64 `json:"humidity"`
}

// FallbackConditions are substituted when the weather collaborator is
// unreachable. The pipeline continues with these rather than failing.
var FallbackConditions = Conditions{TemperatureC: 25, HumidityPct: 60}

// WeatherClient obtains current conditions for a location
type WeatherClient interface {
	CurrentConditions(ctx context.Context, location string) (Conditions, error)
}

// WeatherAPIClient fetches current conditions from the weatherapi.com
// current-conditions endpoint.
type WeatherAPIClient struct {
	APIKey     string
	BaseURL    string
	MaxRetries int
	HTTPClient *http.Client
	logger     *utils.Logger
}

// DefaultWeatherBaseURL is the production current-conditions endpoint root
const DefaultWeatherBaseURL = "https://api.weatherapi.com/v1"

// NewWeatherAPIClient creates a client with a request timeout and a
// bounded retry budget.
func NewWeatherAPIClient(apiKey, baseURL string, timeout time.Duration, maxRetries int) *WeatherAPIClient {
	if baseURL == "" {
		baseURL = DefaultWeatherBaseURL
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &WeatherAPIClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		MaxRetries: maxRetries,
		HTTPClient: &http.Client{Timeout: timeout},
		logger:     utils.GetLogger().WithComponent("weather"),
	}
}

type currentConditionsResponse struct {
	Current struct {
		TempC    float64 `json:"temp_c"`
		Humidity float64 `json:"humidity"`
	} `json:"current"`
}

// CurrentConditions fetches temperature and humidity for a location,
// retrying transient failures up to MaxRetries times before giving up.
func (c *WeatherAPIClient) CurrentConditions(ctx context.Context, location string) (Conditions, error) {
	endpoint := fmt.Sprintf("%s/current.json?key=%s&q=%s", c.BaseURL, url.QueryEscape(c.APIKey), url.QueryEscape(location))

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Conditions{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
			c.logger.Debug("retrying weather fetch", map[string]any{"attempt": attempt})
		}

		cond, err := c.fetch(ctx, endpoint)
		if err == nil {
			return cond, nil
		}
		lastErr = err
	}
	return Conditions{}, fmt.Errorf("weather fetch failed after %d attempts: %w", c.MaxRetries+1, lastErr)
}

func (c *WeatherAPIClient) fetch(ctx context.Context, endpoint string) (Conditions, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Conditions{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Conditions{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Conditions{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Conditions{}, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var parsed currentConditionsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Conditions{}, fmt.Errorf("failed to parse weather response: %w", err)
	}

	return Conditions{
		TemperatureC: parsed.Current.TempC,
		HumidityPct:  parsed.Current.Humidity,
	}, nil
}

// CurrentOrFallback fetches conditions and substitutes the documented
// defaults on any failure. The failure is logged, not propagated.
func CurrentOrFallback(ctx context.Context, client WeatherClient, location string) Conditions {
	cond, err := client.CurrentConditions(ctx, location)
	if err != nil {
		utils.GetLogger().WithComponent("weather").Warn(
			"weather fetch failed, using default conditions", err,
			map[string]any{"temp_c": FallbackConditions.TemperatureC, "humidity": FallbackConditions.HumidityPct},
		)
		return FallbackConditions
	}
	return cond
}
