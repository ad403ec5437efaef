package recommend

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentConditions(t *testing.T) {
	t.Run("ParsesResponse", func(t *testing.T) {
		var gotPath, gotQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.Query().Get("q")
			fmt.Fprint(w, `{"current":{"temp_c":31.5,"humidity":72}}`)
		}))
		defer server.Close()

		client := NewWeatherAPIClient("test-key", server.URL, time.Second, 0)
		cond, err := client.CurrentConditions(context.Background(), "Bengaluru")
		require.NoError(t, err)
		assert.Equal(t, "/current.json", gotPath)
		assert.Equal(t, "Bengaluru", gotQuery)
		assert.Equal(t, 31.5, cond.TemperatureC)
		assert.Equal(t, 72.0, cond.HumidityPct)
	})

	t.Run("NonSuccessStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client := NewWeatherAPIClient("bad-key", server.URL, time.Second, 0)
		_, err := client.CurrentConditions(context.Background(), "Bengaluru")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 403")
	})

	t.Run("RetriesUntilSuccess", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, `{"current":{"temp_c":25,"humidity":60}}`)
		}))
		defer server.Close()

		client := NewWeatherAPIClient("key", server.URL, time.Second, 2)
		cond, err := client.CurrentConditions(context.Background(), "Bengaluru")
		require.NoError(t, err)
		assert.Equal(t, int32(3), calls.Load())
		assert.Equal(t, 25.0, cond.TemperatureC)
	})

	t.Run("RetryBudgetExhausted", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewWeatherAPIClient("key", server.URL, time.Second, 1)
		_, err := client.CurrentConditions(context.Background(), "Bengaluru")
		require.Error(t, err)
		assert.Equal(t, int32(2), calls.Load())
		assert.Contains(t, err.Error(), "after 2 attempts")
	})
}

// failingWeather always errors, forcing the fallback path
type failingWeather struct{}

func (failingWeather) CurrentConditions(ctx context.Context, location string) (Conditions, error) {
	return Conditions{}, fmt.Errorf("network unreachable")
}

func TestCurrentOrFallback(t *testing.T) {
	t.Run("FallbackOnError", func(t *testing.T) {
		cond := CurrentOrFallback(context.Background(), failingWeather{}, "Bengaluru")
		assert.Equal(t, FallbackConditions, cond)
		assert.Equal(t, 25.0, cond.TemperatureC)
		assert.Equal(t, 60.0, cond.HumidityPct)
	})

	t.Run("PassesThroughSuccess", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"current":{"temp_c":18,"humidity":90}}`)
		}))
		defer server.Close()

		client := NewWeatherAPIClient("key", server.URL, time.Second, 0)
		cond := CurrentOrFallback(context.Background(), client, "Bengaluru")
		assert.Equal(t, Conditions{TemperatureC: 18, HumidityPct: 90}, cond)
	})
}
