package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weathermood/weathermood/internal/common"
)

const sampleResponse = `{
  "id": 524901,
  "name": "Moscow",
  "coord": {"lat": 55.75, "lon": 37.62},
  "main": {"temp": 21.5, "feels_like": 20.1, "humidity": 56, "pressure": 1012},
  "weather": [{"main": "Clouds", "description": "scattered clouds", "icon": "03d"}],
  "wind": {"speed": 3.4},
  "visibility": 10000
}`

func TestFetchCurrent_ParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "524901", r.URL.Query().Get("id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(srv.URL, "test-key", time.Second)
	snap, err := p.FetchCurrent(context.Background(), "524901")
	require.NoError(t, err)

	assert.Equal(t, "524901", snap.CityKey)
	assert.Equal(t, "Moscow", snap.CityName)
	assert.Equal(t, 21.5, snap.Temperature)
	assert.Equal(t, 20.1, snap.FeelsLike)
	assert.Equal(t, "Clouds", snap.Condition)
	assert.Equal(t, "scattered clouds", snap.Description)
	assert.Equal(t, "03d", snap.Icon)
	assert.Equal(t, 3.4, snap.WindSpeed)
	assert.Equal(t, 56, snap.Humidity)
	assert.Equal(t, 10000, snap.Visibility)
}

func TestFetchCurrent_StatusMapping(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusUnauthorized, common.ErrorUnauthorized},
		{http.StatusNotFound, common.ErrorNotFound},
		{http.StatusTooManyRequests, common.ErrorRateLimited},
		{http.StatusServiceUnavailable, common.ErrorUnavailable},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.code)
		}))

		p := NewOpenWeatherProvider(srv.URL, "k", time.Second)
		_, err := p.FetchCurrent(context.Background(), "1")
		assert.ErrorIs(t, err, tt.want, "status %d", tt.code)

		srv.Close()
	}
}

func TestFetchCurrent_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	p := NewOpenWeatherProvider(srv.URL, "k", time.Second)
	_, err := p.FetchCurrent(context.Background(), "1")
	assert.ErrorIs(t, err, common.ErrorUnavailable)
}
