package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/weathermood/weathermood/internal/client/models"
	"github.com/weathermood/weathermood/internal/common"
)

// OpenWeatherProvider fetches current conditions from the OpenWeather
// "current weather data" endpoint, querying by city id.
type OpenWeatherProvider struct {
	baseURL string
	apiKey  string
	units   string
	http    *http.Client
}

func NewOpenWeatherProvider(baseURL, apiKey string, timeout time.Duration) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		units:   "metric",
		http:    &http.Client{Timeout: timeout},
	}
}

type openWeatherResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility int `json:"visibility"`
}

func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, cityKey string) (*models.WeatherSnapshot, error) {
	q := url.Values{}
	q.Set("id", cityKey)
	q.Set("appid", p.apiKey)
	q.Set("units", p.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.baseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, common.ErrorUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, common.ErrorNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, common.ErrorRateLimited
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", common.ErrorUnavailable, resp.StatusCode)
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}

	snap := &models.WeatherSnapshot{
		CityKey:     cityKey,
		CityName:    body.Name,
		Latitude:    body.Coord.Lat,
		Longitude:   body.Coord.Lon,
		Temperature: body.Main.Temp,
		FeelsLike:   body.Main.FeelsLike,
		WindSpeed:   body.Wind.Speed,
		Humidity:    body.Main.Humidity,
		Pressure:    body.Main.Pressure,
		Visibility:  body.Visibility,
	}
	if len(body.Weather) > 0 {
		snap.Condition = body.Weather[0].Main
		snap.Description = body.Weather[0].Description
		snap.Icon = body.Weather[0].Icon
	}
	return snap, nil
}
