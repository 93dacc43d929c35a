package instant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/MrSnakeDoc/seek/internal/logger"
	"github.com/MrSnakeDoc/seek/internal/search"
	redisstore "github.com/MrSnakeDoc/seek/internal/store/redis"
)

const (
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	weatherCacheTTL     = 10 * time.Minute
	forecastDays        = 3
)

// ErrPlaceNotFound is returned when geocoding finds nothing.
var ErrPlaceNotFound = errors.New("place not found")

var (
	weatherPrefixRE = regexp.MustCompile(`(?i)^(?:weather|forecast)(?:\s+(?:in|for|at))?\s+(.+)$`)
	weatherSuffixRE = regexp.MustCompile(`(?i)^(.+?)\s+(?:weather|forecast)$`)
)

// DetectWeather extracts the place of "weather in paris" or "paris weather".
func DetectWeather(text string) (place string, ok bool) {
	text = strings.TrimSpace(text)
	if m := weatherPrefixRE.FindStringSubmatch(text); m != nil {
		place = m[1]
	} else if m := weatherSuffixRE.FindStringSubmatch(text); m != nil {
		place = m[1]
	}
	place = strings.TrimSpace(strings.TrimRight(place, "?!. "))
	return place, place != ""
}

// Weather is the current conditions and a short forecast of one place.
type Weather struct {
	Location    string        `json:"location"`
	Country     string        `json:"country,omitempty"`
	Latitude    float64       `json:"latitude"`
	Longitude   float64       `json:"longitude"`
	Timezone    string        `json:"timezone,omitempty"`
	Temperature float64       `json:"temperature"`
	FeelsLike   float64       `json:"feelsLike"`
	Humidity    float64       `json:"humidity"`
	WindSpeed   float64       `json:"windSpeed"`
	Code        int           `json:"code"`
	Condition   string        `json:"condition"`
	Daily       []DayForecast `json:"daily"`
}

// DayForecast is one day of the forecast.
type DayForecast struct {
	Date      string  `json:"date"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Code      int     `json:"code"`
	Condition string  `json:"condition"`
}

// WeatherClient looks places up on Open-Meteo.
type WeatherClient struct {
	geocodingURL string
	forecastURL  string
	http         *http.Client
	cache        search.Cache // optional
	logger       logger.Logger
}

// NewWeatherClient creates a client. Empty URLs use the public Open-Meteo API.
func NewWeatherClient(geocodingURL, forecastURL string, timeout time.Duration, cache search.Cache, log logger.Logger) *WeatherClient {
	if geocodingURL == "" {
		geocodingURL = DefaultGeocodingURL
	}
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WeatherClient{
		geocodingURL: geocodingURL,
		forecastURL:  forecastURL,
		http:         &http.Client{Timeout: timeout},
		cache:        cache,
		logger:       log,
	}
}

type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

type forecastResponse struct {
	Timezone string `json:"timezone"`
	Current  struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		FeelsLike   float64 `json:"apparent_temperature"`
		WeatherCode int     `json:"weather_code"`
		WindSpeed   float64 `json:"wind_speed_10m"`
	} `json:"current"`
	Daily struct {
		Time        []string  `json:"time"`
		WeatherCode []int     `json:"weather_code"`
		Max         []float64 `json:"temperature_2m_max"`
		Min         []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// Lookup geocodes place and fetches its forecast.
func (c *WeatherClient) Lookup(ctx context.Context, place string) (Weather, error) {
	key := redisstore.CacheKey("weather", strings.ToLower(place))
	if c.cache != nil {
		var cached Weather
		if hit, err := c.cache.GetCachedJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	var geo geocodingResponse
	if err := c.getJSON(ctx, c.geocodingURL, url.Values{
		"name":     {place},
		"count":    {"1"},
		"language": {"en"},
		"format":   {"json"},
	}, &geo); err != nil {
		return Weather{}, err
	}
	if len(geo.Results) == 0 {
		return Weather{}, fmt.Errorf("%w: %q", ErrPlaceNotFound, place)
	}
	loc := geo.Results[0]

	var fc forecastResponse
	if err := c.getJSON(ctx, c.forecastURL, url.Values{
		"latitude":      {fmt.Sprintf("%.4f", loc.Latitude)},
		"longitude":     {fmt.Sprintf("%.4f", loc.Longitude)},
		"current":       {"temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m"},
		"daily":         {"weather_code,temperature_2m_max,temperature_2m_min"},
		"timezone":      {"auto"},
		"forecast_days": {fmt.Sprint(forecastDays)},
	}, &fc); err != nil {
		return Weather{}, err
	}

	w := Weather{
		Location:    loc.Name,
		Country:     loc.Country,
		Latitude:    loc.Latitude,
		Longitude:   loc.Longitude,
		Timezone:    fc.Timezone,
		Temperature: fc.Current.Temperature,
		FeelsLike:   fc.Current.FeelsLike,
		Humidity:    fc.Current.Humidity,
		WindSpeed:   fc.Current.WindSpeed,
		Code:        fc.Current.WeatherCode,
		Condition:   describeWeatherCode(fc.Current.WeatherCode),
		Daily:       make([]DayForecast, 0, len(fc.Daily.Time)),
	}
	for i, day := range fc.Daily.Time {
		if i >= len(fc.Daily.WeatherCode) || i >= len(fc.Daily.Max) || i >= len(fc.Daily.Min) {
			break
		}
		w.Daily = append(w.Daily, DayForecast{
			Date:      day,
			Min:       fc.Daily.Min[i],
			Max:       fc.Daily.Max[i],
			Code:      fc.Daily.WeatherCode[i],
			Condition: describeWeatherCode(fc.Daily.WeatherCode[i]),
		})
	}

	if c.cache != nil {
		if err := c.cache.CacheJSON(ctx, key, w, weatherCacheTTL); err != nil {
			c.logger.Warn("weather cache write failed", logger.Error(err))
		}
	}
	return w, nil
}

func (c *WeatherClient) getJSON(ctx context.Context, endpoint string, params url.Values, dst any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return search.NewTypedError(search.ErrorTypeConfig, fmt.Errorf("invalid weather endpoint: %w", err))
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return search.NewTypedError(search.ErrorTypeConfig, err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return search.NewTypedError(search.ErrorTypeTimeout, fmt.Errorf("open-meteo request timed out: %w", err))
		}
		return search.NewTypedError(search.ErrorTypeNetwork, fmt.Errorf("open-meteo request failed: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 2048))
		errorType := search.ErrorTypeUnknown
		if res.StatusCode == http.StatusTooManyRequests {
			errorType = search.ErrorTypeRateLimit
		} else if res.StatusCode >= 500 {
			errorType = search.ErrorTypeUpstream5xx
		}
		return search.NewTypedError(errorType, fmt.Errorf("open-meteo http %d: %s", res.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return search.NewTypedError(search.ErrorTypeUnknown, fmt.Errorf("decode open-meteo response failed: %w", err))
	}
	return nil
}

// describeWeatherCode maps WMO weather interpretation codes.
func describeWeatherCode(code int) string {
	switch code {
	case 0:
		return "Clear sky"
	case 1:
		return "Mainly clear"
	case 2:
		return "Partly cloudy"
	case 3:
		return "Overcast"
	case 45, 48:
		return "Fog"
	case 51, 53, 55:
		return "Drizzle"
	case 56, 57:
		return "Freezing drizzle"
	case 61, 63, 65:
		return "Rain"
	case 66, 67:
		return "Freezing rain"
	case 71, 73, 75:
		return "Snow"
	case 77:
		return "Snow grains"
	case 80, 81, 82:
		return "Rain showers"
	case 85, 86:
		return "Snow showers"
	case 95:
		return "Thunderstorm"
	case 96, 99:
		return "Thunderstorm with hail"
	}
	return "Unknown"
}
