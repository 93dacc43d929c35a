package instant

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/seek/internal/logger"
	"github.com/MrSnakeDoc/seek/internal/search"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		expr   string
		want   string
		wantOK bool
	}{
		{"2+2", "4", true},
		{"2 * (3 + 4)", "14", true},
		{"-2^2", "-4", true},
		{"2^3^2", "512", true},
		{"10 % 3", "1", true},
		{"sqrt(16)", "4", true},
		{"log(1000)", "3", true},
		{"pi * 2", "6.28318530718", true},
		{"0.1 + 0.2", "0.3", true},
		{"3 x 4", "12", true},
		{"3×4", "12", true},
		{"10 / 4 =", "2.5", true},
		{"-(2+3)", "-5", true},
		{"1/0", "", false},
		{"5 % 0", "", false},
		{"sqrt(-1)", "", false},
		{"42", "", false},
		{"-5", "", false},
		{"pi", "", false},
		{"hello + 2", "", false},
		{"2 +", "", false},
		{"(1 + 2", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			v, ok := Calculate(tt.expr)
			if ok != tt.wantOK {
				t.Fatalf("Calculate(%q) ok = %v, want %v", tt.expr, ok, tt.wantOK)
			}
			if ok && FormatNumber(v) != tt.want {
				t.Errorf("Calculate(%q) = %s, want %s", tt.expr, FormatNumber(v), tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1.5, "1.5"},
		{1e20, "1e+20"},
		{0.0000001, "1e-07"},
		{1234567.891, "1234567.891"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		text   string
		want   string
		to     string
		wantOK bool
	}{
		{"10 km to mi", "6.21371192237", "mi", true},
		{"100 c to f", "212", "°F", true},
		{"32 F in celsius", "0", "°C", true},
		{"0 kelvin to c", "-273.15", "°C", true},
		{"1 GiB to MB", "1073.741824", "MB", true},
		{"2 hours in minutes", "120", "min", true},
		{"1 fl oz to ml", "29.5735295625", "ml", true},
		{"5.5 Pounds to kg", "2.494758035", "kg", true},
		{"-40 c to f", "-40", "°F", true},
		{"5 kg to m", "", "", false},
		{"5 parsecs to m", "", "", false},
		{"km to mi", "", "", false},
		{"convert 5 km", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			c, ok := Convert(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("Convert(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got := FormatNumber(c.Result); got != tt.want {
				t.Errorf("Convert(%q) = %s, want %s", tt.text, got, tt.want)
			}
			if c.To != tt.to {
				t.Errorf("Convert(%q) unit = %s, want %s", tt.text, c.To, tt.to)
			}
		})
	}
}

func TestDetectWeather(t *testing.T) {
	tests := []struct {
		text      string
		wantPlace string
		wantOK    bool
	}{
		{"weather in Paris", "Paris", true},
		{"weather paris", "paris", true},
		{"Berlin weather", "Berlin", true},
		{"forecast for New York?", "New York", true},
		{"weather", "", false},
		{"whether or not", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			place, ok := DetectWeather(tt.text)
			if ok != tt.wantOK || place != tt.wantPlace {
				t.Errorf("DetectWeather(%q) = %q, %v; want %q, %v", tt.text, place, ok, tt.wantPlace, tt.wantOK)
			}
		})
	}
}

func TestDetectOrder(t *testing.T) {
	tests := []struct {
		query    string
		wantType string
	}{
		{"2+2", TypeCalculator},
		{"10 km to mi", TypeUnit},
		{"weather in Lyon", TypeWeather},
		{"golang generics", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			a, ok := Detect(tt.query)
			if tt.wantType == "" {
				if ok {
					t.Errorf("Detect(%q) = %+v, want no answer", tt.query, a)
				}
				return
			}
			if !ok || a.Type != tt.wantType {
				t.Errorf("Detect(%q) type = %q, want %q", tt.query, a.Type, tt.wantType)
			}
		})
	}

	a, _ := Detect("10 km to mi")
	assert.Equal(t, "10 km = 6.21371192237 mi", a.Result)
}

func newWeatherServer(t *testing.T, geo string, status int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/geo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("count"))
		_, _ = w.Write([]byte(geo))
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			http.Error(w, "down", status)
			return
		}
		assert.Equal(t, "48.8534", r.URL.Query().Get("latitude"))
		_, _ = w.Write([]byte(`{
			"timezone": "Europe/Paris",
			"current": {"temperature_2m": 18.2, "relative_humidity_2m": 60, "apparent_temperature": 17.5, "weather_code": 3, "wind_speed_10m": 12.4},
			"daily": {"time": ["2026-10-18", "2026-10-19"], "weather_code": [3, 61], "temperature_2m_max": [19, 16], "temperature_2m_min": [10, 9]}
		}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

const parisGeo = `{"results": [{"name": "Paris", "country": "France", "latitude": 48.85341, "longitude": 2.3488, "timezone": "Europe/Paris"}]}`

func TestWeatherLookup(t *testing.T) {
	srv := newWeatherServer(t, parisGeo, http.StatusOK)
	c := NewWeatherClient(srv.URL+"/geo", srv.URL+"/forecast", time.Second, nil, logger.NewNop())

	w, err := c.Lookup(context.Background(), "paris")
	require.NoError(t, err)
	assert.Equal(t, "Paris", w.Location)
	assert.Equal(t, "France", w.Country)
	assert.InDelta(t, 18.2, w.Temperature, 0.001)
	assert.Equal(t, "Overcast", w.Condition)
	require.Len(t, w.Daily, 2)
	assert.Equal(t, "Rain", w.Daily[1].Condition)
}

func TestWeatherLookupPlaceNotFound(t *testing.T) {
	srv := newWeatherServer(t, `{}`, http.StatusOK)
	c := NewWeatherClient(srv.URL+"/geo", srv.URL+"/forecast", time.Second, nil, logger.NewNop())

	_, err := c.Lookup(context.Background(), "atlantis")
	assert.True(t, errors.Is(err, ErrPlaceNotFound))
}

func TestWeatherLookupUpstreamError(t *testing.T) {
	srv := newWeatherServer(t, parisGeo, http.StatusBadGateway)
	c := NewWeatherClient(srv.URL+"/geo", srv.URL+"/forecast", time.Second, nil, logger.NewNop())

	_, err := c.Lookup(context.Background(), "paris")
	assert.Equal(t, search.ErrorTypeUpstream5xx, search.ClassifyError(err))
}
