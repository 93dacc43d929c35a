package instant

import "strings"

// Answer types.
const (
	TypeCalculator = "calculator"
	TypeUnit       = "unit"
	TypeWeather    = "weather"
)

// Answer is an instant answer shown above the results.
type Answer struct {
	Type       string      `json:"type"`
	Query      string      `json:"query"`
	Result     string      `json:"result,omitempty"`
	Conversion *Conversion `json:"conversion,omitempty"`
	Location   string      `json:"location,omitempty"`
	Weather    *Weather    `json:"weather,omitempty"`
}

// Detect runs the detectors in order: calculator, unit conversion, weather.
// Weather answers only carry Location; the caller fetches the forecast.
func Detect(query string) (Answer, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Answer{}, false
	}

	if v, ok := Calculate(query); ok {
		return Answer{Type: TypeCalculator, Query: query, Result: FormatNumber(v)}, true
	}

	if c, ok := Convert(query); ok {
		return Answer{
			Type:       TypeUnit,
			Query:      query,
			Result:     FormatNumber(c.Value) + " " + c.From + " = " + FormatNumber(c.Result) + " " + c.To,
			Conversion: &c,
		}, true
	}

	if place, ok := DetectWeather(query); ok {
		return Answer{Type: TypeWeather, Query: query, Location: place}, true
	}

	return Answer{}, false
}
