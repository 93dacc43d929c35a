package instant

import (
	"regexp"
	"strconv"
	"strings"
)

type dimension string

const (
	dimLength      dimension = "length"
	dimMass        dimension = "mass"
	dimVolume      dimension = "volume"
	dimTemperature dimension = "temperature"
	dimData        dimension = "data"
	dimTime        dimension = "time"
)

// unit converts to and from the base unit of its dimension
// (meter, kilogram, liter, kelvin, byte, second).
type unit struct {
	symbol string
	dim    dimension
	factor float64 // base units per unit, unused for temperature
}

func (u unit) toBase(v float64) float64 {
	switch u.symbol {
	case "°C":
		return v + 273.15
	case "°F":
		return (v-32)*5/9 + 273.15
	case "K":
		return v
	}
	return v * u.factor
}

func (u unit) fromBase(v float64) float64 {
	switch u.symbol {
	case "°C":
		return v - 273.15
	case "°F":
		return (v-273.15)*9/5 + 32
	case "K":
		return v
	}
	return v / u.factor
}

var units = buildUnits([]struct {
	u       unit
	aliases []string
}{
	// length
	{unit{"mm", dimLength, 0.001}, []string{"mm", "millimeter", "millimeters", "millimetre", "millimetres"}},
	{unit{"cm", dimLength, 0.01}, []string{"cm", "centimeter", "centimeters", "centimetre", "centimetres"}},
	{unit{"m", dimLength, 1}, []string{"m", "meter", "meters", "metre", "metres"}},
	{unit{"km", dimLength, 1000}, []string{"km", "kilometer", "kilometers", "kilometre", "kilometres"}},
	{unit{"in", dimLength, 0.0254}, []string{"inch", "inches", "\""}},
	{unit{"ft", dimLength, 0.3048}, []string{"ft", "foot", "feet", "'"}},
	{unit{"yd", dimLength, 0.9144}, []string{"yd", "yard", "yards"}},
	{unit{"mi", dimLength, 1609.344}, []string{"mi", "mile", "miles"}},
	{unit{"nmi", dimLength, 1852}, []string{"nmi", "nautical mile", "nautical miles"}},

	// mass
	{unit{"mg", dimMass, 1e-6}, []string{"mg", "milligram", "milligrams"}},
	{unit{"g", dimMass, 0.001}, []string{"g", "gram", "grams"}},
	{unit{"kg", dimMass, 1}, []string{"kg", "kilogram", "kilograms", "kilo", "kilos"}},
	{unit{"t", dimMass, 1000}, []string{"t", "tonne", "tonnes", "metric ton", "metric tons"}},
	{unit{"oz", dimMass, 0.028349523125}, []string{"oz", "ounce", "ounces"}},
	{unit{"lb", dimMass, 0.45359237}, []string{"lb", "lbs", "pound", "pounds"}},
	{unit{"st", dimMass, 6.35029318}, []string{"st", "stone", "stones"}},

	// volume
	{unit{"ml", dimVolume, 0.001}, []string{"ml", "milliliter", "milliliters", "millilitre", "millilitres"}},
	{unit{"cl", dimVolume, 0.01}, []string{"cl", "centiliter", "centiliters", "centilitre", "centilitres"}},
	{unit{"l", dimVolume, 1}, []string{"l", "liter", "liters", "litre", "litres"}},
	{unit{"m³", dimVolume, 1000}, []string{"m3", "m³", "cubic meter", "cubic meters", "cubic metre", "cubic metres"}},
	{unit{"tsp", dimVolume, 0.00492892159375}, []string{"tsp", "teaspoon", "teaspoons"}},
	{unit{"tbsp", dimVolume, 0.01478676478125}, []string{"tbsp", "tablespoon", "tablespoons"}},
	{unit{"fl oz", dimVolume, 0.0295735295625}, []string{"fl oz", "floz", "fluid ounce", "fluid ounces"}},
	{unit{"cup", dimVolume, 0.2365882365}, []string{"cup", "cups"}},
	{unit{"pt", dimVolume, 0.473176473}, []string{"pt", "pint", "pints"}},
	{unit{"qt", dimVolume, 0.946352946}, []string{"qt", "quart", "quarts"}},
	{unit{"gal", dimVolume, 3.785411784}, []string{"gal", "gallon", "gallons"}},

	// temperature
	{unit{"°C", dimTemperature, 0}, []string{"c", "°c", "celsius", "centigrade"}},
	{unit{"°F", dimTemperature, 0}, []string{"f", "°f", "fahrenheit"}},
	{unit{"K", dimTemperature, 0}, []string{"k", "kelvin", "kelvins"}},

	// data
	{unit{"B", dimData, 1}, []string{"b", "byte", "bytes"}},
	{unit{"bit", dimData, 0.125}, []string{"bit", "bits"}},
	{unit{"KB", dimData, 1e3}, []string{"kb", "kilobyte", "kilobytes"}},
	{unit{"MB", dimData, 1e6}, []string{"mb", "megabyte", "megabytes"}},
	{unit{"GB", dimData, 1e9}, []string{"gb", "gigabyte", "gigabytes"}},
	{unit{"TB", dimData, 1e12}, []string{"tb", "terabyte", "terabytes"}},
	{unit{"KiB", dimData, 1 << 10}, []string{"kib", "kibibyte", "kibibytes"}},
	{unit{"MiB", dimData, 1 << 20}, []string{"mib", "mebibyte", "mebibytes"}},
	{unit{"GiB", dimData, 1 << 30}, []string{"gib", "gibibyte", "gibibytes"}},
	{unit{"TiB", dimData, 1 << 40}, []string{"tib", "tebibyte", "tebibytes"}},

	// time
	{unit{"ms", dimTime, 0.001}, []string{"ms", "millisecond", "milliseconds"}},
	{unit{"s", dimTime, 1}, []string{"s", "sec", "secs", "second", "seconds"}},
	{unit{"min", dimTime, 60}, []string{"min", "mins", "minute", "minutes"}},
	{unit{"h", dimTime, 3600}, []string{"h", "hr", "hrs", "hour", "hours"}},
	{unit{"d", dimTime, 86400}, []string{"d", "day", "days"}},
	{unit{"wk", dimTime, 604800}, []string{"wk", "week", "weeks"}},
	{unit{"yr", dimTime, 31557600}, []string{"yr", "year", "years"}},
})

func buildUnits(defs []struct {
	u       unit
	aliases []string
}) map[string]unit {
	out := make(map[string]unit)
	for _, d := range defs {
		for _, a := range d.aliases {
			out[a] = d.u
		}
	}
	return out
}

var conversionRE = regexp.MustCompile(`(?i)^(-?\d+(?:\.\d+)?)\s*([^\d\s].*?)\s+(?:to|in|as)\s+(.+)$`)

// Conversion is a unit conversion answer.
type Conversion struct {
	Value     float64 `json:"value"`
	From      string  `json:"from"`
	Result    float64 `json:"result"`
	To        string  `json:"to"`
	Dimension string  `json:"dimension"`
}

// Convert parses "<n> <unit> to|in <unit>" and converts. ok is false when
// the text does not match, a unit is unknown or dimensions differ.
func Convert(text string) (Conversion, bool) {
	m := conversionRE.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Conversion{}, false
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Conversion{}, false
	}
	from, ok := lookupUnit(m[2])
	if !ok {
		return Conversion{}, false
	}
	to, ok := lookupUnit(m[3])
	if !ok || from.dim != to.dim {
		return Conversion{}, false
	}

	return Conversion{
		Value:     v,
		From:      from.symbol,
		Result:    to.fromBase(from.toBase(v)),
		To:        to.symbol,
		Dimension: string(from.dim),
	}, true
}

func lookupUnit(s string) (unit, bool) {
	key := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	key = strings.TrimSuffix(key, ".")
	u, ok := units[key]
	return u, ok
}
