package quantity

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Quantity errors
var (
	ErrEmpty        = errors.New("quantity is empty")
	ErrMalformed    = errors.New("malformed quantity")
	ErrUnknownUnits = errors.New("unknown units")
	ErrWrongKind    = errors.New("units measure the wrong kind of quantity")
)

var quantityPattern = regexp.MustCompile(`^\s*([-+]?(?:\d+\.?\d*|\.\d+))\s*(°)?\s*([A-Za-z]*)\.?\s*$`)

// raw is the intermediate form every accepted input is reduced to.
type raw struct {
	value float64
	units string
}

// decode reduces numbers, strings and {value, unit} maps to a raw quantity.
func decode(input any) (raw, error) {
	switch v := input.(type) {
	case nil:
		return raw{}, ErrEmpty
	case string:
		return decodeString(v)
	case map[string]any:
		return decodeMap(v)
	default:
		if f, ok := toFloat(v); ok {
			return raw{value: f}, nil
		}
		return raw{}, fmt.Errorf("%w: unsupported type %T", ErrMalformed, input)
	}
}

func decodeString(s string) (raw, error) {
	if strings.TrimSpace(s) == "" {
		return raw{}, ErrEmpty
	}
	m := quantityPattern.FindStringSubmatch(s)
	if m == nil {
		return raw{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return raw{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return raw{value: f, units: m[3]}, nil
}

func decodeMap(m map[string]any) (raw, error) {
	v, ok := m["value"]
	if !ok {
		return raw{}, fmt.Errorf("%w: missing value", ErrMalformed)
	}
	f, ok := toFloat(v)
	if !ok {
		if s, isString := v.(string); isString {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return raw{}, fmt.Errorf("%w: value %q", ErrMalformed, s)
			}
			f = parsed
		} else {
			return raw{}, fmt.Errorf("%w: value of type %T", ErrMalformed, v)
		}
	}
	r := raw{value: f}
	for _, key := range []string{"unit", "units"} {
		if u, ok := m[key].(string); ok {
			r.units = u
			break
		}
	}
	return r, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// unitsOf resolves a units token for the given kind, applying def when empty.
func unitsOf(token string, kind Kind, def Units) (Units, error) {
	if token == "" {
		return def, nil
	}
	u, ok := Find(token)
	if !ok {
		return Units{}, fmt.Errorf("%w: %q", ErrUnknownUnits, token)
	}
	if u.kind != kind {
		return Units{}, fmt.Errorf("%w: %s is a %s unit, want %s", ErrWrongKind, u.name, u.kind, kind)
	}
	return u, nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatAmount renders an ingredient amount: "2" for counts, "1 cup", "200 grams".
func FormatAmount(value float64, u Units) string {
	if u.IsZero() || u == Count {
		return formatValue(value)
	}
	if value == 1 {
		return formatValue(value) + " " + u.Name()
	}
	return formatValue(value) + " " + u.Plural()
}

// Duration is an immutable length of time expressed in time units.
type Duration struct {
	value float64
	units Units
}

// NewDuration coerces raw input into a Duration. Accepted forms: a Duration or
// *Duration (returned unchanged), a number (minutes), a string such as
// "20 minutes" or "1.5h", or a map with "value" and "unit" keys.
func NewDuration(input any) (Duration, error) {
	switch v := input.(type) {
	case Duration:
		return v, nil
	case *Duration:
		if v == nil {
			return Duration{}, ErrEmpty
		}
		return *v, nil
	case time.Duration:
		return Duration{value: v.Minutes(), units: Minute}, nil
	}
	r, err := decode(input)
	if err != nil {
		return Duration{}, fmt.Errorf("duration: %w", err)
	}
	u, err := unitsOf(r.units, KindTime, Minute)
	if err != nil {
		return Duration{}, fmt.Errorf("duration: %w", err)
	}
	return Duration{value: r.value, units: u}, nil
}

// Value returns the magnitude in the duration's own units.
func (d Duration) Value() float64 { return d.value }

// Units returns the time units.
func (d Duration) Units() Units { return d.units }

// Std converts to a time.Duration.
func (d Duration) Std() time.Duration {
	var base time.Duration
	switch d.units {
	case Second:
		base = time.Second
	case Hour:
		base = time.Hour
	default:
		base = time.Minute
	}
	return time.Duration(d.value * float64(base))
}

// String renders "20 minutes", "1 hour".
func (d Duration) String() string {
	name := d.units.Plural()
	if d.value == 1 {
		name = d.units.Name()
	}
	return formatValue(d.value) + " " + name
}

// MarshalText encodes the duration in its String form.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Temperature is an immutable temperature in Celsius or Fahrenheit.
type Temperature struct {
	value float64
	units Units
}

// NewTemperature coerces raw input into a Temperature. Accepted forms mirror
// NewDuration; bare numbers are Celsius and strings look like "180C" or "350 °F".
func NewTemperature(input any) (Temperature, error) {
	switch v := input.(type) {
	case Temperature:
		return v, nil
	case *Temperature:
		if v == nil {
			return Temperature{}, ErrEmpty
		}
		return *v, nil
	}
	r, err := decode(input)
	if err != nil {
		return Temperature{}, fmt.Errorf("temperature: %w", err)
	}
	u, err := unitsOf(r.units, KindTemperature, Celsius)
	if err != nil {
		return Temperature{}, fmt.Errorf("temperature: %w", err)
	}
	return Temperature{value: r.value, units: u}, nil
}

// Value returns the magnitude in the temperature's own units.
func (t Temperature) Value() float64 { return t.value }

// Units returns Celsius or Fahrenheit.
func (t Temperature) Units() Units { return t.units }

// Celsius returns the temperature converted to degrees Celsius.
func (t Temperature) Celsius() float64 {
	if t.units == Fahrenheit {
		return (t.value - 32) * 5 / 9
	}
	return t.value
}

// String renders "180°C".
func (t Temperature) String() string {
	return formatValue(t.value) + "°" + t.units.Symbol()
}

// MarshalText encodes the temperature in its String form.
func (t Temperature) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// ParseAmount coerces an ingredient amount: a number (a count), a string such
// as "200 g" or "1.5 cups", or a map with "value" and "unit" keys. Units of any
// kind are accepted; a bare number has Count units.
func ParseAmount(input any) (float64, Units, error) {
	r, err := decode(input)
	if err != nil {
		return 0, Units{}, fmt.Errorf("amount: %w", err)
	}
	if r.units == "" {
		return r.value, Count, nil
	}
	u, ok := Find(r.units)
	if !ok {
		return 0, Units{}, fmt.Errorf("amount: %w: %q", ErrUnknownUnits, r.units)
	}
	return r.value, u, nil
}
