// Package quantity provides the immutable value objects used inside instruction
// parameters and ingredient amounts: Units, Duration and Temperature.
package quantity

import "strings"

// Kind classifies what a unit measures.
type Kind int

const (
	KindCount Kind = iota
	KindWeight
	KindVolume
	KindTime
	KindTemperature
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindCount:
		return "count"
	case KindWeight:
		return "weight"
	case KindVolume:
		return "volume"
	case KindTime:
		return "time"
	case KindTemperature:
		return "temperature"
	default:
		return "unknown"
	}
}

// Units is a named unit of measure. Values are compared by value; the
// predefined units below are the only ones Lookup returns.
type Units struct {
	name   string
	symbol string
	plural string
	kind   Kind
}

// Name returns the singular unit name ("gram").
func (u Units) Name() string { return u.name }

// Symbol returns the short symbol ("g"). Count has no symbol.
func (u Units) Symbol() string { return u.symbol }

// Kind returns what the unit measures.
func (u Units) Kind() Kind { return u.kind }

// Plural returns the plural name, defaulting to name+"s".
func (u Units) Plural() string {
	if u.plural != "" {
		return u.plural
	}
	return u.name + "s"
}

// String returns the unit name.
func (u Units) String() string { return u.name }

// MarshalText encodes the unit as its name.
func (u Units) MarshalText() ([]byte, error) { return []byte(u.name), nil }

// IsZero reports whether u is the zero Units (not one of the predefined units).
func (u Units) IsZero() bool { return u == Units{} }

var (
	Celsius    = Units{name: "Celsius", symbol: "C", plural: "Celsius", kind: KindTemperature}
	Fahrenheit = Units{name: "Fahrenheit", symbol: "F", plural: "Fahrenheit", kind: KindTemperature}
	Count      = Units{name: "count", symbol: "", kind: KindCount}
	Gram       = Units{name: "gram", symbol: "g", kind: KindWeight}
	Kilogram   = Units{name: "kilogram", symbol: "kg", kind: KindWeight}
	Milliliter = Units{name: "milliliter", symbol: "ml", kind: KindVolume}
	Teaspoon   = Units{name: "teaspoon", symbol: "tsp", kind: KindVolume}
	Tablespoon = Units{name: "tablespoon", symbol: "tbsp", kind: KindVolume}
	Cup        = Units{name: "cup", symbol: "c", kind: KindVolume}
	Second     = Units{name: "second", symbol: "s", kind: KindTime}
	Minute     = Units{name: "minute", symbol: "m", kind: KindTime}
	Hour       = Units{name: "hour", symbol: "h", kind: KindTime}
)

var all = []Units{
	Celsius, Count, Fahrenheit, Gram, Kilogram, Milliliter,
	Teaspoon, Tablespoon, Cup, Second, Minute, Hour,
}

// All returns the predefined units.
func All() []Units {
	out := make([]Units, len(all))
	copy(out, all)
	return out
}

// Find returns the unit whose name, plural name or symbol exactly matches s.
// When no exact match exists a case-insensitive match on name or plural is tried.
func Find(s string) (Units, bool) {
	if s == "" {
		return Units{}, false
	}
	for _, u := range all {
		if s == u.name || s == u.name+"s" || s == u.Plural() || (u.symbol != "" && s == u.symbol) {
			return u, true
		}
	}
	for _, u := range all {
		if strings.EqualFold(s, u.name) || strings.EqualFold(s, u.name+"s") || strings.EqualFold(s, u.Plural()) {
			return u, true
		}
	}
	return Units{}, false
}

// Lookup is Find with a fallback: unknown strings resolve to Count.
func Lookup(s string) Units {
	if u, ok := Find(s); ok {
		return u
	}
	return Count
}
