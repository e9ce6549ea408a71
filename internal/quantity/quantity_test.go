package quantity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		in   string
		want Units
	}{
		{"gram", Gram},
		{"grams", Gram},
		{"g", Gram},
		{"C", Celsius},
		{"Celsius", Celsius},
		{"celsius", Celsius},
		{"F", Fahrenheit},
		{"minutes", Minute},
		{"m", Minute},
		{"tsp", Teaspoon},
		{"Tablespoons", Tablespoon},
		{"furlong", Count},
		{"", Count},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, Lookup(tt.in))
		})
	}
}

func TestFind_ReportsMiss(t *testing.T) {
	_, ok := Find("furlong")
	require.False(t, ok)
}

func TestUnits_Accessors(t *testing.T) {
	require.Equal(t, "grams", Gram.Plural())
	require.Equal(t, "Celsius", Celsius.Plural())
	require.Equal(t, "tsp", Teaspoon.Symbol())
	require.Equal(t, KindTime, Hour.Kind())
	require.Equal(t, "time", KindTime.String())
	require.True(t, Units{}.IsZero())
	require.False(t, Count.IsZero())
	require.Len(t, All(), 12)
}

func TestNewDuration(t *testing.T) {
	tests := []struct {
		name  string
		input any
		value float64
		units Units
		str   string
	}{
		{"number defaults to minutes", 20, 20, Minute, "20 minutes"},
		{"float", 1.5, 1.5, Minute, "1.5 minutes"},
		{"string with units", "20 minutes", 20, Minute, "20 minutes"},
		{"compact hours", "1h", 1, Hour, "1 hour"},
		{"seconds", "30 s", 30, Second, "30 seconds"},
		{"map", map[string]any{"value": 2, "unit": "hours"}, 2, Hour, "2 hours"},
		{"map with string value", map[string]any{"value": "45", "units": "minute"}, 45, Minute, "45 minutes"},
		{"std duration", 90 * time.Second, 1.5, Minute, "1.5 minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDuration(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.value, d.Value())
			require.Equal(t, tt.units, d.Units())
			require.Equal(t, tt.str, d.String())
		})
	}
}

func TestNewDuration_IsIdempotent(t *testing.T) {
	d, err := NewDuration("20 minutes")
	require.NoError(t, err)

	again, err := NewDuration(d)
	require.NoError(t, err)
	require.Equal(t, d, again)

	fromPtr, err := NewDuration(&d)
	require.NoError(t, err)
	require.Equal(t, d, fromPtr)
}

func TestNewDuration_Errors(t *testing.T) {
	_, err := NewDuration(nil)
	require.ErrorIs(t, err, ErrEmpty)

	_, err = NewDuration("   ")
	require.ErrorIs(t, err, ErrEmpty)

	_, err = NewDuration("a while")
	require.ErrorIs(t, err, ErrMalformed)

	_, err = NewDuration("20 furlongs")
	require.ErrorIs(t, err, ErrUnknownUnits)

	_, err = NewDuration("20 grams")
	require.ErrorIs(t, err, ErrWrongKind)

	_, err = NewDuration([]string{"20"})
	require.ErrorIs(t, err, ErrMalformed)

	_, err = NewDuration(map[string]any{"unit": "minutes"})
	require.ErrorIs(t, err, ErrMalformed)

	var nilPtr *Duration
	_, err = NewDuration(nilPtr)
	require.ErrorIs(t, err, ErrEmpty)
}

func TestDuration_Std(t *testing.T) {
	d, err := NewDuration("1.5h")
	require.NoError(t, err)
	require.Equal(t, 90*time.Minute, d.Std())

	d, err = NewDuration("45 seconds")
	require.NoError(t, err)
	require.Equal(t, 45*time.Second, d.Std())
}

func TestNewTemperature(t *testing.T) {
	tests := []struct {
		name  string
		input any
		value float64
		units Units
		str   string
	}{
		{"number defaults to celsius", 180, 180, Celsius, "180°C"},
		{"compact", "180C", 180, Celsius, "180°C"},
		{"degree sign", "350 °F", 350, Fahrenheit, "350°F"},
		{"name", "200 celsius", 200, Celsius, "200°C"},
		{"map", map[string]any{"value": 220.5, "unit": "F"}, 220.5, Fahrenheit, "220.5°F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			temp, err := NewTemperature(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.value, temp.Value())
			require.Equal(t, tt.units, temp.Units())
			require.Equal(t, tt.str, temp.String())
		})
	}
}

func TestNewTemperature_IsIdempotent(t *testing.T) {
	temp, err := NewTemperature("180C")
	require.NoError(t, err)

	again, err := NewTemperature(temp)
	require.NoError(t, err)
	require.Equal(t, temp, again)
}

func TestNewTemperature_Errors(t *testing.T) {
	_, err := NewTemperature("hot")
	require.ErrorIs(t, err, ErrMalformed)

	_, err = NewTemperature("180 minutes")
	require.ErrorIs(t, err, ErrWrongKind)
}

func TestTemperature_Celsius(t *testing.T) {
	temp, err := NewTemperature("212F")
	require.NoError(t, err)
	require.InDelta(t, 100, temp.Celsius(), 0.0001)
}

func TestQuantity_MarshalJSON(t *testing.T) {
	d, err := NewDuration(20)
	require.NoError(t, err)
	temp, err := NewTemperature(180)
	require.NoError(t, err)

	out, err := json.Marshal(map[string]any{"duration": d, "temperature": temp, "units": Gram})
	require.NoError(t, err)
	require.JSONEq(t, `{"duration":"20 minutes","temperature":"180°C","units":"gram"}`, string(out))
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "2", FormatAmount(2, Count))
	require.Equal(t, "3", FormatAmount(3, Units{}))
	require.Equal(t, "1 cup", FormatAmount(1, Cup))
	require.Equal(t, "200 grams", FormatAmount(200, Gram))
	require.Equal(t, "0.5 teaspoons", FormatAmount(0.5, Teaspoon))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input any
		value float64
		units Units
	}{
		{3, 3, Count},
		{"200 g", 200, Gram},
		{"1.5 cups", 1.5, Cup},
		{"2 tbsp", 2, Tablespoon},
		{map[string]any{"value": 300, "unit": "ml"}, 300, Milliliter},
	}
	for _, tt := range tests {
		value, units, err := ParseAmount(tt.input)
		require.NoError(t, err)
		require.Equal(t, tt.value, value)
		require.Equal(t, tt.units, units)
	}

	_, _, err := ParseAmount("2 handfuls")
	require.ErrorIs(t, err, ErrUnknownUnits)

	_, _, err = ParseAmount("some")
	require.ErrorIs(t, err, ErrMalformed)
}
