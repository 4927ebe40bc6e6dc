package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeatherIcon(t *testing.T) {
	assert.Equal(t, "☀️", WeatherIcon(Float(1)))
	assert.Equal(t, "🌀", WeatherIcon(Float(26)))
	// Codes arrive through float coercion; fractional parts truncate.
	assert.Equal(t, "⛈️", WeatherIcon(Float(13.0)))

	// Unmapped codes fall back to the generic glyph.
	assert.Equal(t, "🌡️", WeatherIcon(Float(5)))
	assert.Equal(t, "🌡️", WeatherIcon(Float(99)))
	assert.Equal(t, "🌡️", WeatherIcon(Float(math.NaN())))

	// A missing code gets its own distinct fallback.
	assert.Equal(t, "❓", WeatherIcon(nil))
}
