package domain

import "math"

// weatherIcons maps BOM forecast icon codes to display glyphs, per the
// published code list at https://reg.bom.gov.au/info/forecast_icons.shtml.
// Code 5 is unassigned upstream.
var weatherIcons = map[int]string{
	1:  "☀️",  // sunny
	2:  "🌤️", // clear
	3:  "⛅",  // partly cloudy
	4:  "☁️",  // cloudy
	6:  "☁️",  // overcast
	8:  "🌦️", // light shower
	9:  "🌦️", // shower
	10: "🌧️", // light rain
	11: "🌧️", // rain
	12: "🌧️", // heavy rain
	13: "⛈️",  // storm
	14: "⛈️",  // light shower, thunderstorm
	15: "⛈️",  // shower, thunderstorm
	16: "⛈️",  // heavy storm
	17: "⛈️",  // heavy shower, thunderstorm
	18: "🧊",  // hail
	19: "💨",  // windy
	20: "🌫️", // fog
	21: "🌫️", // haze
	22: "🌫️", // smoke
	23: "🌫️", // dust
	24: "❄️",  // frost
	25: "🌨️", // snow
	26: "🌀",  // tropical cyclone
}

const (
	// defaultWeatherIcon covers codes the feed publishes but the table does
	// not map, and values that are numeric but not usable as a code.
	defaultWeatherIcon = "🌡️"

	// missingWeatherIcon covers rows where no icon code was published at all.
	missingWeatherIcon = "❓"
)

// WeatherIcon converts a forecast icon code into a display glyph. A nil code
// gets the missing-data glyph; an unmapped or non-finite code gets the
// generic fallback.
func WeatherIcon(code *float64) string {
	if code == nil {
		return missingWeatherIcon
	}
	if math.IsNaN(*code) || math.IsInf(*code, 0) {
		return defaultWeatherIcon
	}
	if icon, ok := weatherIcons[int(*code)]; ok {
		return icon
	}
	return defaultWeatherIcon
}
