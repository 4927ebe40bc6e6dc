package domain

import "sort"

// LocalityForecast is one forecast horizon for one point locality.
// PeriodIndex is the day offset (0 = soonest); nil if the feed published a
// malformed or missing index.
type LocalityForecast struct {
	LocalityName string   `json:"locality_name"`
	AreaCode     string   `json:"area_code"`
	PeriodIndex  *int     `json:"period_index"`
	ForecastTime string   `json:"fcst_time"`
	MinTemp      *float64 `json:"min_temp"`
	MaxTemp      *float64 `json:"max_temp"`
	RainProb     *float64 `json:"rain_probability"`
	IconCode     *float64 `json:"icon_code"`
	Precis       *string  `json:"precis_text"`
}

// SortForecasts orders rows by (locality name, period index) ascending.
// Downstream table construction relies on this order. Rows with a nil index
// sort after every numbered period for the same locality.
func SortForecasts(rows []LocalityForecast) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].LocalityName != rows[j].LocalityName {
			return rows[i].LocalityName < rows[j].LocalityName
		}
		a, b := rows[i].PeriodIndex, rows[j].PeriodIndex
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}
