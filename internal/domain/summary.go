package domain

// ScoreSummary reduces one risk score across the table for presentation.
// The highest station is the first occurrence in input order when scores tie;
// callers relying on tie order under float equality get that convention, not
// an unspecified one.
type ScoreSummary struct {
	HighestStation   string       `json:"highest_station"`
	HighestScore     float64      `json:"highest_score"`
	HighestBand      Band         `json:"highest_band"`
	MeanScore        float64      `json:"mean_score"`
	BandCounts       map[Band]int `json:"band_counts"`
	StationsWithData int          `json:"stations_with_data"`
}

// ScoreAccessor selects one score/band pair from a row.
type ScoreAccessor struct {
	Score func(StationObservation) *float64
	Band  func(StationObservation) Band
}

// FireRisk selects the fire risk columns.
var FireRisk = ScoreAccessor{
	Score: func(o StationObservation) *float64 { return o.FireRiskScore },
	Band:  func(o StationObservation) Band { return o.FireRiskBand },
}

// CoastalExposure selects the coastal exposure columns.
var CoastalExposure = ScoreAccessor{
	Score: func(o StationObservation) *float64 { return o.ExposureScore },
	Band:  func(o StationObservation) Band { return o.ExposureBand },
}

// SummarizeScore computes summary statistics over rows with a non-nil score.
// ok is false when no row has data; callers present that as an explicit
// no-data state rather than zero values.
func SummarizeScore(rows []StationObservation, acc ScoreAccessor) (ScoreSummary, bool) {
	s := ScoreSummary{BandCounts: make(map[Band]int)}

	var sum float64
	var best *StationObservation
	for i := range rows {
		score := acc.Score(rows[i])
		if score == nil {
			continue
		}
		s.StationsWithData++
		sum += *score
		s.BandCounts[acc.Band(rows[i])]++
		// Strict > keeps the first occurrence on ties.
		if best == nil || *score > *acc.Score(*best) {
			best = &rows[i]
		}
	}

	if s.StationsWithData == 0 {
		return ScoreSummary{}, false
	}

	s.HighestStation = best.StationName
	s.HighestScore = *acc.Score(*best)
	s.HighestBand = acc.Band(*best)
	s.MeanScore = sum / float64(s.StationsWithData)
	return s, true
}

// RainfallSummary reduces the rainfall and pressure columns.
type RainfallSummary struct {
	StationsWithRain   int      `json:"stations_with_rain"`
	MaxRainfall        float64  `json:"max_rainfall"`
	MaxGust            float64  `json:"max_gust"`
	HeaviestStation    string   `json:"heaviest_rain_station,omitempty"`
	HeaviestRainfall   *float64 `json:"heaviest_rain_amount,omitempty"`
	PressureAlertCount int      `json:"pressure_alerts"`
}

// SummarizeRainfall reports rain activity across the table. Stations count as
// raining only above zero; a table with no rainfall readings reports zero
// maxima.
func SummarizeRainfall(rows []StationObservation) RainfallSummary {
	var s RainfallSummary
	for i := range rows {
		o := rows[i]
		if o.Rainfall != nil {
			if *o.Rainfall > s.MaxRainfall {
				s.MaxRainfall = *o.Rainfall
			}
			if *o.Rainfall > 0 {
				s.StationsWithRain++
				if s.HeaviestRainfall == nil || *o.Rainfall > *s.HeaviestRainfall {
					s.HeaviestStation = o.StationName
					s.HeaviestRainfall = o.Rainfall
				}
			}
		}
		if o.GustKmh != nil && *o.GustKmh > s.MaxGust {
			s.MaxGust = *o.GustKmh
		}
		if o.PressureAlert {
			s.PressureAlertCount++
		}
	}
	return s
}

// CoastalSummary pairs the exposure score summary with a low-visibility count.
type CoastalSummary struct {
	Exposure           *ScoreSummary `json:"exposure,omitempty"`
	LowVisibilityCount int           `json:"low_visibility_count"`
}

// SummarizeCoastal reports coastal exposure plus the number of stations with
// visibility below the configured cutoff (nil visibility excluded).
func SummarizeCoastal(rows []StationObservation, cfg RiskConfig) CoastalSummary {
	var s CoastalSummary
	if exp, ok := SummarizeScore(rows, CoastalExposure); ok {
		s.Exposure = &exp
	}
	for i := range rows {
		if v := rows[i].VisibilityKm; v != nil && *v < cfg.VisibilityAlertKm {
			s.LowVisibilityCount++
		}
	}
	return s
}
