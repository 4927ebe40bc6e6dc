package domain

import "math"

// BandThreshold maps the half-open interval [Lower, Upper) to a band.
type BandThreshold struct {
	Lower float64
	Upper float64
	Band  Band
}

// RiskConfig carries the fixed thresholds used by the risk engine. It is
// passed by value so a shared default can never be mutated by a caller.
type RiskConfig struct {
	// Bands are evaluated in order; first matching interval wins.
	Bands []BandThreshold

	// PressureDeviationHPa is added to the cross-section mean pressure to
	// form the alert cutoff. Negative: alert fires below the mean.
	PressureDeviationHPa float64

	// RainIntervalsPerHour scales a snapshot rainfall value to an hourly
	// rate. 6.0 assumes the published value covers a 10-minute window; the
	// feed gives no interval metadata, so this is an explicit approximation.
	RainIntervalsPerHour float64

	// VisibilityAlertKm is the cutoff below which a station counts as
	// low-visibility in the coastal summary.
	VisibilityAlertKm float64
}

// DefaultRiskConfig returns the operational thresholds.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		Bands: []BandThreshold{
			{math.Inf(-1), 0.0, BandLow},
			{0.0, 0.8, BandModerate},
			{0.8, 1.6, BandHigh},
			{1.6, math.Inf(1), BandExtreme},
		},
		PressureDeviationHPa: -3.0,
		RainIntervalsPerHour: 6.0,
		VisibilityAlertKm:    10,
	}
}

// BandFor buckets a score into a band. A nil score is always BandUnknown;
// otherwise the first matching half-open interval wins.
func (c RiskConfig) BandFor(score *float64) Band {
	if score == nil {
		return BandUnknown
	}
	for _, t := range c.Bands {
		if *score >= t.Lower && *score < t.Upper {
			return t.Band
		}
	}
	return BandUnknown
}

// Zscores normalizes a column to z-scores over its non-nil values, using the
// population mean and standard deviation. Nil inputs stay nil. Two degenerate
// cases are guarded: an all-nil column returns all nils, and a zero or
// undefined standard deviation (constant column, single station) returns all
// zeros so composite scores stay finite.
func Zscores(values []*float64) []*float64 {
	out := make([]*float64, len(values))

	var sum float64
	var n int
	for _, v := range values {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return out
	}

	mean := sum / float64(n)
	var ss float64
	for _, v := range values {
		if v != nil {
			d := *v - mean
			ss += d * d
		}
	}
	std := math.Sqrt(ss / float64(n))

	if std == 0 || math.IsNaN(std) {
		zero := 0.0
		for i := range out {
			out[i] = &zero
		}
		return out
	}

	for i, v := range values {
		if v != nil {
			z := (*v - mean) / std
			out[i] = &z
		}
	}
	return out
}

// ApplyDerived computes every derived column fresh from the complete current
// table: fire risk, coastal exposure, rainfall metrics, and the pressure
// anomaly flag. The z-score means and deviations depend on the full
// cross-section, so results from a previous run are never reused. The input
// slice is not modified.
func ApplyDerived(rows []StationObservation, cfg RiskConfig) []StationObservation {
	out := make([]StationObservation, len(rows))
	copy(out, rows)

	applyFireRisk(out, cfg)
	applyCoastalExposure(out, cfg)
	applyRainfallMetrics(out, cfg)
	applyPressureAlerts(out, cfg)

	return out
}

// applyFireRisk scores z(temp) - z(humidity) + 0.5*z(wind). The score is nil
// for any row where one of the three inputs has no z-score.
func applyFireRisk(rows []StationObservation, cfg RiskConfig) {
	zTemp := Zscores(column(rows, func(o StationObservation) *float64 { return o.AirTemperature }))
	zHum := Zscores(column(rows, func(o StationObservation) *float64 { return o.RelHumidity }))
	zWind := Zscores(column(rows, func(o StationObservation) *float64 { return o.WindSpeedKmh }))

	for i := range rows {
		score := combine(func(z []float64) float64 {
			return z[0] - z[1] + 0.5*z[2]
		}, zTemp[i], zHum[i], zWind[i])
		rows[i].FireRiskScore = score
		rows[i].FireRiskBand = cfg.BandFor(score)
	}
}

// applyCoastalExposure scores z(wind) + 0.7*z(gust).
func applyCoastalExposure(rows []StationObservation, cfg RiskConfig) {
	zWind := Zscores(column(rows, func(o StationObservation) *float64 { return o.WindSpeedKmh }))
	zGust := Zscores(column(rows, func(o StationObservation) *float64 { return o.GustKmh }))

	for i := range rows {
		score := combine(func(z []float64) float64 {
			return z[0] + 0.7*z[1]
		}, zWind[i], zGust[i])
		rows[i].ExposureScore = score
		rows[i].ExposureBand = cfg.BandFor(score)
	}
}

// applyRainfallMetrics derives an hourly intensity from the snapshot rainfall
// value. Rain1hEst and Rain24h are acknowledged placeholders equal to the raw
// snapshot; true accumulation needs a historical store.
func applyRainfallMetrics(rows []StationObservation, cfg RiskConfig) {
	for i := range rows {
		r := rows[i].Rainfall
		if r == nil {
			continue
		}
		intensity := *r * cfg.RainIntervalsPerHour
		rows[i].RainIntensityMmh = &intensity
		rows[i].Rain1hEst = Float(*r)
		rows[i].Rain24h = Float(*r)
	}
}

// applyPressureAlerts flags rows whose pressure sits below the cross-section
// mean plus the (negative) deviation threshold. Rows with nil pressure are
// always false, and a table with no pressure readings raises no alerts.
func applyPressureAlerts(rows []StationObservation, cfg RiskConfig) {
	var sum float64
	var n int
	for i := range rows {
		if p := rows[i].MSLPressure; p != nil {
			sum += *p
			n++
		}
	}
	if n == 0 {
		for i := range rows {
			rows[i].PressureAlert = false
		}
		return
	}

	cutoff := sum/float64(n) + cfg.PressureDeviationHPa
	for i := range rows {
		p := rows[i].MSLPressure
		rows[i].PressureAlert = p != nil && *p < cutoff
	}
}

// column extracts one measurement across all rows.
func column(rows []StationObservation, get func(StationObservation) *float64) []*float64 {
	out := make([]*float64, len(rows))
	for i := range rows {
		out[i] = get(rows[i])
	}
	return out
}

// combine evaluates f over the given z-scores, propagating nil: if any input
// is nil the result is nil.
func combine(f func([]float64) float64, zs ...*float64) *float64 {
	vals := make([]float64, len(zs))
	for i, z := range zs {
		if z == nil {
			return nil
		}
		vals[i] = *z
	}
	v := f(vals)
	return &v
}
