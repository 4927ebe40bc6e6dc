package domain

// Band is a categorical risk bucket derived from a continuous score.
type Band string

const (
	BandLow      Band = "Low"
	BandModerate Band = "Moderate"
	BandHigh     Band = "High"
	BandExtreme  Band = "Extreme"
	BandUnknown  Band = "Unknown"
)

// StationObservation is one station's most recent surface reading. Every row
// carries the full fixed field set; measurements the feed did not publish are
// nil, never omitted. Timestamps are the raw strings as published.
type StationObservation struct {
	StationID   string `json:"station_id"`
	StationName string `json:"station_name"`

	// Lat/Lon are set or unset as a pair: a malformed coordinate attribute
	// nils both.
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`

	TimeLocal string `json:"time_local"`
	TimeUTC   string `json:"time_utc"`

	AirTemperature *float64 `json:"air_temperature"`
	RelHumidity    *float64 `json:"rel_humidity"`
	WindSpeedKmh   *float64 `json:"wind_spd_kmh"`
	GustKmh        *float64 `json:"gust_kmh"`
	VisibilityKm   *float64 `json:"vis_km"`
	MSLPressure    *float64 `json:"msl_pres"`
	Rainfall       *float64 `json:"rainfall"`

	// Derived columns, populated by ApplyDerived.
	FireRiskScore    *float64 `json:"fire_risk_score"`
	FireRiskBand     Band     `json:"fire_risk_band"`
	RainIntensityMmh *float64 `json:"rain_intensity_mmh"`
	Rain1hEst        *float64 `json:"rain_1h_est"`
	Rain24h          *float64 `json:"rain_24h"`
	PressureAlert    bool     `json:"pressure_alert"`
	ExposureScore    *float64 `json:"exposure_score"`
	ExposureBand     Band     `json:"exposure_band"`
}

// Float returns a pointer to v, for building rows in tests and fixtures.
func Float(v float64) *float64 { return &v }
