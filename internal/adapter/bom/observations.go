package bom

import (
	"encoding/xml"

	"github.com/couchcryptid/bom-hazard-etl/internal/domain"
)

// Observation feed XML shapes. Values live in element text content, not in a
// value attribute.

type observationProduct struct {
	XMLName      xml.Name        `xml:"product"`
	Observations obsObservations `xml:"observations"`
}

type obsObservations struct {
	Stations []obsStation `xml:"station"`
}

type obsStation struct {
	BOMID   string      `xml:"bom-id,attr"`
	Name    string      `xml:"stn-name,attr"`
	Lat     string      `xml:"lat,attr"`
	Lon     string      `xml:"lon,attr"`
	Periods []obsPeriod `xml:"period"`
}

type obsPeriod struct {
	TimeLocal string     `xml:"time-local,attr"`
	TimeUTC   string     `xml:"time-utc,attr"`
	Levels    []obsLevel `xml:"level"`
}

type obsLevel struct {
	Type     string       `xml:"type,attr"`
	Elements []xmlElement `xml:"element"`
}

// xmlElement is the shared type/text pair used by both feeds.
type xmlElement struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// ParseObservations decodes an observation bulletin into station rows, one
// per station that published at least one period. Only the first period (the
// most recent reading) is kept; stations with no period are skipped rather
// than emitted as empty rows. Unrecognized element types are ignored.
func ParseObservations(data []byte) ([]domain.StationObservation, error) {
	var doc observationProduct
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	rows := make([]domain.StationObservation, 0, len(doc.Observations.Stations))
	for _, st := range doc.Observations.Stations {
		if len(st.Periods) == 0 {
			continue
		}
		rows = append(rows, stationRow(st))
	}
	return rows, nil
}

func stationRow(st obsStation) domain.StationObservation {
	period := st.Periods[0]

	row := domain.StationObservation{
		StationID:   st.BOMID,
		StationName: st.Name,
		TimeLocal:   period.TimeLocal,
		TimeUTC:     period.TimeUTC,
	}
	if row.StationID == "" {
		row.StationID = "unknown"
	}
	if row.StationName == "" {
		row.StationName = "Unknown"
	}

	// Coordinates are only meaningful as a pair: if either attribute is
	// missing or malformed, both stay nil.
	lat := domain.ToFloat(st.Lat)
	lon := domain.ToFloat(st.Lon)
	if lat != nil && lon != nil {
		row.Lat, row.Lon = lat, lon
	}

	if len(period.Levels) == 0 {
		return row
	}
	for _, el := range period.Levels[0].Elements {
		switch el.Type {
		case "air_temperature":
			row.AirTemperature = domain.ToFloat(el.Value)
		case "rel-humidity":
			row.RelHumidity = domain.ToFloat(el.Value)
		case "wind_spd_kmh":
			row.WindSpeedKmh = domain.ToFloat(el.Value)
		case "gust_kmh":
			row.GustKmh = domain.ToFloat(el.Value)
		case "vis_km":
			row.VisibilityKm = domain.ToFloat(el.Value)
		case "msl_pres":
			row.MSLPressure = domain.ToFloat(el.Value)
		case "rainfall":
			row.Rainfall = domain.ToFloat(el.Value)
		}
	}
	return row
}
