package bom

import (
	"encoding/xml"

	"github.com/couchcryptid/bom-hazard-etl/internal/domain"
)

// areaTypeLocation marks point localities in the forecast feed. Other area
// types (public districts, metropolitan areas) carry region-level text and
// are excluded from the table.
const areaTypeLocation = "location"

type forecastProduct struct {
	XMLName  xml.Name     `xml:"product"`
	Forecast fcstForecast `xml:"forecast"`
}

type fcstForecast struct {
	Areas []fcstArea `xml:"area"`
}

type fcstArea struct {
	AAC         string       `xml:"aac,attr"`
	Description string       `xml:"description,attr"`
	Type        string       `xml:"type,attr"`
	Periods     []fcstPeriod `xml:"forecast-period"`
}

type fcstPeriod struct {
	Index          string       `xml:"index,attr"`
	StartTimeLocal string       `xml:"start-time-local,attr"`
	Elements       []xmlElement `xml:"element"`
	Texts          []fcstText   `xml:"text"`
}

type fcstText struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// ParseForecasts decodes a precis forecast product into locality rows, one
// per (locality, forecast-period). Every published horizon is kept. Rows are
// sorted by (locality name, period index) ascending; downstream table
// construction relies on that order.
func ParseForecasts(data []byte) ([]domain.LocalityForecast, error) {
	var doc forecastProduct
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var rows []domain.LocalityForecast
	for _, area := range doc.Forecast.Areas {
		if area.Type != areaTypeLocation {
			continue
		}
		name := area.Description
		if name == "" {
			name = "Unknown"
		}
		code := area.AAC
		if code == "" {
			code = "unknown"
		}
		for _, period := range area.Periods {
			rows = append(rows, periodRow(name, code, period))
		}
	}

	domain.SortForecasts(rows)
	return rows, nil
}

func periodRow(locality, areaCode string, period fcstPeriod) domain.LocalityForecast {
	row := domain.LocalityForecast{
		LocalityName: locality,
		AreaCode:     areaCode,
		PeriodIndex:  domain.ToInt(period.Index),
		ForecastTime: period.StartTimeLocal,
	}

	for _, el := range period.Elements {
		switch el.Type {
		case "air_temperature_minimum":
			row.MinTemp = domain.ToFloat(el.Value)
		case "air_temperature_maximum":
			row.MaxTemp = domain.ToFloat(el.Value)
		case "probability_of_precipitation":
			row.RainProb = domain.ToFloat(el.Value)
		case "forecast_icon_code":
			row.IconCode = domain.ToFloat(el.Value)
		}
	}

	for _, txt := range period.Texts {
		if txt.Type == "precis" {
			precis := txt.Value
			row.Precis = &precis
			break
		}
	}
	return row
}
