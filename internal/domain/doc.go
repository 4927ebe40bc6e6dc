// Package domain models Australian Bureau of Meteorology (BOM) observation
// and forecast data and the hazard metrics derived from it.
//
// # Data Sources
//
// Observations come from the BOM state observation bulletin (e.g.
// IDW60920.xml for Western Australia), updated roughly every 10 minutes.
// Town forecasts come from the precis forecast product (e.g. IDW14199.xml),
// updated hourly. Both are XML documents served from http://www.bom.gov.au/fwo/.
//
// # Feed Conventions
//
// Observation structure:
//
//	<product>
//	  <observations>
//	    <station bom-id="..." stn-name="..." lat="..." lon="...">
//	      <period time-local="..." time-utc="...">
//	        <level type="surface">
//	          <element type="air_temperature">15.0</element>
//	          ...
//
// Measurement values live in element text content, not in a value attribute.
// The first period under a station is the most recent reading; stations
// occasionally publish no period at all and are skipped. Any individual
// measurement can be absent or non-numeric; these become nil fields, never
// dropped rows. Timestamps are kept as the raw published strings.
//
// Forecast structure:
//
//	<product>
//	  <forecast>
//	    <area aac="..." description="..." type="location|public-district|...">
//	      <forecast-period index="0" start-time-local="...">
//	        <element type="air_temperature_maximum">31</element>
//	        <text type="precis">Sunny.</text>
//	        ...
//
// Only areas of type "location" are point localities; district areas carry
// region-level text and are excluded from the tabular output.
//
// # Derived Metrics
//
// Risk scores are z-score composites over the full current station
// cross-section, so they are relative measures: a station is scored against
// the rest of the state right now, not against climatology. Scores are
// bucketed into ordered bands via half-open intervals:
//
//	score < 0.0          Low
//	0.0 <= score < 0.8   Moderate
//	0.8 <= score < 1.6   High
//	score >= 1.6         Extreme
//	score is nil         Unknown
//
// Rainfall figures are snapshots, not accumulations. The intensity estimate
// assumes the published value covers the 10-minute update window; the 1h and
// 24h fields are identity placeholders until a historical store exists.
package domain
