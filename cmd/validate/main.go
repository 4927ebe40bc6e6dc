// Command validate runs saved BOM feed samples through the full parse and
// derive pipeline and checks the structural guarantees downstream consumers
// rely on: fixed schema, first-period-only extraction, forecast ordering,
// z-score properties, and band assignment. Useful after the BOM shifts a
// product format, without hitting the live feed.
//
// Usage:
//
//	go run ./cmd/validate -obs-xml testdata/IDW60920.xml -fcst-xml testdata/IDW14199.xml
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/bom-hazard-etl/internal/adapter/bom"
	"github.com/couchcryptid/bom-hazard-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	obsPath := flag.String("obs-xml", "", "path to a saved observation bulletin XML")
	fcstPath := flag.String("fcst-xml", "", "path to a saved precis forecast XML")
	flag.Parse()

	if *obsPath == "" && *fcstPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	var phases []*phase
	if *obsPath != "" {
		phases = append(phases, validateObservations(*obsPath)...)
	}
	if *fcstPath != "" {
		phases = append(phases, validateForecasts(*fcstPath))
	}

	failed := false
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed = true
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func validateObservations(path string) []*phase {
	parse := &phase{name: "observations: parse"}
	data, err := os.ReadFile(path)
	if err != nil {
		parse.errorf("read %s: %v", path, err)
		return []*phase{parse}
	}
	rows, err := bom.ParseObservations(data)
	if err != nil {
		parse.errorf("parse: %v", err)
		return []*phase{parse}
	}
	if len(rows) == 0 {
		parse.errorf("no station rows parsed")
		return []*phase{parse}
	}
	fmt.Printf("observations: %d station rows\n", len(rows))
	for i, r := range rows {
		if r.StationID == "" || r.StationName == "" {
			parse.errorf("row %d: missing identity", i)
		}
		if (r.Lat == nil) != (r.Lon == nil) {
			parse.errorf("row %d (%s): lat/lon set partially", i, r.StationName)
		}
	}

	derive := &phase{name: "observations: derive"}
	derived := domain.ApplyDerived(rows, domain.DefaultRiskConfig())
	var zsum float64
	var zn int
	for i, r := range derived {
		if (r.FireRiskScore == nil) != (r.FireRiskBand == domain.BandUnknown) {
			derive.errorf("row %d (%s): band/score mismatch", i, r.StationName)
		}
		if r.MSLPressure == nil && r.PressureAlert {
			derive.errorf("row %d (%s): pressure alert without pressure", i, r.StationName)
		}
		if r.FireRiskScore != nil {
			zn++
		}
		if r.ExposureScore != nil {
			zsum += *r.ExposureScore
		}
	}
	fmt.Printf("observations: %d rows with fire risk, exposure score sum %.6f\n", zn, zsum)

	summarize := &phase{name: "observations: summarize"}
	if fire, ok := domain.SummarizeScore(derived, domain.FireRisk); ok {
		if fire.StationsWithData != zn {
			summarize.errorf("summary counts %d rows, derivation produced %d", fire.StationsWithData, zn)
		}
		fmt.Printf("fire risk: highest %s (%.2f, %s), mean %.2f\n",
			fire.HighestStation, fire.HighestScore, fire.HighestBand, fire.MeanScore)
	} else if zn > 0 {
		summarize.errorf("summary reported no data but %d rows have scores", zn)
	}

	return []*phase{parse, derive, summarize}
}

func validateForecasts(path string) *phase {
	p := &phase{name: "forecasts: parse"}
	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read %s: %v", path, err)
		return p
	}
	rows, err := bom.ParseForecasts(data)
	if err != nil {
		p.errorf("parse: %v", err)
		return p
	}
	if len(rows) == 0 {
		p.errorf("no forecast rows parsed")
		return p
	}
	fmt.Printf("forecasts: %d rows\n", len(rows))

	localities := map[string]bool{rows[0].LocalityName: true}
	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		localities[cur.LocalityName] = true
		if cur.LocalityName < prev.LocalityName {
			p.errorf("row %d: locality order broken (%q after %q)", i, cur.LocalityName, prev.LocalityName)
		}
		if cur.LocalityName == prev.LocalityName &&
			cur.PeriodIndex != nil && prev.PeriodIndex != nil &&
			*cur.PeriodIndex < *prev.PeriodIndex {
			p.errorf("row %d (%s): period order broken", i, cur.LocalityName)
		}
		if cur.IconCode != nil && math.IsNaN(*cur.IconCode) {
			p.errorf("row %d (%s): NaN icon code", i, cur.LocalityName)
		}
	}
	fmt.Printf("forecasts: %d localities\n", len(localities))
	return p
}
