package classifier

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/openclimate/urban-classifier/internal/sampler"
	"github.com/openclimate/urban-classifier/pkg/lcz"
)

// Source records how a station's final zone was determined.
type Source string

const (
	// SourceSampled means the zone came from the raster.
	SourceSampled Source = "sampled"
	// SourceOverride means a manual correction replaced the sampled value.
	SourceOverride Source = "override"
	// SourceNoSample means the raster had no valid observation and no
	// override applied; the zone is the no-sample sentinel.
	SourceNoSample Source = "none"
)

// Record is the final classification for one station.
type Record struct {
	StationID string
	Zone      lcz.Zone
	Source    Source
}

// validateOverrides rejects any override code outside the standard range
// before other work starts, so a bad override never produces partial
// output. Stations are checked in sorted order to keep the failing station
// deterministic when several are bad.
func validateOverrides(overrides map[string]int) error {
	ids := make([]string, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if code := overrides[id]; code < lcz.MinCode || code > lcz.MaxCode {
			return &InvalidOverrideError{StationID: id, Code: code}
		}
	}
	return nil
}

// applyOverrides merges manual corrections into sampled results. An
// override always wins when present, regardless of what the raster said
// and independent of input order. Without an override the sampled code is
// used, or the no-sample sentinel when sampling produced nothing.
func applyOverrides(ids []string, sampled []sampler.Result, overrides map[string]int) []Record {
	records := make([]Record, len(ids))

	for i, id := range ids {
		if code, ok := overrides[id]; ok {
			records[i] = Record{StationID: id, Zone: lcz.FromCode(code), Source: SourceOverride}
			continue
		}
		if sampled[i].OK {
			records[i] = Record{StationID: id, Zone: lcz.FromCode(sampled[i].Code), Source: SourceSampled}
			continue
		}
		records[i] = Record{StationID: id, Zone: lcz.ZoneNoSample, Source: SourceNoSample}
	}

	return records
}

// LoadOverrides reads a station-to-code override table from a YAML file of
// the form "station_id: code".
func LoadOverrides(path string) (map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "classifier: read overrides %s", path)
	}

	overrides := make(map[string]int)
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, eris.Wrapf(err, "classifier: parse overrides %s", path)
	}
	return overrides, nil
}
