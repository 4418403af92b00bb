package stations

import (
	"encoding/json"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/openclimate/urban-classifier/internal/classifier"
)

// WriteCSV writes the enriched table to path.
func WriteCSV(df dataframe.DataFrame, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "stations: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	if err := df.WriteCSV(f); err != nil {
		return eris.Wrapf(err, "stations: write CSV %s", path)
	}
	return nil
}

// WriteGeoJSON writes classified stations as a GeoJSON FeatureCollection
// of WGS84 points, one feature per record, in record order.
func WriteGeoJSON(w io.Writer, records []classifier.Record, lons, lats []float64) error {
	if len(lons) != len(records) || len(lats) != len(records) {
		return eris.Errorf("stations: %d records but %d/%d coordinates",
			len(records), len(lons), len(lats))
	}

	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(records)),
	}

	for i, r := range records {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       r.StationID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{lons[i], lats[i]}).SetSRID(4326),
			Properties: map[string]interface{}{
				"lcz_code":     r.Zone.Code(),
				"lcz_name":     r.Zone.FullName(),
				"lcz_category": r.Zone.Category().String(),
				"lcz_source":   string(r.Source),
			},
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return eris.Wrap(err, "stations: encode GeoJSON")
	}
	return nil
}

// WriteGeoJSONFile is WriteGeoJSON to a file path.
func WriteGeoJSONFile(path string, records []classifier.Record, lons, lats []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "stations: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	return WriteGeoJSON(f, records, lons, lats)
}
