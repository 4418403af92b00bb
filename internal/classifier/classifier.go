// Package classifier runs the point classification pipeline: reproject
// station coordinates into the raster frame, address and sample the
// classification raster, layer manual overrides, and join zone code, name,
// and category back onto the input table in original row order.
package classifier

import (
	"context"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/openclimate/urban-classifier/internal/geo"
	"github.com/openclimate/urban-classifier/internal/raster"
	"github.com/openclimate/urban-classifier/internal/reproject"
	"github.com/openclimate/urban-classifier/internal/sampler"
)

// Column names appended to the output table.
const (
	ColCode     = "lcz_code"
	ColName     = "lcz_name"
	ColCategory = "lcz_category"
	ColSource   = "lcz_source"
)

// Options names the input columns and carries optional manual overrides.
type Options struct {
	IDColumn  string
	LonColumn string
	LatColumn string

	// Overrides maps station IDs to manually asserted codes. Consulted,
	// never mutated. An override takes absolute precedence over the
	// sampled value.
	Overrides map[string]int

	// WithSource appends a provenance column (sampled/override/none) to
	// the output table in addition to the three classification columns.
	WithSource bool
}

// Stats summarizes one classification invocation.
type Stats struct {
	Stations   int
	Sampled    int
	Overridden int
	NoSample   int
	Elapsed    time.Duration
}

// Classifier holds an opened raster and its derived addressing machinery.
// Construct once, classify many times; all held state is read-only after
// construction.
type Classifier struct {
	ds     raster.Dataset
	georef *geo.Georef
	tr     reproject.Transformer
}

// New opens the classification raster with the GDAL provider and prepares
// the WGS84 transform into its frame.
func New(rasterPath string) (*Classifier, error) {
	ds, err := raster.Open(rasterPath)
	if err != nil {
		return nil, err
	}
	c, err := NewWithProviders(ds, reproject.NewGodalTransformer)
	if err != nil {
		_ = ds.Close()
		return nil, err
	}
	return c, nil
}

// NewWithProviders builds a Classifier on explicit raster and transform
// providers. Tests use this with in-memory fakes.
func NewWithProviders(ds raster.Dataset, factory reproject.Factory) (*Classifier, error) {
	meta := ds.Meta()

	georef, err := geo.NewGeoref(meta.Transform)
	if err != nil {
		return nil, err
	}

	tr, err := factory(meta.ProjectionWKT)
	if err != nil {
		return nil, err
	}

	return &Classifier{ds: ds, georef: georef, tr: tr}, nil
}

// Meta exposes the opened raster's metadata.
func (c *Classifier) Meta() raster.Meta {
	return c.ds.Meta()
}

// Close releases the raster handle and the transform.
func (c *Classifier) Close() error {
	c.tr.Close()
	return c.ds.Close()
}

// Classify enriches the station table with lcz_code, lcz_name and
// lcz_category columns (plus lcz_source when requested). The returned
// table is new, the input is untouched, and rows correspond 1:1 in order
// to the input rows. The required columns are checked before any raster
// work.
func (c *Classifier) Classify(ctx context.Context, df dataframe.DataFrame, opts Options) (dataframe.DataFrame, []Record, error) {
	if err := checkSchema(df, opts); err != nil {
		return dataframe.DataFrame{}, nil, err
	}

	ids := df.Col(opts.IDColumn).Records()
	lons := df.Col(opts.LonColumn).Float()
	lats := df.Col(opts.LatColumn).Float()

	records, stats, err := c.ClassifyPoints(ctx, ids, lons, lats, opts.Overrides)
	if err != nil {
		return dataframe.DataFrame{}, nil, err
	}

	out := assemble(df, records, opts.WithSource)
	if out.Err != nil {
		return dataframe.DataFrame{}, nil, eris.Wrap(out.Err, "classifier: assemble output table")
	}

	zap.L().Info("classification complete",
		zap.Int("stations", stats.Stations),
		zap.Int("sampled", stats.Sampled),
		zap.Int("overridden", stats.Overridden),
		zap.Int("no_sample", stats.NoSample),
		zap.Duration("elapsed", stats.Elapsed),
	)

	return out, records, nil
}

// ClassifyPoints runs the pipeline on parallel id/lon/lat slices and
// returns one Record per point, in input order.
func (c *Classifier) ClassifyPoints(ctx context.Context, ids []string, lons, lats []float64, overrides map[string]int) ([]Record, Stats, error) {
	start := time.Now()

	if len(lons) != len(ids) || len(lats) != len(ids) {
		return nil, Stats{}, eris.Errorf("classifier: %d ids but %d/%d coordinates",
			len(ids), len(lons), len(lats))
	}

	// A bad override fails the whole invocation before any raster work.
	if err := validateOverrides(overrides); err != nil {
		return nil, Stats{}, err
	}

	if err := ctx.Err(); err != nil {
		return nil, Stats{}, eris.Wrap(err, "classifier: canceled")
	}

	xs, ys, ok, err := c.tr.TransformBatch(lons, lats)
	if err != nil {
		return nil, Stats{}, err
	}

	addrs := make([]sampler.Address, len(xs))
	for i := range xs {
		if !ok[i] {
			continue
		}
		addrs[i] = sampler.Address{Pixel: c.georef.ToPixel(xs[i], ys[i]), Valid: true}
	}

	if err := ctx.Err(); err != nil {
		return nil, Stats{}, eris.Wrap(err, "classifier: canceled")
	}

	sampled, err := sampler.Sample(c.ds, addrs)
	if err != nil {
		return nil, Stats{}, err
	}

	records := applyOverrides(ids, sampled, overrides)

	stats := Stats{Stations: len(records), Elapsed: time.Since(start)}
	for _, r := range records {
		switch r.Source {
		case SourceSampled:
			stats.Sampled++
		case SourceOverride:
			stats.Overridden++
		default:
			stats.NoSample++
		}
	}

	return records, stats, nil
}

// checkSchema verifies the named columns exist, reporting every missing
// column at once.
func checkSchema(df dataframe.DataFrame, opts Options) error {
	have := make(map[string]bool, len(df.Names()))
	for _, name := range df.Names() {
		have[name] = true
	}

	var missing []string
	for _, name := range []string{opts.IDColumn, opts.LonColumn, opts.LatColumn} {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// assemble appends the classification columns to a copy of the input
// table. gota's Mutate returns a new frame, so the caller's table is never
// modified; row order is inherited from the record slice, which is in
// input order by construction.
func assemble(df dataframe.DataFrame, records []Record, withSource bool) dataframe.DataFrame {
	codes := make([]int, len(records))
	names := make([]string, len(records))
	categories := make([]string, len(records))
	sources := make([]string, len(records))

	for i, r := range records {
		codes[i] = r.Zone.Code()
		names[i] = r.Zone.FullName()
		categories[i] = r.Zone.Category().String()
		sources[i] = string(r.Source)
	}

	out := df.
		Mutate(series.New(codes, series.Int, ColCode)).
		Mutate(series.New(names, series.String, ColName)).
		Mutate(series.New(categories, series.String, ColCategory))

	if withSource {
		out = out.Mutate(series.New(sources, series.String, ColSource))
	}

	return out
}
