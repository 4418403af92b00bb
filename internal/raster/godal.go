package raster

import (
	"os"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var registerOnce sync.Once

// GodalDataset is the GDAL-backed Dataset. All metadata is captured at
// open time; per-point reads touch only the cached band handle.
type GodalDataset struct {
	mu   sync.Mutex
	ds   *godal.Dataset
	band godal.Band
	meta Meta
}

// Open opens a georeferenced raster with GDAL and validates that it has at
// least one band. Failures are OpenError: misconfiguration, not transient.
func Open(path string) (*GodalDataset, error) {
	registerOnce.Do(godal.RegisterAll)

	if _, err := os.Stat(path); err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	ds, err := godal.Open(path)
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	st := ds.Structure()
	if st.NBands == 0 {
		_ = ds.Close()
		return nil, &OpenError{Path: path, Err: eris.New("no raster bands")}
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		_ = ds.Close()
		return nil, &OpenError{Path: path, Err: eris.Wrap(err, "read geotransform")}
	}

	band := ds.Bands()[0]
	meta := Meta{
		Path:          path,
		Width:         st.SizeX,
		Height:        st.SizeY,
		Bands:         st.NBands,
		Transform:     gt,
		ProjectionWKT: ds.Projection(),
	}
	if nd, ok := band.NoData(); ok {
		meta.NoData = &nd
	}

	zap.L().Debug("opened raster",
		zap.String("path", path),
		zap.Int("width", meta.Width),
		zap.Int("height", meta.Height),
		zap.Int("bands", meta.Bands),
	)

	return &GodalDataset{ds: ds, band: band, meta: meta}, nil
}

func (d *GodalDataset) Meta() Meta {
	return d.meta
}

// ReadPixel reads one band-1 cell as float64. GDAL handles are not safe
// for concurrent access, so reads are serialized on the dataset.
func (d *GodalDataset) ReadPixel(col, row int) (float64, error) {
	buf := make([]float64, 1)

	d.mu.Lock()
	err := d.band.Read(col, row, buf, 1, 1)
	d.mu.Unlock()

	if err != nil {
		return 0, eris.Wrapf(err, "raster: read pixel (%d,%d) of %s", col, row, d.meta.Path)
	}
	return buf[0], nil
}

func (d *GodalDataset) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ds == nil {
		return nil
	}
	err := d.ds.Close()
	d.ds = nil
	return err
}
