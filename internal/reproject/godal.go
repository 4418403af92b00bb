package reproject

import (
	"sync"

	"github.com/airbusgeo/godal"
	"go.uber.org/zap"

	"github.com/openclimate/urban-classifier/internal/geo"
)

// wgs84LonLat is the source frame with an explicit longitude-first axis
// declaration. EPSG:4326's authority definition is latitude-first; pinning
// the order in WKT removes any dependence on the library's axis-mapping
// default.
const wgs84LonLat = `GEOGCS["WGS 84",` +
	`DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]],` +
	`PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433],` +
	`AXIS["Longitude",EAST],AXIS["Latitude",NORTH]]`

// GodalTransformer reprojects through GDAL's coordinate transformation
// engine. GDAL transform objects are not safe for concurrent use, so calls
// are serialized; the batch API keeps the cgo crossing per call, not per
// point.
type GodalTransformer struct {
	mu          sync.Mutex
	tr          *godal.Transform
	targetIsLat bool
}

// NewGodalTransformer builds a WGS84-to-target transformer. An unusable
// target CRS is a fatal Error.
func NewGodalTransformer(targetWKT string) (Transformer, error) {
	if targetWKT == "" {
		return nil, &Error{CRS: targetWKT, Reason: "raster declares no CRS"}
	}

	src, err := godal.NewSpatialRefFromWKT(wgs84LonLat)
	if err != nil {
		return nil, &Error{CRS: "WGS84", Reason: "create source CRS", Err: err}
	}
	defer src.Close()

	dst, err := godal.NewSpatialRefFromWKT(targetWKT)
	if err != nil {
		return nil, &Error{CRS: targetWKT, Reason: "unresolvable target CRS", Err: err}
	}
	defer dst.Close()

	tr, err := godal.NewTransform(src, dst)
	if err != nil {
		return nil, &Error{CRS: targetWKT, Reason: "create transform", Err: err}
	}

	return &GodalTransformer{
		tr:          tr,
		targetIsLat: geo.LatLongOrder(targetWKT),
	}, nil
}

// TransformBatch projects all points in one call. Points the transform is
// undefined at (and inputs outside the WGS84 domain) come back ok=false.
func (t *GodalTransformer) TransformBatch(lons, lats []float64) ([]float64, []float64, []bool, error) {
	n := len(lons)
	xs := make([]float64, n)
	ys := make([]float64, n)
	ok := make([]bool, n)

	// Pack the points inside the WGS84 domain into one contiguous batch;
	// out-of-domain inputs never reach the transform.
	idx := make([]int, 0, n)
	bx := make([]float64, 0, n)
	by := make([]float64, 0, n)
	for i := range lons {
		if validWGS84(lons[i], lats[i]) {
			idx = append(idx, i)
			bx = append(bx, lons[i])
			by = append(by, lats[i])
		}
	}

	if len(idx) > 0 {
		success := make([]bool, len(idx))

		t.mu.Lock()
		err := t.tr.TransformEx(bx, by, nil, success)
		t.mu.Unlock()

		if err != nil {
			// GDAL reports an error when any point fails; the per-point
			// success flags are still authoritative for the rest.
			failed := 0
			for _, s := range success {
				if !s {
					failed++
				}
			}
			zap.L().Debug("partial reprojection failure",
				zap.Int("points", len(idx)),
				zap.Int("failed", failed),
			)
		}

		bx, by = swapped(t.targetIsLat, bx, by)
		for j, i := range idx {
			xs[i] = bx[j]
			ys[i] = by[j]
			ok[i] = success[j]
		}
	}

	return xs, ys, ok, nil
}

func (t *GodalTransformer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tr != nil {
		t.tr.Close()
		t.tr = nil
	}
}
