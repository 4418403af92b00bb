// Package sampler reads raw classification codes from a raster at batches
// of pixel addresses.
package sampler

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/openclimate/urban-classifier/internal/geo"
	"github.com/openclimate/urban-classifier/internal/raster"
)

// Address is a pixel address paired with the outcome of the upstream
// reprojection. Invalid addresses never touch the raster.
type Address struct {
	geo.Pixel
	Valid bool
}

// Result is the raw sample for one point. OK is false when the point is
// out of coverage: failed reprojection, outside the raster extent, or a
// no-data cell. Those are expected outcomes, not errors.
type Result struct {
	Code int
	OK   bool
}

// Sample reads the band-1 value for every address. Bounds, the no-data
// sentinel, and the band handle are resolved once per batch; the per-point
// loop does one comparison pair and at most one read. A read failure
// inside the valid extent is an I/O or corruption problem and aborts the
// batch.
func Sample(ds raster.Dataset, addrs []Address) ([]Result, error) {
	meta := ds.Meta()
	results := make([]Result, len(addrs))

	var misses int
	for i, a := range addrs {
		if !a.Valid || a.Col < 0 || a.Row < 0 || a.Col >= meta.Width || a.Row >= meta.Height {
			misses++
			continue
		}

		v, err := ds.ReadPixel(a.Col, a.Row)
		if err != nil {
			return nil, eris.Wrapf(err, "sampler: pixel (%d,%d)", a.Col, a.Row)
		}

		if meta.NoData != nil && sameValue(v, *meta.NoData) {
			misses++
			continue
		}

		results[i] = Result{Code: int(v), OK: true}
	}

	if misses > 0 {
		zap.L().Debug("points without raster coverage",
			zap.Int("total", len(addrs)),
			zap.Int("misses", misses),
		)
	}

	return results, nil
}

// sameValue compares a pixel against the no-data sentinel, treating two
// NaNs as equal since NaN is a common no-data declaration.
func sameValue(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
