// Package reproject transforms batches of WGS84 geographic coordinates into
// a raster's native reference frame.
//
// Axis order is handled explicitly. The WGS84 source is pinned to
// longitude/latitude order by constructing it from WKT with declared axes,
// and the target's declared order is detected from its WKT; outputs are
// swapped back to (easting, northing) when the target is latitude-first.
// Relying on a library default here is how silent hemisphere swaps happen.
package reproject

import "fmt"

// Error reports a target CRS that cannot be used at all. Per-point
// transform failures are not Errors; they surface as ok=false results.
type Error struct {
	CRS    string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reproject: %s (crs %q): %v", e.Reason, e.CRS, e.Err)
	}
	return fmt.Sprintf("reproject: %s (crs %q)", e.Reason, e.CRS)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transformer converts batches of WGS84 (lon, lat) pairs into projected
// coordinates. Implementations are read-only after construction and safe
// for concurrent use.
type Transformer interface {
	// TransformBatch projects lons/lats (equal length) into the target
	// frame. ok[i] is false for points the transform is undefined at;
	// such points are unsampled, not errors.
	TransformBatch(lons, lats []float64) (xs, ys []float64, ok []bool, err error)

	Close()
}

// Factory builds a Transformer for a target CRS given as WKT. The
// classifier holds one so tests can substitute a fake transform.
type Factory func(targetWKT string) (Transformer, error)

// validWGS84 reports whether a coordinate is inside the WGS84 domain.
// Out-of-domain inputs are unsampled rather than fatal: station lists in
// the wild carry placeholder coordinates.
func validWGS84(lon, lat float64) bool {
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// swapped returns copies of xs and ys with the axes exchanged when swap is
// set, and the inputs unchanged otherwise. Pure so the axis-order step is
// testable without a geodesy library.
func swapped(swap bool, xs, ys []float64) ([]float64, []float64) {
	if !swap {
		return xs, ys
	}
	return ys, xs
}
