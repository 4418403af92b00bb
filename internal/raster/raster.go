// Package raster abstracts read access to a georeferenced single-band
// classification raster. The concrete provider is GDAL (via godal); the
// rest of the pipeline depends only on the Dataset interface so tests can
// substitute an in-memory grid.
package raster

import "fmt"

// Meta holds the georeferencing metadata read once at open time.
type Meta struct {
	Path   string
	Width  int
	Height int
	Bands  int
	// Transform is the standard 6-parameter affine geotransform.
	Transform [6]float64
	// ProjectionWKT describes the raster's native CRS.
	ProjectionWKT string
	// NoData is the declared no-data sentinel of the classification band,
	// or nil if the band declares none.
	NoData *float64
}

// Dataset is an opened raster. Implementations must tolerate concurrent
// ReadPixel calls; the godal provider serializes them internally because
// GDAL dataset handles are not safe for concurrent access.
type Dataset interface {
	// Meta returns the metadata captured at open time. It performs no I/O.
	Meta() Meta

	// ReadPixel reads the band-1 value at the given cell. The address must
	// be within [0,Width) x [0,Height); callers do bounds checks against
	// Meta so misses never reach the provider.
	ReadPixel(col, row int) (float64, error)

	Close() error
}

// OpenError reports a raster file that could not be opened or that lacks
// the structure the pipeline needs. Fatal; never retried.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("raster: open %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}
