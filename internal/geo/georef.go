// Package geo converts ground coordinates in a raster's native reference
// frame into pixel addresses via the raster's affine georeferencing
// transform.
package geo

import (
	"fmt"
	"math"
)

// GeoreferenceError reports an affine transform that cannot address pixels.
// It is a fatal configuration error: the raster itself is unusable.
type GeoreferenceError struct {
	Transform [6]float64
	Reason    string
}

func (e *GeoreferenceError) Error() string {
	return fmt.Sprintf("geo: invalid geotransform %v: %s", e.Transform, e.Reason)
}

// Pixel is an integer raster cell address.
type Pixel struct {
	Col int
	Row int
}

// Georef maps ground coordinates to pixel addresses by inverting the
// standard 6-parameter GDAL geotransform:
//
//	x = gt[0] + col*gt[1] + row*gt[2]
//	y = gt[3] + col*gt[4] + row*gt[5]
//
// The 2x2 linear part is inverted in closed form at construction, so
// per-point addressing is two multiplies and an add per axis.
type Georef struct {
	originX, originY float64
	// inverse of [gt1 gt2; gt4 gt5]
	inv11, inv12, inv21, inv22 float64
}

// NewGeoref validates the geotransform and precomputes its inverse.
// A singular (zero determinant) or non-finite transform yields a
// GeoreferenceError.
func NewGeoref(gt [6]float64) (*Georef, error) {
	for i, v := range gt {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &GeoreferenceError{
				Transform: gt,
				Reason:    fmt.Sprintf("non-finite parameter at index %d", i),
			}
		}
	}

	det := gt[1]*gt[5] - gt[2]*gt[4]
	if det == 0 {
		return nil, &GeoreferenceError{
			Transform: gt,
			Reason:    "singular linear part (zero determinant)",
		}
	}

	return &Georef{
		originX: gt[0],
		originY: gt[3],
		inv11:   gt[5] / det,
		inv12:   -gt[2] / det,
		inv21:   -gt[4] / det,
		inv22:   gt[1] / det,
	}, nil
}

// ToPixel converts a ground coordinate in the raster's reference frame to
// the address of the cell containing it. The result may lie outside the
// raster extent; bounds are the sampler's concern.
func (g *Georef) ToPixel(x, y float64) Pixel {
	dx := x - g.originX
	dy := y - g.originY
	return Pixel{
		Col: int(math.Floor(g.inv11*dx + g.inv12*dy)),
		Row: int(math.Floor(g.inv21*dx + g.inv22*dy)),
	}
}
