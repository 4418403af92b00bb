package sampler

import (
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclimate/urban-classifier/internal/geo"
	"github.com/openclimate/urban-classifier/internal/raster"
)

// gridDataset is an in-memory raster.Dataset backed by a row-major grid.
type gridDataset struct {
	meta  raster.Meta
	cells [][]float64
	reads int
	fail  bool
}

func newGrid(cells [][]float64, noData *float64) *gridDataset {
	return &gridDataset{
		meta: raster.Meta{
			Path:      "mem://grid",
			Width:     len(cells[0]),
			Height:    len(cells),
			Bands:     1,
			Transform: [6]float64{0, 1, 0, 0, 0, -1},
			NoData:    noData,
		},
		cells: cells,
	}
}

func (g *gridDataset) Meta() raster.Meta { return g.meta }

func (g *gridDataset) ReadPixel(col, row int) (float64, error) {
	g.reads++
	if g.fail {
		return 0, eris.New("disk exploded")
	}
	return g.cells[row][col], nil
}

func (g *gridDataset) Close() error { return nil }

func addr(col, row int) Address {
	return Address{Pixel: geo.Pixel{Col: col, Row: row}, Valid: true}
}

func TestSample_ReadsCodes(t *testing.T) {
	ds := newGrid([][]float64{
		{1, 2, 3},
		{6, 17, 9},
	}, nil)

	results, err := Sample(ds, []Address{addr(0, 0), addr(1, 1), addr(2, 1)})
	require.NoError(t, err)

	assert.Equal(t, []Result{{Code: 1, OK: true}, {Code: 17, OK: true}, {Code: 9, OK: true}}, results)
}

func TestSample_OutOfBoundsIsMissNotError(t *testing.T) {
	ds := newGrid([][]float64{{6}}, nil)

	results, err := Sample(ds, []Address{
		addr(-1, 0),
		addr(0, -1),
		addr(1, 0),
		addr(0, 1),
		addr(0, 0),
	})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		assert.False(t, results[i].OK, "address %d should be a miss", i)
	}
	assert.Equal(t, Result{Code: 6, OK: true}, results[4])
	assert.Equal(t, 1, ds.reads, "out-of-bounds addresses must not reach the provider")
}

func TestSample_NoDataSentinel(t *testing.T) {
	nd := 255.0
	ds := newGrid([][]float64{{255, 4}}, &nd)

	results, err := Sample(ds, []Address{addr(0, 0), addr(1, 0)})
	require.NoError(t, err)

	assert.False(t, results[0].OK)
	assert.Equal(t, Result{Code: 4, OK: true}, results[1])
}

func TestSample_NaNNoData(t *testing.T) {
	nd := math.NaN()
	ds := newGrid([][]float64{{math.NaN(), 11}}, &nd)

	results, err := Sample(ds, []Address{addr(0, 0), addr(1, 0)})
	require.NoError(t, err)

	assert.False(t, results[0].OK)
	assert.True(t, results[1].OK)
}

func TestSample_InvalidAddressSkipsRead(t *testing.T) {
	ds := newGrid([][]float64{{1}}, nil)

	results, err := Sample(ds, []Address{{Pixel: geo.Pixel{Col: 0, Row: 0}, Valid: false}})
	require.NoError(t, err)

	assert.False(t, results[0].OK)
	assert.Zero(t, ds.reads)
}

func TestSample_ReadFailureAborts(t *testing.T) {
	ds := newGrid([][]float64{{1}}, nil)
	ds.fail = true

	_, err := Sample(ds, []Address{addr(0, 0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pixel (0,0)")
}
