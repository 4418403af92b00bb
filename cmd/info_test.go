package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openclimate/urban-classifier/internal/raster"
)

func TestFormatRasterInfo(t *testing.T) {
	nodata := 0.0
	meta := raster.Meta{
		Path:          "lcz.tif",
		Width:         389620,
		Height:        155995,
		Bands:         1,
		Transform:     [6]float64{-180, 0.000898, 0, 84, 0, -0.000898},
		ProjectionWKT: `GEOGCS["WGS 84",DATUM["WGS_1984"]]`,
		NoData:        &nodata,
	}

	var buf bytes.Buffer
	formatRasterInfo(&buf, meta)
	out := buf.String()

	assert.Contains(t, out, "lcz.tif")
	assert.Contains(t, out, "389620 x 155995 px")
	assert.Contains(t, out, "WGS 84")
	assert.Contains(t, out, "No-data:")
}

func TestFormatLegend(t *testing.T) {
	var buf bytes.Buffer
	formatLegend(&buf)
	out := buf.String()

	assert.Contains(t, out, "Compact high-rise")
	assert.Contains(t, out, "Water")
	assert.Contains(t, out, "Urban")
	assert.Contains(t, out, "Rural")
	// One header plus 17 zone rows.
	assert.Equal(t, 18, strings.Count(strings.TrimRight(out, "\n"), "\n")+1)
}
