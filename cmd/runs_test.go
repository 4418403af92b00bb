package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openclimate/urban-classifier/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:         "a1b2c3d4-0000-0000-0000-000000000000",
			InputPath:  "stations.csv",
			RasterPath: "lcz.tif",
			Status:     model.RunStatusCompleted,
			Result:     &model.RunResult{Stations: 42, Sampled: 40, NoSample: 2},
			CreatedAt:  now,
			UpdatedAt:  now.Add(3 * time.Second),
		},
		{
			ID:         "deadbeef-0000-0000-0000-000000000000",
			InputPath:  "/very/long/path/to/some/station/table/aws.csv",
			RasterPath: "lcz.tif",
			Status:     model.RunStatusFailed,
			Error:      "raster: open lcz.tif",
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)
	out := buf.String()

	assert.Contains(t, out, "a1b2c3d4")
	assert.Contains(t, out, "stations.csv")
	assert.Contains(t, out, "completed")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "deadbeef")
	assert.Contains(t, out, "failed")
	// Long paths are truncated from the left.
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, "/very/long/path")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "a1b2c3d4", truncateID("a1b2c3d4-0000"))
	assert.Equal(t, "short", truncateID("short"))
}
