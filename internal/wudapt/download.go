// Package wudapt fetches the global WUDAPT Local Climate Zone raster,
// trying known mirrors in order and verifying the result looks like a
// GeoTIFF before anyone tries to classify against it.
package wudapt

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/openclimate/urban-classifier/internal/fetcher"
)

// Mirror is one download source for the global LCZ map.
type Mirror struct {
	Name string
	URL  string
}

// DefaultMirrors lists known WUDAPT download URLs, newest release first.
func DefaultMirrors() []Mirror {
	return []Mirror{
		{Name: "lcz-generator-v3", URL: "https://lcz-generator.rub.de/cogs/lcz_filter_v3_cog.tif"},
		{Name: "zenodo-v3", URL: "https://zenodo.org/records/6364594/files/lcz_filter_v3.tif"},
		{Name: "lcz-generator-v2", URL: "https://lcz-generator.rub.de/cogs/lcz_filter_v2_cog.tif"},
	}
}

// DefaultFilename is the canonical local name for the downloaded raster.
const DefaultFilename = "wudapt_lcz_global.tif"

// DefaultPath returns the preferred cache location for the raster.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), DefaultFilename)
	}
	return filepath.Join(home, ".cache", "urban-classifier", DefaultFilename)
}

// tiff magic numbers: little-endian "II*\0" and big-endian "MM\0*".
var tiffMagics = [][]byte{
	{0x49, 0x49, 0x2A, 0x00},
	{0x4D, 0x4D, 0x00, 0x2A},
}

// Verify checks that the file at path exists, is non-empty, and carries a
// TIFF signature. It does not validate georeferencing; that happens when
// the raster is opened for classification.
func Verify(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return eris.Wrapf(err, "wudapt: stat %s", path)
	}
	if info.Size() == 0 {
		return eris.Errorf("wudapt: %s is empty", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "wudapt: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	header := make([]byte, 4)
	if _, err := io.ReadFull(f, header); err != nil {
		return eris.Wrapf(err, "wudapt: read header of %s", path)
	}

	for _, magic := range tiffMagics {
		if bytes.Equal(header, magic) {
			return nil
		}
	}
	return eris.Errorf("wudapt: %s is not a TIFF file", path)
}

// Download fetches the global LCZ raster to destPath, trying each mirror
// in order until one yields a verifiable GeoTIFF. An existing verified
// file is kept as-is.
func Download(ctx context.Context, f fetcher.Fetcher, mirrors []Mirror, destPath string) error {
	log := zap.L().With(zap.String("component", "wudapt.download"))

	if err := Verify(destPath); err == nil {
		log.Info("raster already present, skipping download", zap.String("path", destPath))
		return nil
	}

	if len(mirrors) == 0 {
		mirrors = DefaultMirrors()
	}

	var lastErr error
	for _, m := range mirrors {
		log.Info("downloading LCZ raster",
			zap.String("mirror", m.Name),
			zap.String("url", m.URL),
		)

		n, err := f.DownloadToFile(ctx, m.URL, destPath)
		if err != nil {
			lastErr = err
			log.Warn("mirror failed", zap.String("mirror", m.Name), zap.Error(err))
			continue
		}

		if err := Verify(destPath); err != nil {
			lastErr = err
			log.Warn("downloaded file failed verification",
				zap.String("mirror", m.Name),
				zap.Error(err),
			)
			_ = os.Remove(destPath)
			continue
		}

		log.Info("download complete",
			zap.String("mirror", m.Name),
			zap.String("path", destPath),
			zap.Int64("bytes", n),
		)
		return nil
	}

	return eris.Wrap(lastErr, "wudapt: all mirrors failed")
}
