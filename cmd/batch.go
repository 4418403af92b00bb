package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"sort"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openclimate/urban-classifier/internal/classifier"
	"github.com/openclimate/urban-classifier/internal/store"
)

var (
	batchOutDir      string
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch <glob>...",
	Short: "Classify every station file matching the given patterns",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		inputs, err := expandGlobs(args)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			zap.L().Info("no station files matched")
			return nil
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		rasterPath := resolveRasterPath(classifyRaster)
		cl, err := classifier.New(rasterPath)
		if err != nil {
			return err
		}
		defer cl.Close() //nolint:errcheck

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentFiles
		}

		return processBatch(ctx, cl, st, inputs, rasterPath, concurrency)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "directory for output files (default alongside each input)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max station files in flight (default from config)")
	batchCmd.Flags().StringVar(&classifyRaster, "raster", "", "LCZ raster path (default from config, then the fetch cache)")
	rootCmd.AddCommand(batchCmd)
}

// expandGlobs resolves the patterns into a sorted, de-duplicated file list.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var inputs []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "bad pattern %q", pattern)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				inputs = append(inputs, m)
			}
		}
	}
	sort.Strings(inputs)
	return inputs, nil
}

// processBatch classifies the inputs concurrently. One raster handle is
// shared across workers; the adapters serialize access to it. A failed file
// is logged and counted but does not stop the rest of the batch.
func processBatch(ctx context.Context, cl *classifier.Classifier, st store.Store, inputs []string, rasterPath string, concurrency int) error {
	zap.L().Info("processing batch",
		zap.Int("files", len(inputs)),
		zap.Int("concurrency", concurrency),
	)

	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			output := batchOutputPath(input)
			if err := classifyFile(gctx, cl, st, input, output, rasterPath); err != nil {
				failed.Add(1)
				zap.L().Error("station file failed",
					zap.String("input", input),
					zap.Error(err),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch canceled")
	}

	if n := failed.Load(); n > 0 {
		return eris.Errorf("batch: %d of %d files failed", n, len(inputs))
	}

	zap.L().Info("batch complete", zap.Int("files", len(inputs)))
	return nil
}

func batchOutputPath(input string) string {
	out := defaultOutputPath(input)
	if batchOutDir != "" {
		out = filepath.Join(batchOutDir, filepath.Base(out))
	}
	return out
}
