package main

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openclimate/urban-classifier/internal/classifier"
	"github.com/openclimate/urban-classifier/internal/model"
	"github.com/openclimate/urban-classifier/internal/stations"
	"github.com/openclimate/urban-classifier/internal/store"
	"github.com/openclimate/urban-classifier/internal/wudapt"
)

var (
	classifyOutput     string
	classifyRaster     string
	classifyOverrides  string
	classifyWithSource bool
	classifyIDCol      string
	classifyLonCol     string
	classifyLatCol     string
	classifyEncoding   string
	classifySheet      int
	classifyNoStore    bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <stations-file>",
	Short: "Classify stations in a CSV, XLSX or shapefile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		input := args[0]

		var st store.Store
		if !classifyNoStore {
			s, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer s.Close() //nolint:errcheck
			if err := s.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
			st = s
		}

		rasterPath := resolveRasterPath(classifyRaster)
		cl, err := classifier.New(rasterPath)
		if err != nil {
			return err
		}
		defer cl.Close() //nolint:errcheck

		output := classifyOutput
		if output == "" {
			output = defaultOutputPath(input)
		}

		return classifyFile(ctx, cl, st, input, output, rasterPath)
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyOutput, "output", "o", "", "output path (.csv or .geojson, default <input>_lcz.csv)")
	classifyCmd.Flags().StringVar(&classifyRaster, "raster", "", "LCZ raster path (default from config, then the fetch cache)")
	classifyCmd.Flags().StringVar(&classifyOverrides, "overrides", "", "YAML file of station_id: lcz_code manual assignments")
	classifyCmd.Flags().BoolVar(&classifyWithSource, "with-source", false, "add an lcz_source column (sampled, override, none)")
	classifyCmd.Flags().StringVar(&classifyIDCol, "id-column", "", "station identifier column (default from config)")
	classifyCmd.Flags().StringVar(&classifyLonCol, "lon-column", "", "longitude column (default from config)")
	classifyCmd.Flags().StringVar(&classifyLatCol, "lat-column", "", "latitude column (default from config)")
	classifyCmd.Flags().StringVar(&classifyEncoding, "encoding", "", "CSV encoding: utf-8 or latin1 (default from config)")
	classifyCmd.Flags().IntVar(&classifySheet, "sheet", 0, "worksheet index for XLSX inputs")
	classifyCmd.Flags().BoolVar(&classifyNoStore, "no-store", false, "skip recording the run in the history store")
	rootCmd.AddCommand(classifyCmd)
}

// resolveRasterPath picks the raster: explicit flag, then config, then the
// fetch command's cache location.
func resolveRasterPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if cfg.Raster.Path != "" {
		return cfg.Raster.Path
	}
	return wudapt.DefaultPath()
}

// classifyOptions merges per-invocation flags with configured defaults.
func classifyOptions() classifier.Options {
	opts := classifier.Options{
		IDColumn:   cfg.Classify.IDColumn,
		LonColumn:  cfg.Classify.LonColumn,
		LatColumn:  cfg.Classify.LatColumn,
		WithSource: classifyWithSource,
	}
	if classifyIDCol != "" {
		opts.IDColumn = classifyIDCol
	}
	if classifyLonCol != "" {
		opts.LonColumn = classifyLonCol
	}
	if classifyLatCol != "" {
		opts.LatColumn = classifyLatCol
	}
	return opts
}

func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "_lcz.csv"
}

// classifyFile runs one station file through the classifier and writes the
// enriched table, recording the run in st when it is non-nil.
func classifyFile(ctx context.Context, cl *classifier.Classifier, st store.Store, input, output, rasterPath string) error {
	var run *model.Run
	if st != nil {
		r, err := st.CreateRun(ctx, input, rasterPath)
		if err != nil {
			return err
		}
		run = r
	}

	start := time.Now()
	result, err := classifyFileInner(ctx, cl, input, output)
	result.Elapsed = time.Since(start)
	if st != nil {
		if err != nil {
			if ferr := st.FailRun(ctx, run.ID, err.Error()); ferr != nil {
				zap.L().Warn("record failed run", zap.Error(ferr))
			}
		} else if cerr := st.CompleteRun(ctx, run.ID, result); cerr != nil {
			zap.L().Warn("record completed run", zap.Error(cerr))
		}
	}
	return err
}

func classifyFileInner(ctx context.Context, cl *classifier.Classifier, input, output string) (model.RunResult, error) {
	encoding := cfg.Classify.Encoding
	if classifyEncoding != "" {
		encoding = classifyEncoding
	}

	df, err := stations.Read(input, stations.ReadOptions{Encoding: encoding, SheetIndex: classifySheet})
	if err != nil {
		return model.RunResult{}, err
	}

	opts := classifyOptions()
	if classifyOverrides != "" {
		overrides, err := classifier.LoadOverrides(classifyOverrides)
		if err != nil {
			return model.RunResult{}, err
		}
		opts.Overrides = overrides
	}

	out, records, err := cl.Classify(ctx, df, opts)
	if err != nil {
		return model.RunResult{}, err
	}

	if err := writeOutput(out, records, opts, output); err != nil {
		return model.RunResult{}, err
	}

	zap.L().Info("wrote classified stations",
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("stations", len(records)),
	)
	return runResultFromRecords(records), nil
}

func runResultFromRecords(records []classifier.Record) model.RunResult {
	result := model.RunResult{Stations: len(records)}
	for _, r := range records {
		switch r.Source {
		case classifier.SourceSampled:
			result.Sampled++
		case classifier.SourceOverride:
			result.Overridden++
		default:
			result.NoSample++
		}
	}
	return result
}

// writeOutput dispatches on the output extension: GeoJSON keeps the point
// geometry, everything else is written as CSV.
func writeOutput(out dataframe.DataFrame, records []classifier.Record, opts classifier.Options, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		lons := out.Col(opts.LonColumn).Float()
		lats := out.Col(opts.LatColumn).Float()
		return stations.WriteGeoJSONFile(path, records, lons, lats)
	default:
		return stations.WriteCSV(out, path)
	}
}
