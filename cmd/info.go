package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openclimate/urban-classifier/internal/raster"
	"github.com/openclimate/urban-classifier/pkg/lcz"
)

var infoLegend bool

var infoCmd = &cobra.Command{
	Use:   "info [raster]",
	Short: "Show raster metadata and the LCZ legend",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		path = resolveRasterPath(path)

		ds, err := raster.Open(path)
		if err != nil {
			return err
		}
		defer ds.Close() //nolint:errcheck

		formatRasterInfo(os.Stdout, ds.Meta())
		if infoLegend {
			fmt.Fprintln(os.Stdout)
			formatLegend(os.Stdout)
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoLegend, "legend", false, "also print the 17-class LCZ legend")
	rootCmd.AddCommand(infoCmd)
}

func formatRasterInfo(out io.Writer, meta raster.Meta) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Path:\t%s\n", meta.Path)
	_, _ = fmt.Fprintf(w, "Size:\t%d x %d px\n", meta.Width, meta.Height)
	_, _ = fmt.Fprintf(w, "Bands:\t%d\n", meta.Bands)
	_, _ = fmt.Fprintf(w, "Origin:\t(%g, %g)\n", meta.Transform[0], meta.Transform[3])
	_, _ = fmt.Fprintf(w, "Pixel size:\t%g x %g\n", meta.Transform[1], meta.Transform[5])
	if meta.NoData != nil {
		_, _ = fmt.Fprintf(w, "No-data:\t%g\n", *meta.NoData)
	} else {
		_, _ = fmt.Fprintf(w, "No-data:\t(none)\n")
	}
	crs := meta.ProjectionWKT
	if len(crs) > 60 {
		crs = crs[:57] + "..."
	}
	_, _ = fmt.Fprintf(w, "CRS:\t%s\n", crs)
	_ = w.Flush()
}

func formatLegend(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CODE\tNAME\tCATEGORY")
	for code := lcz.MinCode; code <= lcz.MaxCode; code++ {
		z := lcz.FromCode(code)
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", z.Code(), z.FullName(), z.Category())
	}
	_ = w.Flush()
}
