package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openclimate/urban-classifier/internal/fetcher"
	"github.com/openclimate/urban-classifier/internal/wudapt"
)

var (
	fetchDest   string
	fetchMirror string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the global WUDAPT LCZ raster",
	Long:  "Downloads the global Local Climate Zone map from the WUDAPT mirrors into the local cache, verifying the file before use. An already-verified raster is kept as-is.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dest := fetchDest
		if dest == "" {
			dest = wudapt.DefaultPath()
		}

		mirrors := wudapt.DefaultMirrors()
		if fetchMirror != "" {
			mirrors = []wudapt.Mirror{{Name: "custom", URL: fetchMirror}}
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:    cfg.Fetch.UserAgent,
			Timeout:      time.Duration(cfg.Fetch.TimeoutMins) * time.Minute,
			MaxRetries:   cfg.Fetch.MaxRetries,
			RateLimiters: fetcher.DefaultRateLimiters(),
		})

		if err := wudapt.Download(ctx, f, mirrors, dest); err != nil {
			return err
		}

		zap.L().Info("raster ready", zap.String("path", dest))
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDest, "dest", "", "destination path (default the user cache directory)")
	fetchCmd.Flags().StringVar(&fetchMirror, "mirror", "", "download from this URL instead of the known mirrors")
	rootCmd.AddCommand(fetchCmd)
}
