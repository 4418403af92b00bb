package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openclimate/urban-classifier/internal/classifier"
	"github.com/openclimate/urban-classifier/internal/raster"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the classifier over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rasterPath := resolveRasterPath(classifyRaster)
		cl, err := classifier.New(rasterPath)
		if err != nil {
			return err
		}
		defer cl.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(cl),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&classifyRaster, "raster", "", "LCZ raster path (default from config, then the fetch cache)")
	rootCmd.AddCommand(serveCmd)
}

// pointClassifier is the classifier surface the HTTP handlers need.
type pointClassifier interface {
	ClassifyPoints(ctx context.Context, ids []string, lons, lats []float64, overrides map[string]int) ([]classifier.Record, classifier.Stats, error)
	Meta() raster.Meta
}

func newRouter(cl pointClassifier) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", handleHealth)
	r.Get("/v1/raster", handleRasterMeta(cl))
	r.Post("/v1/classify", handleClassify(cl))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleRasterMeta(cl pointClassifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meta := cl.Meta()
		writeJSON(w, http.StatusOK, map[string]any{
			"path":       meta.Path,
			"width":      meta.Width,
			"height":     meta.Height,
			"bands":      meta.Bands,
			"transform":  meta.Transform,
			"projection": meta.ProjectionWKT,
		})
	}
}

type classifyRequest struct {
	Stations []struct {
		StationID string  `json:"station_id"`
		Longitude float64 `json:"longitude"`
		Latitude  float64 `json:"latitude"`
	} `json:"stations"`
	Overrides map[string]int `json:"overrides,omitempty"`
}

type classifiedStation struct {
	StationID string `json:"station_id"`
	Code      int    `json:"lcz_code"`
	Name      string `json:"lcz_name"`
	Category  string `json:"lcz_category"`
	Source    string `json:"lcz_source"`
}

type classifyResponse struct {
	Stations []classifiedStation `json:"stations"`
	Stats    struct {
		Stations   int `json:"stations"`
		Sampled    int `json:"sampled"`
		Overridden int `json:"overridden"`
		NoSample   int `json:"no_sample"`
	} `json:"stats"`
}

func handleClassify(cl pointClassifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.Stations) == 0 {
			writeJSONError(w, http.StatusBadRequest, "stations is required")
			return
		}

		ids := make([]string, len(req.Stations))
		lons := make([]float64, len(req.Stations))
		lats := make([]float64, len(req.Stations))
		for i, s := range req.Stations {
			ids[i] = s.StationID
			lons[i] = s.Longitude
			lats[i] = s.Latitude
		}

		records, stats, err := cl.ClassifyPoints(r.Context(), ids, lons, lats, req.Overrides)
		if err != nil {
			var invalid *classifier.InvalidOverrideError
			if errors.As(err, &invalid) {
				writeJSONError(w, http.StatusBadRequest, invalid.Error())
				return
			}
			zap.L().Error("classify request failed", zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "classification failed")
			return
		}

		var resp classifyResponse
		resp.Stations = make([]classifiedStation, len(records))
		for i, rec := range records {
			resp.Stations[i] = classifiedStation{
				StationID: rec.StationID,
				Code:      rec.Zone.Code(),
				Name:      rec.Zone.FullName(),
				Category:  rec.Zone.Category().String(),
				Source:    string(rec.Source),
			}
		}
		resp.Stats.Stations = stats.Stations
		resp.Stats.Sampled = stats.Sampled
		resp.Stats.Overridden = stats.Overridden
		resp.Stats.NoSample = stats.NoSample

		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
