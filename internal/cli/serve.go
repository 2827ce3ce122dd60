package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/lwerner/copperline/pkg/cache"
	"github.com/lwerner/copperline/pkg/export"
	"github.com/lwerner/copperline/pkg/fab"
	"github.com/lwerner/copperline/pkg/gerber"
	"github.com/lwerner/copperline/pkg/pipeline"
	"github.com/lwerner/copperline/pkg/schematic"
)

// serveCommand creates the serve command for running the preview server.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, redisAddr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP preview server",
		Long: `Serve the generation pipeline over HTTP: POST board parameters to
/api/generate and receive the complete file set as JSON. With --redis the
artifact cache is shared across server instances.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, redisAddr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for a shared cache (host:port)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, redisAddr string, noCache bool) error {
	backend, err := serveCache(ctx, redisAddr, noCache)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(backend, nil, c.Logger)
	defer runner.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServerHandler(runner, c.Logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	c.Logger.Info("preview server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func serveCache(ctx context.Context, redisAddr string, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		return cache.NewRedisCache(ctx, redisAddr)
	}
	return newCache(false), nil
}

// generateResponse is the JSON body returned by /api/generate. File data
// is base64-encoded by the standard JSON encoding of byte slices.
type generateResponse struct {
	ParamsHash string          `json:"params_hash"`
	Cached     bool            `json:"cached"`
	Manifest   export.Manifest `json:"manifest"`
	Files      []export.File   `json:"files"`
}

// newServerHandler builds the preview server's route tree.
func newServerHandler(runner *pipeline.Runner, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/layers", func(w http.ResponseWriter, req *http.Request) {
		type layerInfo struct {
			Name         string `json:"name"`
			Extension    string `json:"extension"`
			FileFunction string `json:"file_function"`
		}
		var layers []layerInfo
		for _, l := range gerber.Layers() {
			layers = append(layers, layerInfo{l.Name, l.Extension, l.FileFunction})
		}
		writeJSON(w, http.StatusOK, layers)
	})

	r.Post("/api/generate", func(w http.ResponseWriter, req *http.Request) {
		var opts pipeline.Options
		if err := json.NewDecoder(req.Body).Decode(&opts); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		opts.Logger = logger
		if opts.Params == (fab.Params{}) {
			opts.Params = fab.DefaultParams()
		}

		result, err := runner.Execute(req.Context(), opts)
		if err != nil {
			writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, generateResponse{
			ParamsHash: result.ParamsHash,
			Cached:     result.CacheInfo.FileSetHit,
			Manifest:   export.NewManifest(opts.Params.BoardName, result.Files),
			Files:      result.Files,
		})
	})

	r.Get("/api/schematic.svg", func(w http.ResponseWriter, req *http.Request) {
		layout, err := fab.BuildLayout(fab.DefaultParams())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(schematic.RenderSVG(layout))
	})

	r.Get("/api/netlist.svg", func(w http.ResponseWriter, req *http.Request) {
		layout, err := fab.BuildLayout(fab.DefaultParams())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		dot := schematic.ToDOT(layout, schematic.DOTOptions{
			Detailed: req.URL.Query().Get("detailed") == "true",
		})
		data, err := schematic.RenderDOTSVG(req.Context(), dot)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
