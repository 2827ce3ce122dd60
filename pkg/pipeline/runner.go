package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lwerner/copperline/pkg/cache"
	"github.com/lwerner/copperline/pkg/errors"
	"github.com/lwerner/copperline/pkg/excellon"
	"github.com/lwerner/copperline/pkg/export"
	"github.com/lwerner/copperline/pkg/fab"
	"github.com/lwerner/copperline/pkg/schematic"
	"github.com/lwerner/copperline/pkg/verify"
)

// DrillExtension is the file extension of the Excellon drill file.
const DrillExtension = "DRL"

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the preview server use this to avoid duplicating
// caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → emit → verify pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	hash, err := opts.paramsHash()
	if err != nil {
		return nil, err
	}
	result := &Result{ParamsHash: hash}

	// Try the whole file set from cache first.
	cacheKey := r.Keyer.FileSetKey(hash)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			files, err := export.DecodeFiles(data)
			if err == nil {
				result.Files = files
				result.Stats.FileCount = len(files)
				result.CacheInfo.FileSetHit = true
				opts.Logger.Info("file set from cache", "files", len(files))
				return result, nil
			}
		}
	}

	// Stage 1: Build
	buildStart := time.Now()
	layout, err := fab.BuildLayout(opts.Params)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Layout = layout
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.ComponentCount = len(layout.Components)
	result.Stats.NetCount = len(layout.Nets)
	result.Stats.HoleCount = len(layout.Holes)

	opts.Logger.Info("built layout",
		"components", len(layout.Components),
		"nets", len(layout.Nets),
		"holes", len(layout.Holes),
		"duration", result.Stats.BuildTime)

	// Stage 2: Emit
	emitStart := time.Now()
	files, err := r.emit(ctx, layout, &opts)
	if err != nil {
		return nil, fmt.Errorf("emit: %w", err)
	}
	result.Files = files
	result.Stats.EmitTime = time.Since(emitStart)
	result.Stats.FileCount = len(files)

	opts.Logger.Info("emitted files",
		"count", len(files),
		"duration", result.Stats.EmitTime)

	// Stage 3: Verify
	if !opts.SkipVerify {
		verifyStart := time.Now()
		reports, err := verifyFiles(files)
		result.Reports = reports
		result.Stats.VerifyTime = time.Since(verifyStart)
		if err != nil {
			return result, fmt.Errorf("verify: %w", err)
		}
		opts.Logger.Info("verified files",
			"count", len(reports),
			"duration", result.Stats.VerifyTime)
	}

	// Refresh bypasses the read above, never the write: a refreshed run
	// replaces the cached entry with the set it just produced.
	if data, err := export.EncodeFiles(files); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, TTLFileSet)
	}

	return result, nil
}

// emit generates every requested output for the layout: the selected
// Gerber layers, the drill file, and the schematic formats.
func (r *Runner) emit(ctx context.Context, l *fab.Layout, opts *Options) ([]export.File, error) {
	name := opts.Params.BoardName
	var files []export.File

	for _, layer := range opts.selectedLayers() {
		data, err := layer.Emit(l)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "emit %s", layer.Name)
		}
		files = append(files, export.File{Name: name + "." + layer.Extension, Data: data})
	}

	if !opts.SkipDrill {
		data, err := excellon.Drill(l)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "emit drill file")
		}
		files = append(files, export.File{Name: name + "." + DrillExtension, Data: data})
	}

	for _, format := range opts.Formats {
		f, err := renderSchematic(ctx, l, name, format)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	return files, nil
}

func renderSchematic(ctx context.Context, l *fab.Layout, name, format string) (export.File, error) {
	switch format {
	case FormatSchematicSVG:
		return export.File{Name: name + "_schematic.svg", Data: schematic.RenderSVG(l)}, nil
	case FormatSchematicDOT:
		dot := schematic.ToDOT(l, schematic.DOTOptions{})
		return export.File{Name: name + "_netlist.dot", Data: []byte(dot)}, nil
	case FormatSchematicPNG:
		dot := schematic.ToDOT(l, schematic.DOTOptions{})
		data, err := schematic.RenderDOTPNG(ctx, dot)
		if err != nil {
			return export.File{}, errors.Wrap(errors.ErrCodeInternal, err, "render netlist png")
		}
		return export.File{Name: name + "_netlist.png", Data: data}, nil
	}
	return export.File{}, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
}

// verifyFiles checks the fabrication files in the set. Schematic outputs
// are skipped; verification covers only Gerber and drill files.
func verifyFiles(files []export.File) ([]verify.Report, error) {
	byName := make(map[string][]byte, len(files))
	var order []string
	for _, f := range files {
		if !isFabFile(f.Name) {
			continue
		}
		byName[f.Name] = f.Data
		order = append(order, f.Name)
	}
	return verify.All(byName, order)
}

func isFabFile(name string) bool {
	switch ext(name) {
	case "svg", "dot", "png":
		return false
	}
	return true
}

func ext(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return ""
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
