// Package pipeline provides the core generation pipeline for Copperline.
//
// This package implements the complete build → emit → verify pipeline that
// can be used by the CLI and the preview server. By centralizing this
// logic, we ensure consistent behavior across all entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Assemble the board layout from parameters
//  2. Emit: Generate the Gerber layers, drill file, and schematics
//  3. Verify: Run structural checks over every emitted file
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Params:  fab.DefaultParams(),
//	    Formats: []string{pipeline.FormatSchematicSVG},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lwerner/copperline/pkg/cache"
	"github.com/lwerner/copperline/pkg/errors"
	"github.com/lwerner/copperline/pkg/export"
	"github.com/lwerner/copperline/pkg/fab"
	"github.com/lwerner/copperline/pkg/gerber"
	"github.com/lwerner/copperline/pkg/verify"
)

// Cache TTLs per artifact kind. Fabrication outputs are cheap to keep;
// the hash-based keys make stale entries unreachable anyway.
const (
	TTLFileSet   = 30 * 24 * time.Hour
	TTLSchematic = 30 * 24 * time.Hour
)

// Schematic format constants.
const (
	FormatSchematicSVG = "svg"
	FormatSchematicDOT = "dot"
	FormatSchematicPNG = "png"
)

// ValidFormats is the set of supported schematic output formats.
var ValidFormats = map[string]bool{
	FormatSchematicSVG: true,
	FormatSchematicDOT: true,
	FormatSchematicPNG: true,
}

// Options contains all configuration for the generation pipeline.
// This struct supports JSON serialization for preview-server requests.
type Options struct {
	// Params are the board parameters driving the whole layout. A zero
	// value means the built-in defaults.
	Params fab.Params `json:"params"`

	// Layers restricts Gerber emission to the given extensions (GTL,
	// GBL, ...). Empty means all layers.
	Layers []string `json:"layers,omitempty"`

	// SkipDrill omits the Excellon drill file.
	SkipDrill bool `json:"skip_drill,omitempty"`

	// Formats lists the schematic outputs to render alongside the
	// fabrication files. Empty means no schematic.
	Formats []string `json:"formats,omitempty"`

	// SkipVerify disables the structural checks on emitted files.
	SkipVerify bool `json:"skip_verify,omitempty"`

	// Refresh bypasses the cache and regenerates everything.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the constructed board layout.
	Layout *fab.Layout

	// Files are the generated outputs in emission order.
	Files []export.File

	// ParamsHash is the content hash of the effective parameters. It is
	// the cache identity of the whole file set.
	ParamsHash string

	// Reports holds one verification report per emitted file, in file
	// order. Empty when verification was skipped or the set was cached.
	Reports []verify.Report

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the file set came from cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ComponentCount int
	NetCount       int
	HoleCount      int
	FileCount      int
	BuildTime      time.Duration
	EmitTime       time.Duration
	VerifyTime     time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	FileSetHit bool // Whether the whole file set came from cache
}

// ValidateFormat checks that a schematic format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, dot, png)", format)
	}
	return nil
}

// ValidateFormats checks that all schematic formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLayers checks that every requested layer extension exists.
func ValidateLayers(layers []string) error {
	known := make(map[string]bool)
	for _, l := range gerber.Layers() {
		known[l.Extension] = true
	}
	for _, ext := range layers {
		if !known[ext] {
			return errors.New(errors.ErrCodeInvalidInput, "unknown layer %q", ext)
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Params == (fab.Params{}) {
		o.Params = fab.DefaultParams()
	}
	if err := o.Params.Validate(); err != nil {
		return err
	}
	if err := errors.ValidateBoardName(o.Params.BoardName); err != nil {
		return err
	}
	if err := ValidateLayers(o.Layers); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// selectedLayers resolves the layer subset, preserving emission order.
func (o *Options) selectedLayers() []gerber.Layer {
	all := gerber.Layers()
	if len(o.Layers) == 0 {
		return all
	}
	want := make(map[string]bool, len(o.Layers))
	for _, ext := range o.Layers {
		want[ext] = true
	}
	var out []gerber.Layer
	for _, l := range all {
		if want[l.Extension] {
			out = append(out, l)
		}
	}
	return out
}

// paramsHash computes the cache identity of the effective options: the
// parameters plus everything that changes the emitted set.
func (o *Options) paramsHash() (string, error) {
	payload := struct {
		Params    fab.Params `json:"params"`
		Layers    []string   `json:"layers"`
		SkipDrill bool       `json:"skip_drill"`
		Formats   []string   `json:"formats"`
	}{o.Params, o.Layers, o.SkipDrill, o.Formats}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("hash options: %w", err)
	}
	return cache.Hash(data), nil
}
