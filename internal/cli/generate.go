package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/lwerner/copperline/pkg/errors"
	"github.com/lwerner/copperline/pkg/export"
	"github.com/lwerner/copperline/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	output      string   // output directory
	params      string   // TOML file with board parameter overrides
	layers      []string // layer extension subset (GTL, GBL, ...)
	formats     []string // schematic formats to render alongside
	skipDrill   bool     // omit the Excellon drill file
	skipVerify  bool     // skip structural checks
	noCache     bool     // disable the artifact cache
	refresh     bool     // regenerate even when cached
	interactive bool     // pick layers in a TUI
}

// generateCommand creates the generate command, the main entry point for
// producing a complete fabrication file set.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts
	var layersStr, formatsStr string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the fabrication file set",
		Long: `Generate the Gerber layer files, the Excellon drill file, and optional
schematic renderings for the board, writing them into the output directory
together with a manifest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.layers = parseList(layersStr)
			opts.formats = parseList(formatsStr)
			return c.runGenerate(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "gerbers", "output directory")
	cmd.Flags().StringVarP(&opts.params, "params", "p", "", "TOML file with board parameter overrides")
	cmd.Flags().StringVarP(&layersStr, "layers", "l", "", "layer subset, comma-separated (default: all)")
	cmd.Flags().StringVarP(&formatsStr, "schematic", "s", "", "schematic format(s): svg, dot, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.skipDrill, "no-drill", false, "omit the drill file")
	cmd.Flags().BoolVar(&opts.skipVerify, "no-verify", false, "skip output verification")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "regenerate even when cached")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick layers interactively")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts *generateOpts) error {
	logger := loggerFromContext(ctx)

	if err := errors.ValidateOutputDir(opts.output); err != nil {
		return err
	}
	params, err := loadParams(opts.params)
	if err != nil {
		return err
	}

	if opts.interactive {
		layers, ok, err := pickLayers()
		if err != nil {
			return err
		}
		if !ok {
			printInfo("Aborted")
			return nil
		}
		opts.layers = layers
	}

	runner := c.newRunner(opts.noCache)
	defer runner.Close()

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Params:     params,
		Layers:     opts.layers,
		SkipDrill:  opts.skipDrill,
		Formats:    opts.formats,
		SkipVerify: opts.skipVerify,
		Refresh:    opts.refresh,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Generated %d files", len(result.Files)))

	for _, rep := range result.Reports {
		for _, problem := range rep.Problems {
			printWarning("%s: %s", rep.Name, problem)
		}
	}

	manifest := export.NewManifest(params.BoardName, result.Files)
	if err := export.WriteFileSet(opts.output, result.Files, manifest); err != nil {
		return err
	}

	printSuccess("Wrote %s", opts.output)
	for _, f := range result.Files {
		printFile(f.Name)
	}
	if result.CacheInfo.FileSetHit {
		printDetail("file set from cache (run with --refresh to regenerate)")
	} else {
		printStats(result.Stats.ComponentCount, result.Stats.NetCount, result.Stats.HoleCount, false)
	}
	return nil
}

// pickLayers runs the interactive layer picker. The second return value
// reports whether the user confirmed a selection.
func pickLayers() ([]string, bool, error) {
	model, err := tea.NewProgram(NewLayerPickerModel()).Run()
	if err != nil {
		return nil, false, err
	}
	picker, ok := model.(LayerPickerModel)
	if !ok || !picker.Confirmed {
		return nil, false, nil
	}
	return picker.Selected(), true, nil
}
