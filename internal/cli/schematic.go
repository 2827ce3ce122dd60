package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lwerner/copperline/pkg/errors"
	"github.com/lwerner/copperline/pkg/fab"
	"github.com/lwerner/copperline/pkg/pipeline"
	"github.com/lwerner/copperline/pkg/schematic"
)

// schematicOpts holds the command-line flags for the schematic command.
type schematicOpts struct {
	output   string // output file path
	params   string // TOML file with board parameter overrides
	format   string // svg, dot, or png
	detailed bool   // annotate netlist nodes with placement data
	title    string // caption override (svg only)
}

// schematicCommand creates the schematic command for rendering the
// circuit diagram without generating the fabrication files.
func (c *CLI) schematicCommand() *cobra.Command {
	var opts schematicOpts

	cmd := &cobra.Command{
		Use:   "schematic",
		Short: "Render the circuit schematic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			return c.runSchematic(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <board>_schematic.<format>)")
	cmd.Flags().StringVarP(&opts.params, "params", "p", "", "TOML file with board parameter overrides")
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatSchematicSVG, "output format: svg, dot, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "annotate netlist nodes with placement data")
	cmd.Flags().StringVar(&opts.title, "title", "", "caption override (svg only)")

	return cmd
}

func (c *CLI) runSchematic(ctx context.Context, opts *schematicOpts) error {
	params, err := loadParams(opts.params)
	if err != nil {
		return err
	}
	layout, err := fab.BuildLayout(params)
	if err != nil {
		return err
	}

	var data []byte
	switch opts.format {
	case pipeline.FormatSchematicSVG:
		var svgOpts []schematic.SVGOption
		if opts.title != "" {
			svgOpts = append(svgOpts, schematic.WithTitle(opts.title))
		}
		data = schematic.RenderSVG(layout, svgOpts...)
	case pipeline.FormatSchematicDOT:
		data = []byte(schematic.ToDOT(layout, schematic.DOTOptions{Detailed: opts.detailed}))
	case pipeline.FormatSchematicPNG:
		dot := schematic.ToDOT(layout, schematic.DOTOptions{Detailed: opts.detailed})
		data, err = schematic.RenderDOTPNG(ctx, dot)
		if err != nil {
			return err
		}
	}

	path := opts.output
	if path == "" {
		path = params.BoardName + "_schematic." + opts.format
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "create output directory")
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}

	printSuccess("Wrote %s (%d bytes)", path, len(data))
	return nil
}
