package schematic

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/lwerner/copperline/pkg/fab"
)

// DOTOptions configures net-connectivity diagram generation.
type DOTOptions struct {
	// Detailed annotates each component node with its kind and center
	// position. When false, only the reference designator is shown.
	Detailed bool
}

// ToDOT converts the layout's net connectivity to Graphviz DOT format:
// one box node per component, one ellipse node per net, and an edge for
// every pad-to-net membership labeled with the pin name. The result can
// be rendered with [RenderDOTSVG] or [RenderDOTPNG].
func ToDOT(l *fab.Layout, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("graph connectivity {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, c := range l.Components {
		label := c.Ref
		if opts.Detailed {
			label = fmt.Sprintf("%s\n%s (%.1f, %.1f)", c.Ref, kindName(c.Kind), c.Center.X, c.Center.Y)
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", c.Ref, label)
	}

	buf.WriteString("\n")
	for _, n := range l.Nets {
		fmt.Fprintf(&buf, "  %q [shape=ellipse, fillcolor=lightgrey, fontsize=11];\n", "net_"+n.Name)
	}

	buf.WriteString("\n")
	for _, n := range l.Nets {
		for _, p := range n.Pads {
			fmt.Fprintf(&buf, "  %q -- %q [label=%q, fontsize=9];\n",
				p.Component().Ref, "net_"+n.Name, p.Name)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func kindName(k fab.ComponentKind) string {
	switch k {
	case fab.KindIC:
		return "IC"
	case fab.KindPassive:
		return "passive"
	case fab.KindHeader:
		return "header"
	}
	return "component"
}

// RenderDOTSVG renders a DOT graph to SVG using Graphviz.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderDOTPNG renders a DOT graph to PNG using Graphviz.
func RenderDOTPNG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the Graphviz SVG root tag to a zero-origin
// viewBox with explicit pixel dimensions, which embeds cleanly in docs.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
