// Package schematic renders human-readable circuit diagrams for a board
// layout: a hand-placed SVG schematic and a Graphviz net-connectivity
// diagram. Both renderers return bytes; writing is the caller's concern.
package schematic

import (
	"bytes"
	"fmt"

	"github.com/lwerner/copperline/pkg/fab"
)

const (
	canvasW = 920
	canvasH = 660

	strokeColor = "#333"
	strokeWidth = 2
	fontFamily  = "sans-serif"

	vccY = 55

	j1BodyX = 20
	j1BodyW = 95
	j1PinX  = j1BodyX + j1BodyW
	j1Stub  = j1PinX + 40

	u1BodyX = 650
	u1BodyW = 190
	u1Stub  = u1BodyX - 40

	c1X, c2X = 270, 360
	r1X, r2X = 455, 545

	capBottom = 145
	r1Bottom  = 260 // SDA rail
	r2Bottom  = 330 // SCL rail

	vccX1 = j1Stub + 40
	vccX2 = u1Stub - 10
)

// headerPin is one row on the J1 symbol: pin number, net label, and the
// fixed y position of its wire.
type headerPin struct {
	num  int
	name string
	y    float64
}

var j1Rows = []headerPin{
	{1, "VCC", 110},
	{2, "GND", 175},
	{3, "SDA", 260},
	{4, "SCL", 330},
	{5, "ENA", 400},
	{6, "RST_N", 460},
	{7, "VIN", 520},
	{8, "(nc)", 580},
}

var u1Rows = []headerPin{
	{18, "VCC", 130},
	{19, "GND", 195},
	{9, "SDA", 260},
	{10, "SCL", 330},
	{11, "ENA", 400},
	{14, "RST_N", 460},
	{12, "VIN", 520},
}

// SVGOption configures schematic SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title        string
	datasheetURL string
	partNumber   string
}

// WithTitle overrides the caption under the diagram.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithDatasheet sets the linked datasheet reference; an empty URL drops
// the link entirely.
func WithDatasheet(url, label string) SVGOption {
	return func(r *svgRenderer) { r.datasheetURL = url; r.partNumber = label }
}

// RenderSVG draws the complete schematic: wires and power symbols behind,
// then the J1 and U1 bodies, then the four passives, then the caption.
// The drawing is fully deterministic for a given layout and option set.
func RenderSVG(l *fab.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{
		title:        l.Params.BoardName + " schematic",
		datasheetURL: "https://www.nxp.com/docs/en/data-sheet/SE050-DATASHEET.pdf",
		partNumber:   "NXP SE050",
	}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf,
		"<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"+
			"<svg xmlns=\"http://www.w3.org/2000/svg\"\n"+
			"     viewBox=\"0 0 %d %d\" width=\"%d\" height=\"%d\"\n"+
			"     font-family=\"%s\"\n"+
			"     stroke=\"%s\" stroke-width=\"%d\"\n"+
			"     fill=\"none\" stroke-linecap=\"round\" stroke-linejoin=\"round\">\n",
		canvasW, canvasH, canvasW, canvasH, fontFamily, strokeColor, strokeWidth)
	fmt.Fprintf(&buf, "  <rect width=\"%d\" height=\"%d\" fill=\"white\" stroke=\"none\"/>\n", canvasW, canvasH)

	drawWires(&buf)
	drawHeader(&buf)
	drawIC(&buf)

	drawCapacitor(&buf, c1X, vccY, capBottom, "C1", "100nF")
	drawCapacitor(&buf, c2X, vccY, capBottom, "C2", "10µF")
	drawResistor(&buf, r1X, vccY, r1Bottom, "R1", "4.7kΩ")
	drawResistor(&buf, r2X, vccY, r2Bottom, "R2", "4.7kΩ")

	text(&buf, canvasW/2, canvasH-28, r.title,
		`font-size="13" text-anchor="middle" fill="#999" stroke="none"`)
	if r.datasheetURL != "" {
		fmt.Fprintf(&buf,
			"  <a href=%q target=\"_blank\"><text x=\"%d\" y=\"%d\" font-size=\"10\" text-anchor=\"middle\" fill=\"#07c\" stroke=\"none\">Datasheet: %s</text></a>\n",
			r.datasheetURL, canvasW/2, canvasH-10, r.partNumber)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func line(buf *bytes.Buffer, x1, y1, x2, y2 float64) {
	fmt.Fprintf(buf, "  <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\"/>\n", x1, y1, x2, y2)
}

func text(buf *bytes.Buffer, x, y float64, content, attrs string) {
	fmt.Fprintf(buf, "  <text x=\"%g\" y=\"%g\" %s>%s</text>\n", x, y, attrs, content)
}

func junction(buf *bytes.Buffer, x, y float64) {
	fmt.Fprintf(buf, "  <circle cx=\"%g\" cy=\"%g\" r=\"3.5\" fill=\"%s\" stroke=\"none\"/>\n", x, y, strokeColor)
}

func vccSymbol(buf *bytes.Buffer, x, y float64) {
	line(buf, x, y, x, y-12)
	line(buf, x-10, y-12, x+10, y-12)
	text(buf, x, y-18, "VCC", `font-size="11" text-anchor="middle" fill="`+strokeColor+`" stroke="none"`)
}

func gndSymbol(buf *bytes.Buffer, x, y float64) {
	line(buf, x, y, x, y+8)
	line(buf, x-10, y+8, x+10, y+8)
	line(buf, x-6, y+13, x+6, y+13)
	line(buf, x-2, y+18, x+2, y+18)
}

func drawWires(buf *bytes.Buffer) {
	// VCC rail with its power symbol.
	line(buf, vccX1, vccY, vccX2, vccY)
	vccSymbol(buf, (vccX1+vccX2)/2, vccY)

	// J1.1 and U1.18 up to the rail.
	line(buf, j1Stub, 110, vccX1, 110)
	line(buf, vccX1, 110, vccX1, vccY)
	junction(buf, vccX1, vccY)
	line(buf, u1Stub, 130, vccX2, 130)
	line(buf, vccX2, 130, vccX2, vccY)
	junction(buf, vccX2, vccY)

	for _, cx := range []float64{c1X, c2X, r1X, r2X} {
		junction(buf, cx, vccY)
	}

	// GND: each endpoint gets its own symbol.
	line(buf, j1Stub, 175, vccX1, 175)
	gndSymbol(buf, vccX1, 175)
	gndSymbol(buf, c1X, capBottom)
	gndSymbol(buf, c2X, capBottom)
	line(buf, u1Stub, 195, vccX2, 195)
	gndSymbol(buf, vccX2, 195)

	// Signal rails, with pull-up junctions on SDA and SCL.
	line(buf, j1Stub, 260, u1Stub, 260)
	junction(buf, r1X, 260)
	line(buf, j1Stub, 330, u1Stub, 330)
	junction(buf, r2X, 330)
	line(buf, j1Stub, 400, u1Stub, 400)
	line(buf, j1Stub, 460, u1Stub, 460)
	line(buf, j1Stub, 520, u1Stub, 520)
}

func drawHeader(buf *bytes.Buffer) {
	yTop := j1Rows[0].y - 25
	yBot := j1Rows[len(j1Rows)-1].y + 25

	fmt.Fprintf(buf, "  <rect x=\"%d\" y=\"%g\" width=\"%d\" height=\"%g\" fill=\"#f8f8f8\" stroke=\"%s\" stroke-width=\"2\"/>\n",
		j1BodyX, yTop, j1BodyW, yBot-yTop, strokeColor)
	text(buf, j1BodyX+j1BodyW/2, yTop-8, "J1",
		`font-size="14" font-weight="bold" text-anchor="middle" fill="`+strokeColor+`" stroke="none"`)
	text(buf, j1BodyX+j1BodyW/2, yTop-22, "8-Pin Header",
		`font-size="10" text-anchor="middle" fill="#999" stroke="none"`)

	for _, p := range j1Rows {
		text(buf, j1BodyX+10, p.y+5, fmt.Sprintf("%d", p.num), `font-size="10" fill="#999" stroke="none"`)
		text(buf, j1BodyX+25, p.y+5, p.name, `font-size="11" fill="`+strokeColor+`" stroke="none"`)
		fmt.Fprintf(buf, "  <circle cx=\"%d\" cy=\"%g\" r=\"4\" fill=\"white\" stroke=\"%s\" stroke-width=\"1.5\"/>\n",
			j1PinX, p.y, strokeColor)
		if p.name != "(nc)" {
			line(buf, j1PinX+4, p.y, j1Stub, p.y)
		}
	}
}

func drawIC(buf *bytes.Buffer) {
	yTop := u1Rows[0].y - 40
	yBot := u1Rows[len(u1Rows)-1].y + 40

	fmt.Fprintf(buf, "  <rect x=\"%d\" y=\"%g\" width=\"%d\" height=\"%g\" fill=\"#f0f0f0\" stroke=\"%s\" stroke-width=\"2\"/>\n",
		u1BodyX, yTop, u1BodyW, yBot-yTop, strokeColor)

	cx := float64(u1BodyX + u1BodyW/2)
	text(buf, cx, yTop+22, "U1",
		`font-size="14" font-weight="bold" text-anchor="middle" fill="`+strokeColor+`" stroke="none"`)
	text(buf, cx, yTop+39, "SE050C1HQ1",
		`font-size="11" text-anchor="middle" fill="#666" stroke="none"`)
	text(buf, cx, yTop+54, "QFN-20",
		`font-size="10" text-anchor="middle" fill="#999" stroke="none"`)

	for _, p := range u1Rows {
		line(buf, u1BodyX, p.y, u1Stub, p.y)
		text(buf, u1Stub+3, p.y+4, fmt.Sprintf("%d", p.num), `font-size="10" fill="#999" stroke="none"`)
		text(buf, u1BodyX+30, p.y+5, p.name, `font-size="11" fill="`+strokeColor+`" stroke="none"`)
	}
}

// drawResistor draws a vertical US-style zigzag resistor between y1 and y2.
func drawResistor(buf *bytes.Buffer, x, y1, y2 float64, designator, value string) {
	const body, amp, n = 48.0, 8.0, 6
	mid := (y1 + y2) / 2
	bt, bb := mid-body/2, mid+body/2
	seg := body / n

	line(buf, x, y1, x, bt)
	pts := fmt.Sprintf("%g,%g", x, bt)
	for i := 1; i < n; i++ {
		dx := amp
		if i%2 == 0 {
			dx = -amp
		}
		pts += fmt.Sprintf(" %g,%g", x+dx, bt+float64(i)*seg)
	}
	pts += fmt.Sprintf(" %g,%g", x, bb)
	fmt.Fprintf(buf, "  <polyline points=%q/>\n", pts)
	line(buf, x, bb, x, y2)

	text(buf, x+14, mid-5, designator, `font-size="12" fill="`+strokeColor+`" stroke="none"`)
	text(buf, x+14, mid+11, value, `font-size="11" fill="#666" stroke="none"`)
}

// drawCapacitor draws a vertical two-plate capacitor between y1 and y2.
func drawCapacitor(buf *bytes.Buffer, x, y1, y2 float64, designator, value string) {
	const gap, pw = 5.0, 10.0
	mid := (y1 + y2) / 2

	line(buf, x, y1, x, mid-gap)
	line(buf, x-pw, mid-gap, x+pw, mid-gap)
	line(buf, x-pw, mid+gap, x+pw, mid+gap)
	line(buf, x, mid+gap, x, y2)

	text(buf, x+16, mid-3, designator, `font-size="12" fill="`+strokeColor+`" stroke="none"`)
	text(buf, x+16, mid+13, value, `font-size="11" fill="#666" stroke="none"`)
}
