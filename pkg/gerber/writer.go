// Package gerber emits RS-274X layer files for a board layout.
//
// Each layer emitter is a pure function from the immutable layout to a
// self-contained byte slice: a fixed-point format declaration, the file
// function and polarity attributes, an aperture block restricted to the
// apertures that layer uses, the draw/flash operations, and the M02
// terminator. Nothing here touches the file system; writing is the
// caller's responsibility.
package gerber

import (
	"bytes"
	"fmt"

	"github.com/lwerner/copperline/pkg/fab"
)

// Writer builds one Gerber file. Coordinate encoding errors are sticky: the
// first failure is retained and reported by Bytes, so emit code can stay
// free of per-operation error plumbing.
type Writer struct {
	buf   bytes.Buffer
	table *fab.Table
	err   error
}

// NewWriter creates a writer backed by the layout's aperture table.
func NewWriter(t *fab.Table) *Writer {
	return &Writer{table: t}
}

// Header writes the format declaration, unit declaration, and file
// attributes. The %FSLAX36Y36*% token is the literal string downstream
// tools match on; it must open the file.
func (w *Writer) Header(fileFunction string) {
	w.buf.WriteString("%FSLAX36Y36*%\n")
	w.buf.WriteString("%MOMM*%\n")
	fmt.Fprintf(&w.buf, "%%TF.FileFunction,%s*%%\n", fileFunction)
	w.buf.WriteString("%TF.FilePolarity,Positive*%\n")
}

// ApertureBlock writes the %ADD declarations for the given codes, in order.
func (w *Writer) ApertureBlock(codes []fab.Code) {
	w.buf.WriteString(w.table.DefinitionBlock(codes))
}

// Select writes an aperture-select operation.
func (w *Writer) Select(code fab.Code) {
	fmt.Fprintf(&w.buf, "%s*\n", code)
}

// Flash selects an aperture and stamps it at p (D03).
func (w *Writer) Flash(code fab.Code, p fab.Point) {
	w.Select(code)
	w.coordOp(p, "D03")
}

// MoveTo writes a move operation (D02) to p.
func (w *Writer) MoveTo(p fab.Point) {
	w.coordOp(p, "D02")
}

// DrawTo writes a linear draw operation (D01) to p.
func (w *Writer) DrawTo(p fab.Point) {
	w.coordOp(p, "D01")
}

// Polyline draws a route: one move followed by a draw per waypoint.
// Routes with fewer than two points are skipped.
func (w *Writer) Polyline(r fab.Route) {
	if len(r) < 2 {
		return
	}
	w.MoveTo(r[0])
	for _, p := range r[1:] {
		w.DrawTo(p)
	}
}

// Rect draws a closed rectangle along the bounds.
func (w *Writer) Rect(b fab.Bounds) {
	w.Polyline(fab.Route{
		{X: b.MinX, Y: b.MinY},
		{X: b.MaxX, Y: b.MinY},
		{X: b.MaxX, Y: b.MaxY},
		{X: b.MinX, Y: b.MaxY},
		{X: b.MinX, Y: b.MinY},
	})
}

// Footer writes the end-of-program marker.
func (w *Writer) Footer() {
	w.buf.WriteString("M02*\n")
}

// Bytes returns the accumulated file, or the first encoding error.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

func (w *Writer) coordOp(p fab.Point, op string) {
	x, err := fab.FormatCoord(p.X)
	if err != nil {
		w.fail(err)
		return
	}
	y, err := fab.FormatCoord(p.Y)
	if err != nil {
		w.fail(err)
		return
	}
	fmt.Fprintf(&w.buf, "X%sY%s%s*\n", x, y, op)
}

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}
