package fab

import (
	"fmt"
	"strings"

	"github.com/lwerner/copperline/pkg/errors"
)

// ShapeKind distinguishes the supported aperture geometries.
type ShapeKind int

const (
	// ShapeRect is a rectangular aperture with width and height.
	ShapeRect ShapeKind = iota + 1
	// ShapeCircle is a circular aperture with a diameter.
	ShapeCircle
)

// String returns a human-readable kind name.
func (k ShapeKind) String() string {
	switch k {
	case ShapeRect:
		return "rectangle"
	case ShapeCircle:
		return "circle"
	}
	return "unknown"
}

// Shape is an immutable aperture definition: a rectangle (W x H) or a
// circle (D). Dimensions are millimeters.
type Shape struct {
	Kind ShapeKind
	W, H float64 // rectangle only
	D    float64 // circle only
}

// Rect returns a rectangular shape.
func Rect(w, h float64) Shape { return Shape{Kind: ShapeRect, W: w, H: h} }

// Circle returns a circular shape.
func Circle(d float64) Shape { return Shape{Kind: ShapeCircle, D: d} }

// Expand returns the shape grown by margin on every side. Used to derive
// soldermask apertures from their copper counterparts.
func (s Shape) Expand(margin float64) Shape {
	switch s.Kind {
	case ShapeRect:
		return Rect(s.W+2*margin, s.H+2*margin)
	case ShapeCircle:
		return Circle(s.D + 2*margin)
	}
	return s
}

// Validate rejects degenerate geometry (zero or negative dimensions).
func (s Shape) Validate() error {
	switch s.Kind {
	case ShapeRect:
		if s.W <= 0 || s.H <= 0 {
			return errors.New(errors.ErrCodeDegenerateGeometry, "rectangle %gx%g has non-positive dimensions", s.W, s.H)
		}
	case ShapeCircle:
		if s.D <= 0 {
			return errors.New(errors.ErrCodeDegenerateGeometry, "circle diameter %g is non-positive", s.D)
		}
	default:
		return errors.New(errors.ErrCodeDegenerateGeometry, "unknown shape kind %d", s.Kind)
	}
	return nil
}

// Code is an aperture D-code, e.g. "D10". Codes are assigned by the table
// and only meaningful within a file that declares them.
type Code string

// firstCode is the lowest D-code available for aperture definitions;
// D01-D09 are reserved function codes in RS-274X.
const firstCode = 10

// Table is the aperture registry. It deduplicates shapes by exact
// dimensional match and assigns each distinct shape a stable sequential
// D-code starting at D10.
//
// The full fixed aperture set is declared up front during layout
// construction, before any emitter runs, so the table is effectively
// immutable while emitters read it.
type Table struct {
	order  []Code
	shapes map[Code]Shape
	codes  map[Shape]Code
}

// NewTable creates an empty aperture table.
func NewTable() *Table {
	return &Table{
		shapes: make(map[Code]Shape),
		codes:  make(map[Shape]Code),
	}
}

// Declare registers a shape and returns its code. Declaring a shape that is
// dimensionally identical to an existing one returns the existing code;
// equivalence is exact, with no tolerance-based merging, so distinct
// physical tools are never conflated. Degenerate shapes are rejected.
func (t *Table) Declare(s Shape) (Code, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	if code, ok := t.codes[s]; ok {
		return code, nil
	}
	code := Code(fmt.Sprintf("D%d", firstCode+len(t.order)))
	t.order = append(t.order, code)
	t.shapes[code] = s
	t.codes[s] = code
	return code, nil
}

// Lookup returns the shape registered under code.
func (t *Table) Lookup(code Code) (Shape, bool) {
	s, ok := t.shapes[code]
	return s, ok
}

// Codes returns all declared codes in declaration order.
func (t *Table) Codes() []Code {
	out := make([]Code, len(t.order))
	copy(out, t.order)
	return out
}

// DefinitionBlock renders the %ADD declaration preamble for the requested
// codes, in the order requested. Codes not present in the table are
// skipped; the consistency validator is responsible for catching uses of
// codes that were never declared.
func (t *Table) DefinitionBlock(codes []Code) string {
	var b strings.Builder
	for _, code := range codes {
		s, ok := t.shapes[code]
		if !ok {
			continue
		}
		num := strings.TrimPrefix(string(code), "D")
		switch s.Kind {
		case ShapeRect:
			fmt.Fprintf(&b, "%%ADD%sR,%.4fX%.4f*%%\n", num, s.W, s.H)
		case ShapeCircle:
			fmt.Fprintf(&b, "%%ADD%sC,%.4f*%%\n", num, s.D)
		}
	}
	return b.String()
}
