// Package excellon emits the Excellon drill file for a board layout.
//
// One file carries every hole on the board, plated and non-plated alike.
// Like the Gerber emitters, Drill is a pure function from layout to bytes.
package excellon

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/lwerner/copperline/pkg/errors"
	"github.com/lwerner/copperline/pkg/fab"
)

// Tool is one drill bit: a sequential tool number bound to a diameter.
type Tool struct {
	Number   int
	Diameter float64
}

// Code returns the Excellon tool code, e.g. "T1".
func (t Tool) Code() string {
	return fmt.Sprintf("T%d", t.Number)
}

// Plan groups the layout's holes by drill diameter. Tool numbers are
// assigned in ascending diameter order starting at T1, so the tool table
// is stable regardless of hole declaration order.
func Plan(l *fab.Layout) ([]Tool, map[int][]fab.Hole, error) {
	byDiameter := make(map[float64][]fab.Hole)
	for i, h := range l.Holes {
		if h.Diameter <= 0 || math.IsNaN(h.Diameter) || math.IsInf(h.Diameter, 0) {
			return nil, nil, errors.New(errors.ErrCodeDegenerateGeometry,
				"hole %d: diameter %g", i, h.Diameter)
		}
		byDiameter[h.Diameter] = append(byDiameter[h.Diameter], h)
	}

	diameters := make([]float64, 0, len(byDiameter))
	for d := range byDiameter {
		diameters = append(diameters, d)
	}
	sort.Float64s(diameters)

	tools := make([]Tool, 0, len(diameters))
	holes := make(map[int][]fab.Hole, len(diameters))
	for i, d := range diameters {
		t := Tool{Number: i + 1, Diameter: d}
		tools = append(tools, t)
		holes[t.Number] = byDiameter[d]
	}
	return tools, holes, nil
}

// Drill emits the complete drill file: M48 header with metric decimal
// format and the tool table, then per-tool hole coordinates, then M30.
// Coordinates are plain decimal millimeters with four fractional digits,
// matching the METRIC,TZ declaration.
func Drill(l *fab.Layout) ([]byte, error) {
	tools, holes, err := Plan(l)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("M48\n")
	buf.WriteString(";DRILL file\n")
	buf.WriteString(";FORMAT={-:-/ absolute / metric / decimal}\n")
	buf.WriteString("FMAT,2\n")
	buf.WriteString("METRIC,TZ\n")
	for _, t := range tools {
		fmt.Fprintf(&buf, "%sC%.3f\n", t.Code(), t.Diameter)
	}
	buf.WriteString("%\n")

	for _, t := range tools {
		fmt.Fprintf(&buf, "%s\n", t.Code())
		for _, h := range holes[t.Number] {
			if math.IsNaN(h.Pos.X) || math.IsInf(h.Pos.X, 0) ||
				math.IsNaN(h.Pos.Y) || math.IsInf(h.Pos.Y, 0) {
				return nil, errors.New(errors.ErrCodeInvalidCoordinate,
					"%s hole at non-finite position", h.Plating)
			}
			fmt.Fprintf(&buf, "X%.4fY%.4f\n", h.Pos.X, h.Pos.Y)
		}
	}

	buf.WriteString("M30\n")
	return buf.Bytes(), nil
}
