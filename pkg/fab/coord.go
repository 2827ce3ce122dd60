// Package fab contains the core fabrication model for Copperline: the
// fixed-point coordinate encoder, the aperture table, the board layout model
// (components, pads, nets, holes), and the Manhattan router.
//
// The package is purely computational. Building a layout and querying it has
// no side effects, and an assembled [Layout] is treated as immutable: every
// emitter reads the same model, which is what guarantees that independently
// serialized layer files agree on physical geometry.
package fab

import (
	"math"
	"strconv"

	"github.com/lwerner/copperline/pkg/errors"
)

// CoordScale is the number of fixed-point units per millimeter.
// Matches the Gerber coordinate format %FSLAX36Y36*% (6 decimal places),
// so one unit is 1e-6 mm.
const CoordScale = 1_000_000

// EncodeCoord converts a millimeter value to its fixed-point integer
// representation at [CoordScale] resolution.
//
// Rounding is half-to-even, applied here and nowhere else: two emissions of
// the same logical point always encode to the same integer. Non-finite input
// indicates a layout construction bug and is the only error condition.
func EncodeCoord(mm float64) (int64, error) {
	if math.IsNaN(mm) || math.IsInf(mm, 0) {
		return 0, errors.New(errors.ErrCodeInvalidCoordinate, "non-finite coordinate: %v", mm)
	}
	return int64(math.RoundToEven(mm * CoordScale)), nil
}

// DecodeCoord converts a fixed-point integer back to millimeters.
// It is the inverse of [EncodeCoord] up to the 1e-6 mm resolution.
func DecodeCoord(units int64) float64 {
	return float64(units) / CoordScale
}

// FormatCoord renders a millimeter value as the decimal digit string used in
// Gerber coordinate data (no sign suppression beyond strconv defaults).
func FormatCoord(mm float64) (string, error) {
	units, err := EncodeCoord(mm)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(units, 10), nil
}
