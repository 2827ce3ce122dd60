package fab

import (
	"math"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/lwerner/copperline/pkg/errors"
)

// Params is the immutable configuration for one board revision: dimensions,
// pad geometries, pitches, clearances, and drill sizes. All lengths are
// millimeters.
//
// The fixed component set and net list are not configurable; Params only
// tunes the numeric constants of the hand-specified layout, which keeps
// generation testable with alternate board parameters without any
// process-wide state.
type Params struct {
	BoardName   string  `toml:"board_name"`
	BoardWidth  float64 `toml:"board_width"`
	BoardHeight float64 `toml:"board_height"`

	// QFN package (U1)
	ICCenterX    float64 `toml:"ic_center_x"`
	ICCenterY    float64 `toml:"ic_center_y"`
	QFNPadW      float64 `toml:"qfn_pad_w"`
	QFNPadH      float64 `toml:"qfn_pad_h"`
	QFNEPSize    float64 `toml:"qfn_ep_size"`
	QFNPitch     float64 `toml:"qfn_pitch"`
	QFNPadOffset float64 `toml:"qfn_pad_offset"`
	QFNBodySize  float64 `toml:"qfn_body_size"`

	// 0402 passives (C1, C2, R1, R2)
	PassivePadW  float64 `toml:"passive_pad_w"`
	PassivePadH  float64 `toml:"passive_pad_h"`
	PassiveSpan  float64 `toml:"passive_span"`
	PassiveBodyW float64 `toml:"passive_body_w"`
	PassiveBodyH float64 `toml:"passive_body_h"`

	// Header (J1)
	HeaderPins    int     `toml:"header_pins"`
	HeaderPitch   float64 `toml:"header_pitch"`
	HeaderOriginX float64 `toml:"header_origin_x"`
	HeaderOriginY float64 `toml:"header_origin_y"`
	HeaderMargin  float64 `toml:"header_margin"`

	// Tool widths and pad diameters
	THPadD       float64 `toml:"th_pad_d"`
	ViaPadD      float64 `toml:"via_pad_d"`
	TraceWidth   float64 `toml:"trace_width"`
	OutlineWidth float64 `toml:"outline_width"`
	SilkWidth    float64 `toml:"silk_width"`
	Pin1DotD     float64 `toml:"pin1_dot_d"`
	MaskExpand   float64 `toml:"mask_expand"`

	// Drill diameters
	ViaDrill   float64 `toml:"via_drill"`
	THDrill    float64 `toml:"th_drill"`
	MountDrill float64 `toml:"mount_drill"`

	// Placement offsets
	MountInset      float64 `toml:"mount_inset"`
	ViaOffset       float64 `toml:"via_offset"`
	GroundPourInset float64 `toml:"ground_pour_inset"`
}

// DefaultParams returns the parameter set of the SE050C1HQ1 breakout board:
// 20x20 mm, QFN-20 at the board center, four 0402 passives, and an 8-pin
// 2.54 mm header.
func DefaultParams() Params {
	return Params{
		BoardName:   "SE050_breakout",
		BoardWidth:  20.0,
		BoardHeight: 20.0,

		ICCenterX:    10.0,
		ICCenterY:    10.0,
		QFNPadW:      0.24,
		QFNPadH:      0.70,
		QFNEPSize:    1.70,
		QFNPitch:     0.4,
		QFNPadOffset: 1.40,
		QFNBodySize:  3.0,

		PassivePadW:  0.50,
		PassivePadH:  0.60,
		PassiveSpan:  0.70,
		PassiveBodyW: 1.10,
		PassiveBodyH: 0.70,

		HeaderPins:    8,
		HeaderPitch:   2.54,
		HeaderOriginX: 1.11,
		HeaderOriginY: 3.0,
		HeaderMargin:  1.5,

		THPadD:       1.60,
		ViaPadD:      0.60,
		TraceWidth:   0.20,
		OutlineWidth: 0.05,
		SilkWidth:    0.15,
		Pin1DotD:     0.30,
		MaskExpand:   0.05,

		ViaDrill:   0.3,
		THDrill:    1.0,
		MountDrill: 2.2,

		MountInset:      2.0,
		ViaOffset:       0.5,
		GroundPourInset: 0.5,
	}
}

// LoadParams reads a TOML override file on top of the defaults. Only the
// numeric parameters of the fixed layout can be overridden; the file cannot
// add components or nets.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()

	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, errors.Wrap(errors.ErrCodeNotFound, err, "read params %s", path)
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return Params{}, errors.Wrap(errors.ErrCodeInvalidParams, err, "parse params %s", path)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// ICCenter returns the IC anchor point.
func (p Params) ICCenter() Point { return Point{X: p.ICCenterX, Y: p.ICCenterY} }

// HeaderOrigin returns the first header pin position.
func (p Params) HeaderOrigin() Point { return Point{X: p.HeaderOriginX, Y: p.HeaderOriginY} }

// Validate rejects parameter sets that would produce degenerate or
// non-finite geometry.
func (p Params) Validate() error {
	if err := errors.ValidateBoardName(p.BoardName); err != nil {
		return err
	}

	positive := map[string]float64{
		"board_width":   p.BoardWidth,
		"board_height":  p.BoardHeight,
		"qfn_pad_w":     p.QFNPadW,
		"qfn_pad_h":     p.QFNPadH,
		"qfn_ep_size":   p.QFNEPSize,
		"qfn_pitch":     p.QFNPitch,
		"qfn_body_size": p.QFNBodySize,
		"passive_pad_w": p.PassivePadW,
		"passive_pad_h": p.PassivePadH,
		"passive_span":  p.PassiveSpan,
		"header_pitch":  p.HeaderPitch,
		"th_pad_d":      p.THPadD,
		"via_pad_d":     p.ViaPadD,
		"trace_width":   p.TraceWidth,
		"outline_width": p.OutlineWidth,
		"silk_width":    p.SilkWidth,
		"pin1_dot_d":    p.Pin1DotD,
		"via_drill":     p.ViaDrill,
		"th_drill":      p.THDrill,
		"mount_drill":   p.MountDrill,
	}
	for name, v := range positive {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidParams, "%s is not finite", name)
		}
		if v <= 0 {
			return errors.New(errors.ErrCodeInvalidParams, "%s must be positive, got %g", name, v)
		}
	}

	if p.HeaderPins <= 0 {
		return errors.New(errors.ErrCodeInvalidParams, "header_pins must be positive, got %d", p.HeaderPins)
	}
	if p.MaskExpand < 0 {
		return errors.New(errors.ErrCodeInvalidParams, "mask_expand must be non-negative, got %g", p.MaskExpand)
	}
	if p.GroundPourInset*2 >= p.BoardWidth || p.GroundPourInset*2 >= p.BoardHeight {
		return errors.New(errors.ErrCodeInvalidParams, "ground_pour_inset %g leaves no pour area", p.GroundPourInset)
	}
	return nil
}
