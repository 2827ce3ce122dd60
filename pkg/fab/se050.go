package fab

import (
	"github.com/lwerner/copperline/pkg/errors"
)

// Fixed passive placements. Placement anchors are part of the
// hand-specified layout, not of the tunable parameter set.
var (
	c1Center = Point{X: 7.0, Y: 10.4}
	c2Center = Point{X: 7.0, Y: 9.0}
	r1Center = Point{X: 9.2, Y: 7.5}
	r2Center = Point{X: 10.6, Y: 7.5}
)

// netlist binds pads to nets. Every pad appears in exactly one net; NC
// collects the pads that are mechanically present but carry no signal
// (J1.8 and the unused QFN pins).
var netlist = []struct {
	name string
	pads []string
}{
	{"VCC", []string{"J1.1", "C2.1", "C1.1", "U1.18", "R1.2", "R2.2"}},
	{"GND", []string{"J1.2", "C2.2", "C1.2", "U1.19", "U1.EP"}},
	{"SDA", []string{"J1.3", "R1.1", "U1.9"}},
	{"SCL", []string{"J1.4", "R2.1", "U1.10"}},
	{"ENA", []string{"J1.5", "U1.11"}},
	{"RST_N", []string{"J1.6", "U1.14"}},
	{"VIN", []string{"J1.7", "U1.12"}},
	{"NC", []string{"J1.8",
		"U1.1", "U1.2", "U1.3", "U1.4", "U1.5", "U1.6", "U1.7", "U1.8",
		"U1.13", "U1.15", "U1.16", "U1.17", "U1.20"}},
}

// segments lists the routed trace legs in emission order. The first-axis
// strategy is a deliberate manual tie-break per segment; there is no
// automatic obstacle-avoiding routing.
var segments = []struct {
	from, to string
	strategy Strategy
}{
	// VCC
	{"J1.1", "C2.1", VerticalFirst},
	{"C2.1", "C1.1", VerticalFirst},
	{"C1.1", "U1.18", HorizontalFirst},
	{"R1.2", "C1.1", HorizontalFirst},
	{"R2.2", "R1.2", HorizontalFirst},
	// GND
	{"J1.2", "C2.2", VerticalFirst},
	{"C2.2", "C1.2", VerticalFirst},
	{"C1.2", "U1.19", HorizontalFirst},
	{"U1.19", "U1.EP", HorizontalFirst},
	// SDA
	{"J1.3", "R1.1", VerticalFirst},
	{"R1.1", "U1.9", HorizontalFirst},
	// SCL
	{"J1.4", "R2.1", VerticalFirst},
	{"R2.1", "U1.10", HorizontalFirst},
	// ENA, RST_N, VIN
	{"J1.5", "U1.11", VerticalFirst},
	{"J1.6", "U1.14", VerticalFirst},
	{"J1.7", "U1.12", VerticalFirst},
}

// BuildLayout assembles the complete SE050 breakout layout from the given
// parameters: components with their pads, the aperture table, net
// associations, routed trace segments, and drill holes.
//
// Construction is pure and deterministic: identical parameters always yield
// an identical layout, which is what makes the emitted file set
// reproducible byte for byte.
func BuildLayout(p Params) (*Layout, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	t := NewTable()
	l := &Layout{Params: p, Table: t}

	// Copper apertures, declared in the fixed order that pins the D-code
	// assignment for every file.
	qfnV, err := t.Declare(Rect(p.QFNPadW, p.QFNPadH))
	if err != nil {
		return nil, err
	}
	qfnH, err := t.Declare(Rect(p.QFNPadH, p.QFNPadW))
	if err != nil {
		return nil, err
	}
	ep, err := t.Declare(Rect(p.QFNEPSize, p.QFNEPSize))
	if err != nil {
		return nil, err
	}
	passive, err := t.Declare(Rect(p.PassivePadW, p.PassivePadH))
	if err != nil {
		return nil, err
	}
	th, err := t.Declare(Circle(p.THPadD))
	if err != nil {
		return nil, err
	}
	via, err := t.Declare(Circle(p.ViaPadD))
	if err != nil {
		return nil, err
	}
	if l.TraceAp, err = t.Declare(Circle(p.TraceWidth)); err != nil {
		return nil, err
	}
	if l.OutlineAp, err = t.Declare(Circle(p.OutlineWidth)); err != nil {
		return nil, err
	}
	if l.SilkAp, err = t.Declare(Circle(p.SilkWidth)); err != nil {
		return nil, err
	}
	if l.Pin1DotAp, err = t.Declare(Circle(p.Pin1DotD)); err != nil {
		return nil, err
	}

	// Soldermask apertures, dilated from their copper counterparts.
	maskV, err := t.Declare(Rect(p.QFNPadW, p.QFNPadH).Expand(p.MaskExpand))
	if err != nil {
		return nil, err
	}
	maskH, err := t.Declare(Rect(p.QFNPadH, p.QFNPadW).Expand(p.MaskExpand))
	if err != nil {
		return nil, err
	}
	maskEP, err := t.Declare(Rect(p.QFNEPSize, p.QFNEPSize).Expand(p.MaskExpand))
	if err != nil {
		return nil, err
	}
	maskPassive, err := t.Declare(Rect(p.PassivePadW, p.PassivePadH).Expand(p.MaskExpand))
	if err != nil {
		return nil, err
	}
	maskTH, err := t.Declare(Circle(p.THPadD).Expand(p.MaskExpand))
	if err != nil {
		return nil, err
	}
	maskVia, err := t.Declare(Circle(p.ViaPadD).Expand(p.MaskExpand))
	if err != nil {
		return nil, err
	}

	if l.GroundPourAp, err = t.Declare(Rect(p.BoardWidth-2*p.GroundPourInset, p.BoardHeight-2*p.GroundPourInset)); err != nil {
		return nil, err
	}

	// Components, in placement order.
	u1, err := newIC("U1", p.ICCenter(), 5, p.QFNPitch, p.QFNPadOffset, p.QFNBodySize/2, qfnV, qfnH, ep, maskV, maskH, maskEP)
	if err != nil {
		return nil, err
	}
	l.Components = append(l.Components, u1)

	for _, pc := range []struct {
		ref    string
		center Point
	}{
		{"C1", c1Center}, {"C2", c2Center}, {"R1", r1Center}, {"R2", r2Center},
	} {
		c, err := newPassive(pc.ref, pc.center, p.PassiveSpan, AxisHorizontal, p.PassiveBodyW, p.PassiveBodyH, passive, maskPassive)
		if err != nil {
			return nil, err
		}
		l.Components = append(l.Components, c)
	}

	j1, err := newHeader("J1", p.HeaderOrigin(), p.HeaderPins, p.HeaderPitch, p.HeaderMargin, th, maskTH)
	if err != nil {
		return nil, err
	}
	l.Components = append(l.Components, j1)

	// Nets.
	for _, n := range netlist {
		net := Net{Name: n.name}
		for _, ref := range n.pads {
			pad, err := l.padByQualifiedName(ref)
			if err != nil {
				return nil, err
			}
			if pad.Net != "" {
				return nil, errors.New(errors.ErrCodeUnknownNet, "pad %s assigned to both %s and %s", ref, pad.Net, n.name)
			}
			pad.Net = n.name
			net.Pads = append(net.Pads, pad)
		}
		l.Nets = append(l.Nets, net)
	}

	// Routes.
	for _, s := range segments {
		from, err := l.padByQualifiedName(s.from)
		if err != nil {
			return nil, err
		}
		to, err := l.padByQualifiedName(s.to)
		if err != nil {
			return nil, err
		}
		if from.Net != to.Net {
			return nil, errors.New(errors.ErrCodeUnknownNet, "segment %s -> %s crosses nets %s and %s", s.from, s.to, from.Net, to.Net)
		}
		l.Routes = append(l.Routes, RouteBetween(from.Pos, to.Pos, s.strategy))
	}

	// Holes: GND vias around the exposed pad, header through-holes, then
	// the corner mounting holes. The order fixes the soldermask and drill
	// emission order.
	ic := p.ICCenter()
	for _, d := range []Point{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		l.Holes = append(l.Holes, Hole{
			Pos:      Point{X: ic.X + d.X*p.ViaOffset, Y: ic.Y + d.Y*p.ViaOffset},
			Diameter: p.ViaDrill,
			Plating:  PlatingVia,
			Pad:      via,
			Mask:     maskVia,
		})
	}
	for _, pad := range j1.Pads() {
		l.Holes = append(l.Holes, Hole{
			Pos:      pad.Pos,
			Diameter: p.THDrill,
			Plating:  PlatingThrough,
			Mask:     maskTH,
		})
	}
	for _, d := range []Point{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		l.Holes = append(l.Holes, Hole{
			Pos: Point{
				X: p.MountInset + d.X*(p.BoardWidth-2*p.MountInset),
				Y: p.MountInset + d.Y*(p.BoardHeight-2*p.MountInset),
			},
			Diameter: p.MountDrill,
			Plating:  PlatingNone,
		})
	}

	// Reference designator mark for U1 (a small cross above the package).
	l.SilkExtras = []Route{
		{{X: ic.X - 0.3, Y: ic.Y + 2.0}, {X: ic.X + 0.3, Y: ic.Y + 2.0}},
		{{X: ic.X, Y: ic.Y + 1.7}, {X: ic.X, Y: ic.Y + 2.3}},
	}

	if err := l.validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// padByQualifiedName resolves "REF.PIN" ("U1.EP", "J1.3") to a pad.
func (l *Layout) padByQualifiedName(name string) (*Pad, error) {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return l.Pad(name[:i], name[i+1:])
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "malformed pad reference %q", name)
}
