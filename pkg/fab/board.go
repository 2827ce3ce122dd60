package fab

import (
	"fmt"

	"github.com/lwerner/copperline/pkg/errors"
)

// ComponentKind distinguishes the supported package families.
type ComponentKind int

const (
	// KindIC is a perimeter-gridded package with an exposed center pad.
	KindIC ComponentKind = iota + 1
	// KindPassive is a two-terminal part with pads at a fixed span.
	KindPassive
	// KindHeader is a linear pin array at a fixed pitch.
	KindHeader
)

// Axis selects the orientation of a two-terminal passive.
type Axis int

const (
	// AxisHorizontal places the two pads left and right of the center.
	AxisHorizontal Axis = iota
	// AxisVertical places the two pads below and above the center.
	AxisVertical
)

// Plating classifies a drill hole.
type Plating int

const (
	// PlatingNone is a non-plated mounting hole.
	PlatingNone Plating = iota
	// PlatingVia is a plated via connecting copper layers.
	PlatingVia
	// PlatingThrough is a plated component through-hole.
	PlatingThrough
)

// String returns the drill-file comment name for the plating class.
func (p Plating) String() string {
	switch p {
	case PlatingVia:
		return "via"
	case PlatingThrough:
		return "through-hole"
	}
	return "non-plated"
}

// Pad is a single copper landing: a position bound to an aperture, a net
// name, and its owning component. Pads are immutable once the layout is
// constructed.
type Pad struct {
	Name     string // pin identifier within the component ("1".."20", "EP")
	Pos      Point
	Net      string
	Aperture Code // copper flash aperture
	Mask     Code // soldermask relief aperture

	owner *Component
}

// Component returns the owning component (back-reference; the component
// owns the pad, not the other way around).
func (p *Pad) Component() *Component {
	return p.owner
}

// Ref returns the fully qualified pad name, e.g. "U1.18".
func (p *Pad) Ref() string {
	if p.owner == nil {
		return p.Name
	}
	return p.owner.Ref + "." + p.Name
}

// Bounds is an axis-aligned rectangle used for silkscreen outlines.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Component is one placed part. It owns its pads exclusively; pad lifetime
// ends with the component, and the set is fixed once the layout is built.
type Component struct {
	Ref     string
	Kind    ComponentKind
	Center  Point
	Outline Bounds  // silkscreen body outline
	Pin1    *Point  // polarity marker position (IC only)
	pads    []*Pad
}

// Pads returns the component's pads in pin order.
func (c *Component) Pads() []*Pad {
	return c.pads
}

// Pad returns the pad with the given pin name.
func (c *Component) Pad(name string) (*Pad, bool) {
	for _, p := range c.pads {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

func (c *Component) addPad(p Pad) *Pad {
	p.owner = c
	c.pads = append(c.pads, &p)
	return c.pads[len(c.pads)-1]
}

// Hole is a drill position with a diameter and plating classification.
// Plated holes carry the aperture codes for their copper flash and
// soldermask relief; non-plated holes carry neither.
type Hole struct {
	Pos      Point
	Diameter float64
	Plating  Plating
	Pad      Code // copper flash aperture, empty when nothing is flashed
	Mask     Code // soldermask relief aperture, empty for NPTH
}

// Net is a named set of pads treated as one electrical node. The NC net
// is the exception: it collects pads that have no connection at all.
type Net struct {
	Name string
	Pads []*Pad
}

// Layout is the single source of truth for one board revision: all
// components, nets, holes, and routed trace segments. It is constructed
// once per generation run and read-only thereafter.
type Layout struct {
	Params Params
	Table  *Table

	Components []*Component
	Nets       []Net // ordered by first declaration
	Holes      []Hole
	Routes     []Route // emission order

	// Standalone aperture codes shared by the emitters.
	TraceAp      Code
	OutlineAp    Code
	SilkAp       Code
	Pin1DotAp    Code
	GroundPourAp Code

	// Extra silkscreen strokes beyond component outlines (reference
	// designator marks).
	SilkExtras []Route
}

// Component returns the component with the given reference designator.
func (l *Layout) Component(ref string) (*Component, bool) {
	for _, c := range l.Components {
		if c.Ref == ref {
			return c, true
		}
	}
	return nil, false
}

// Pad resolves "REF.PIN" to a pad, e.g. "U1.18".
func (l *Layout) Pad(ref, pin string) (*Pad, error) {
	c, ok := l.Component(ref)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no component %q", ref)
	}
	p, ok := c.Pad(pin)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no pad %s.%s", ref, pin)
	}
	return p, nil
}

// Net returns the net with the given name.
func (l *Layout) Net(name string) (Net, bool) {
	for _, n := range l.Nets {
		if n.Name == name {
			return n, true
		}
	}
	return Net{}, false
}

// AllPads returns every pad of every component in deterministic order:
// components in placement order, pads in pin order.
func (l *Layout) AllPads() []*Pad {
	var out []*Pad
	for _, c := range l.Components {
		out = append(out, c.pads...)
	}
	return out
}

// validate checks the invariants the emitters rely on: finite pad and hole
// coordinates, signal pads bound to a net, positive drill diameters, and
// routes that are strictly orthogonal.
func (l *Layout) validate() error {
	for _, p := range l.AllPads() {
		if _, err := EncodeCoord(p.Pos.X); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "pad %s x", p.Ref())
		}
		if _, err := EncodeCoord(p.Pos.Y); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "pad %s y", p.Ref())
		}
		if p.Net == "" {
			return errors.New(errors.ErrCodeUnknownNet, "pad %s has no net", p.Ref())
		}
	}
	for i, h := range l.Holes {
		if h.Diameter <= 0 {
			return errors.New(errors.ErrCodeDegenerateGeometry, "hole %d: diameter %g", i, h.Diameter)
		}
		if _, err := EncodeCoord(h.Pos.X); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "hole %d x", i)
		}
		if _, err := EncodeCoord(h.Pos.Y); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "hole %d y", i)
		}
	}
	for i, r := range l.Routes {
		if len(r) < 2 {
			return errors.New(errors.ErrCodeDegenerateGeometry, "route %d has %d waypoints", i, len(r))
		}
		for j := 1; j < len(r); j++ {
			dx := r[j].X != r[j-1].X
			dy := r[j].Y != r[j-1].Y
			if dx == dy { // diagonal or zero-length segment
				return errors.New(errors.ErrCodeDegenerateGeometry,
					"route %d segment %d is not a pure horizontal or vertical move", i, j)
			}
		}
	}
	return nil
}

// newIC builds a perimeter-gridded IC package. Pins walk the four sides
// counter-clockwise starting at the bottom-left: bottom left-to-right,
// left bottom-to-top, top right-to-left, right top-to-bottom. The exposed
// pad is a single pad named "EP" at the package center.
//
// This walk is the fixed convention for this package; it is not a general
// rule for other package sizes.
func newIC(ref string, center Point, pinsPerSide int, pitch, padOffset, bodyHalf float64, vert, horiz, ep, maskV, maskH, maskEP Code) (*Component, error) {
	if pinsPerSide <= 0 {
		return nil, errors.New(errors.ErrCodeDegenerateGeometry, "%s: pinsPerSide %d", ref, pinsPerSide)
	}
	pin1 := Point{X: center.X - bodyHalf - 0.4, Y: center.Y - bodyHalf - 0.4}
	c := &Component{
		Ref:    ref,
		Kind:   KindIC,
		Center: center,
		Outline: Bounds{
			MinX: center.X - bodyHalf, MinY: center.Y - bodyHalf,
			MaxX: center.X + bodyHalf, MaxY: center.Y + bodyHalf,
		},
		Pin1: &pin1,
	}

	half := float64(pinsPerSide-1) / 2
	pin := 1
	for i := 0; i < pinsPerSide; i++ { // bottom, L->R
		c.addPad(Pad{
			Name:     fmt.Sprintf("%d", pin),
			Pos:      Point{X: center.X + (float64(i)-half)*pitch, Y: center.Y - padOffset},
			Aperture: vert, Mask: maskV,
		})
		pin++
	}
	for i := 0; i < pinsPerSide; i++ { // left, B->T
		c.addPad(Pad{
			Name:     fmt.Sprintf("%d", pin),
			Pos:      Point{X: center.X - padOffset, Y: center.Y + (float64(i)-half)*pitch},
			Aperture: horiz, Mask: maskH,
		})
		pin++
	}
	for i := 0; i < pinsPerSide; i++ { // top, R->L
		c.addPad(Pad{
			Name:     fmt.Sprintf("%d", pin),
			Pos:      Point{X: center.X - (float64(i)-half)*pitch, Y: center.Y + padOffset},
			Aperture: vert, Mask: maskV,
		})
		pin++
	}
	for i := 0; i < pinsPerSide; i++ { // right, T->B
		c.addPad(Pad{
			Name:     fmt.Sprintf("%d", pin),
			Pos:      Point{X: center.X + padOffset, Y: center.Y - (float64(i)-half)*pitch},
			Aperture: horiz, Mask: maskH,
		})
		pin++
	}
	c.addPad(Pad{Name: "EP", Pos: center, Aperture: ep, Mask: maskEP})
	return c, nil
}

// newPassive builds a two-terminal part with pads symmetric about center
// along the given axis, separated by span center-to-center. Pins are "1"
// (left or bottom) and "2".
func newPassive(ref string, center Point, span float64, axis Axis, bodyW, bodyH float64, ap, mask Code) (*Component, error) {
	if span <= 0 {
		return nil, errors.New(errors.ErrCodeDegenerateGeometry, "%s: span %g", ref, span)
	}
	c := &Component{
		Ref:    ref,
		Kind:   KindPassive,
		Center: center,
		Outline: Bounds{
			MinX: center.X - bodyW/2, MinY: center.Y - bodyH/2,
			MaxX: center.X + bodyW/2, MaxY: center.Y + bodyH/2,
		},
	}
	half := span / 2
	if axis == AxisVertical {
		c.addPad(Pad{Name: "1", Pos: Point{X: center.X, Y: center.Y - half}, Aperture: ap, Mask: mask})
		c.addPad(Pad{Name: "2", Pos: Point{X: center.X, Y: center.Y + half}, Aperture: ap, Mask: mask})
	} else {
		c.addPad(Pad{Name: "1", Pos: Point{X: center.X - half, Y: center.Y}, Aperture: ap, Mask: mask})
		c.addPad(Pad{Name: "2", Pos: Point{X: center.X + half, Y: center.Y}, Aperture: ap, Mask: mask})
	}
	return c, nil
}

// newHeader builds an n-pin connector along the X axis at a fixed pitch
// starting at origin. Pin "1" sits at the origin.
func newHeader(ref string, origin Point, pins int, pitch, bodyMargin float64, ap, mask Code) (*Component, error) {
	if pins <= 0 || pitch <= 0 {
		return nil, errors.New(errors.ErrCodeDegenerateGeometry, "%s: %d pins at pitch %g", ref, pins, pitch)
	}
	lastX := origin.X + float64(pins-1)*pitch
	c := &Component{
		Ref:    ref,
		Kind:   KindHeader,
		Center: Point{X: (origin.X + lastX) / 2, Y: origin.Y},
		Outline: Bounds{
			MinX: origin.X - bodyMargin, MinY: origin.Y - bodyMargin,
			MaxX: lastX + bodyMargin, MaxY: origin.Y + bodyMargin,
		},
	}
	for i := 0; i < pins; i++ {
		c.addPad(Pad{
			Name:     fmt.Sprintf("%d", i+1),
			Pos:      Point{X: origin.X + float64(i)*pitch, Y: origin.Y},
			Aperture: ap, Mask: mask,
		})
	}
	return c, nil
}
