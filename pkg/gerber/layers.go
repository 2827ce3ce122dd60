package gerber

import (
	"github.com/lwerner/copperline/pkg/fab"
)

// Layer describes one physical layer: its file extension (which downstream
// fabrication tooling uses to infer layer function), the Gerber
// file-function attribute, and its emitter.
type Layer struct {
	Name         string
	Extension    string
	FileFunction string
	Emit         func(*fab.Layout) ([]byte, error)
}

// Layers returns the full layer set in the fixed emission order. The
// extension-to-function mapping is part of the external contract and must
// not change.
func Layers() []Layer {
	return []Layer{
		{"top copper", "GTL", "Copper,L1,Top", TopCopper},
		{"bottom copper", "GBL", "Copper,L2,Bot", BottomCopper},
		{"top soldermask", "GTS", "Soldermask,Top", TopSoldermask},
		{"bottom soldermask", "GBS", "Soldermask,Bot", BottomSoldermask},
		{"top silkscreen", "GTO", "Legend,Top", TopSilkscreen},
		{"board outline", "GKO", "Profile,NP", BoardOutline},
	}
}

// codeSet accumulates aperture codes in first-use order, so each layer's
// declaration block lists exactly the codes that layer uses.
type codeSet struct {
	order []fab.Code
	seen  map[fab.Code]bool
}

func newCodeSet() *codeSet {
	return &codeSet{seen: make(map[fab.Code]bool)}
}

func (s *codeSet) add(codes ...fab.Code) {
	for _, c := range codes {
		if c == "" || s.seen[c] {
			continue
		}
		s.seen[c] = true
		s.order = append(s.order, c)
	}
}

// TopCopper emits the top copper layer: every signal pad and the exposed
// pad flashed with its copper aperture, via flashes, and all routed trace
// segments drawn with the single fixed-width trace tool.
func TopCopper(l *fab.Layout) ([]byte, error) {
	used := newCodeSet()
	for _, p := range l.AllPads() {
		used.add(p.Aperture)
	}
	for _, h := range l.Holes {
		used.add(h.Pad)
	}
	used.add(l.TraceAp)

	w := NewWriter(l.Table)
	w.Header("Copper,L1,Top")
	w.ApertureBlock(used.order)

	for _, p := range l.AllPads() {
		w.Flash(p.Aperture, p.Pos)
	}
	for _, h := range l.Holes {
		if h.Pad != "" {
			w.Flash(h.Pad, h.Pos)
		}
	}

	w.Select(l.TraceAp)
	for _, r := range l.Routes {
		w.Polyline(r)
	}

	w.Footer()
	return w.Bytes()
}

// BottomCopper emits the bottom copper layer: a single ground-pour flash
// covering most of the board plus the via flashes that stitch the pour to
// the top-side ground net.
func BottomCopper(l *fab.Layout) ([]byte, error) {
	used := newCodeSet()
	used.add(l.GroundPourAp)
	for _, h := range l.Holes {
		if h.Plating == fab.PlatingVia {
			used.add(h.Pad)
		}
	}

	w := NewWriter(l.Table)
	w.Header("Copper,L2,Bot")
	w.ApertureBlock(used.order)

	w.Flash(l.GroundPourAp, fab.Point{X: l.Params.BoardWidth / 2, Y: l.Params.BoardHeight / 2})
	for _, h := range l.Holes {
		if h.Plating == fab.PlatingVia && h.Pad != "" {
			w.Flash(h.Pad, h.Pos)
		}
	}

	w.Footer()
	return w.Bytes()
}

// TopSoldermask emits mask relief for every top-side copper feature: one
// dilated flash per pad plus relief for the vias.
func TopSoldermask(l *fab.Layout) ([]byte, error) {
	used := newCodeSet()
	for _, p := range l.AllPads() {
		used.add(p.Mask)
	}
	for _, h := range l.Holes {
		if h.Plating == fab.PlatingVia {
			used.add(h.Mask)
		}
	}

	w := NewWriter(l.Table)
	w.Header("Soldermask,Top")
	w.ApertureBlock(used.order)

	for _, p := range l.AllPads() {
		w.Flash(p.Mask, p.Pos)
	}
	for _, h := range l.Holes {
		if h.Plating == fab.PlatingVia && h.Mask != "" {
			w.Flash(h.Mask, h.Pos)
		}
	}

	w.Footer()
	return w.Bytes()
}

// BottomSoldermask emits relief for the plated holes only: vias and
// through-holes open the mask on both sides, and nothing else reaches the
// bottom side.
func BottomSoldermask(l *fab.Layout) ([]byte, error) {
	used := newCodeSet()
	for _, h := range l.Holes {
		used.add(h.Mask)
	}

	w := NewWriter(l.Table)
	w.Header("Soldermask,Bot")
	w.ApertureBlock(used.order)

	for _, h := range l.Holes {
		if h.Mask != "" {
			w.Flash(h.Mask, h.Pos)
		}
	}

	w.Footer()
	return w.Bytes()
}

// TopSilkscreen emits the legend layer: component body outlines, the IC
// polarity dot, and the reference designator marks. Purely cosmetic,
// derived from component bounding geometry.
func TopSilkscreen(l *fab.Layout) ([]byte, error) {
	used := newCodeSet()
	used.add(l.SilkAp, l.Pin1DotAp)

	w := NewWriter(l.Table)
	w.Header("Legend,Top")
	w.ApertureBlock(used.order)

	for _, c := range l.Components {
		w.Select(l.SilkAp)
		w.Rect(c.Outline)
		if c.Pin1 != nil {
			w.Flash(l.Pin1DotAp, *c.Pin1)
		}
	}

	if len(l.SilkExtras) > 0 {
		w.Select(l.SilkAp)
		for _, r := range l.SilkExtras {
			w.Polyline(r)
		}
	}

	w.Footer()
	return w.Bytes()
}

// BoardOutline emits the mechanical profile layer: one closed rectangle at
// the board's physical extents.
func BoardOutline(l *fab.Layout) ([]byte, error) {
	w := NewWriter(l.Table)
	w.Header("Profile,NP")
	w.ApertureBlock([]fab.Code{l.OutlineAp})

	w.Select(l.OutlineAp)
	w.Rect(fab.Bounds{MinX: 0, MinY: 0, MaxX: l.Params.BoardWidth, MaxY: l.Params.BoardHeight})

	w.Footer()
	return w.Bytes()
}
