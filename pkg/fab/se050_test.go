package fab

import (
	"reflect"
	"testing"
)

func TestBuildLayoutDeterministic(t *testing.T) {
	a, err := BuildLayout(DefaultParams())
	if err != nil {
		t.Fatalf("BuildLayout error: %v", err)
	}
	b, err := BuildLayout(DefaultParams())
	if err != nil {
		t.Fatalf("BuildLayout error: %v", err)
	}

	if !reflect.DeepEqual(a.Table.Codes(), b.Table.Codes()) {
		t.Error("aperture code assignment differs between identical builds")
	}
	if !reflect.DeepEqual(a.Routes, b.Routes) {
		t.Error("routes differ between identical builds")
	}
	if len(a.Holes) != len(b.Holes) {
		t.Error("hole sets differ between identical builds")
	}
}

func TestBuildLayoutComponents(t *testing.T) {
	l, err := BuildLayout(DefaultParams())
	if err != nil {
		t.Fatalf("BuildLayout error: %v", err)
	}

	if len(l.Components) != 6 {
		t.Fatalf("components = %d, want 6 (U1, C1, C2, R1, R2, J1)", len(l.Components))
	}

	u1, ok := l.Component("U1")
	if !ok {
		t.Fatal("U1 missing")
	}
	if got := len(u1.Pads()); got != 21 {
		t.Errorf("U1 pads = %d, want 21 (20 perimeter + EP)", got)
	}

	j1, ok := l.Component("J1")
	if !ok {
		t.Fatal("J1 missing")
	}
	if got := len(j1.Pads()); got != 8 {
		t.Errorf("J1 pads = %d, want 8", got)
	}
}

func TestQFNPinWalk(t *testing.T) {
	l, err := BuildLayout(DefaultParams())
	if err != nil {
		t.Fatalf("BuildLayout error: %v", err)
	}

	// Counter-clockwise from bottom-left: pin 1 bottom-left, pin 6 at the
	// bottom of the left side, pin 18 mid-right.
	tests := []struct {
		pin  string
		want Point
	}{
		{"1", Point{9.2, 8.6}},    // bottom side, leftmost
		{"3", Point{10.0, 8.6}},   // bottom side, center
		{"6", Point{8.6, 9.2}},    // left side, bottom
		{"9", Point{8.6, 10.4}},   // left side, fourth up
		{"13", Point{10.0, 11.4}}, // top side, center
		{"18", Point{11.4, 10.0}}, // right side, center
		{"EP", Point{10.0, 10.0}},
	}
	for _, tt := range tests {
		p, err := l.Pad("U1", tt.pin)
		if err != nil {
			t.Fatalf("Pad(U1, %s): %v", tt.pin, err)
		}
		if !almostEqual(p.Pos, tt.want) {
			t.Errorf("U1.%s at %v, want %v", tt.pin, p.Pos, tt.want)
		}
	}
}

func almostEqual(a, b Point) bool {
	const eps = 1e-9
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx < eps && dx > -eps && dy < eps && dy > -eps
}

func TestPassivePads(t *testing.T) {
	l, err := BuildLayout(DefaultParams())
	if err != nil {
		t.Fatalf("BuildLayout error: %v", err)
	}

	// Two pads symmetric about the center, 0.70 mm apart.
	p1, err := l.Pad("C1", "1")
	if err != nil {
		t.Fatal(err)
	}
	p2, err := l.Pad("C1", "2")
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(p1.Pos, Point{6.65, 10.4}) || !almostEqual(p2.Pos, Point{7.35, 10.4}) {
		t.Errorf("C1 pads at %v / %v", p1.Pos, p2.Pos)
	}
}

func TestHeaderPads(t *testing.T) {
	l, err := BuildLayout(DefaultParams())
	if err != nil {
		t.Fatalf("BuildLayout error: %v", err)
	}

	p1, err := l.Pad("J1", "1")
	if err != nil {
		t.Fatal(err)
	}
	p8, err := l.Pad("J1", "8")
	if err != nil {
		t.Fatal(err)
	}
	if !almostEqual(p1.Pos, Point{1.11, 3.0}) {
		t.Errorf("J1.1 at %v, want (1.11, 3.0)", p1.Pos)
	}
	if !almostEqual(p8.Pos, Point{1.11 + 7*2.54, 3.0}) {
		t.Errorf("J1.8 at %v", p8.Pos)
	}
}

func TestNets(t *testing.T) {
	l, err := BuildLayout(DefaultParams())
	if err != nil {
		t.Fatalf("BuildLayout error: %v", err)
	}

	// Every pad belongs to exactly one net.
	for _, p := range l.AllPads() {
		if p.Net == "" {
			t.Errorf("pad %s has no net", p.Ref())
		}
	}

	gnd, ok := l.Net("GND")
	if !ok {
		t.Fatal("GND net missing")
	}
	if len(gnd.Pads) != 5 {
		t.Errorf("GND has %d pads, want 5", len(gnd.Pads))
	}

	ep, err := l.Pad("U1", "EP")
	if err != nil {
		t.Fatal(err)
	}
	if ep.Net != "GND" {
		t.Errorf("EP net = %q, want GND", ep.Net)
	}

	// The unconnected pins collect under NC: J1.8 plus the 13 unused QFN
	// pins. Leaving any of them netless would fail layout validation.
	nc, ok := l.Net("NC")
	if !ok {
		t.Fatal("NC net missing")
	}
	if len(nc.Pads) != 14 {
		t.Errorf("NC has %d pads, want 14", len(nc.Pads))
	}
	for _, pin := range []string{"1", "8", "13", "20"} {
		p, err := l.Pad("U1", pin)
		if err != nil {
			t.Fatal(err)
		}
		if p.Net != "NC" {
			t.Errorf("U1.%s net = %q, want NC", pin, p.Net)
		}
	}
}

func TestHoles(t *testing.T) {
	l, err := BuildLayout(DefaultParams())
	if err != nil {
		t.Fatalf("BuildLayout error: %v", err)
	}

	var vias, th, npth int
	for _, h := range l.Holes {
		switch h.Plating {
		case PlatingVia:
			vias++
			if h.Pad == "" || h.Mask == "" {
				t.Error("via holes need copper and mask apertures")
			}
		case PlatingThrough:
			th++
		case PlatingNone:
			npth++
			if h.Pad != "" || h.Mask != "" {
				t.Error("NPTH holes must not carry flash apertures")
			}
		}
	}
	if vias != 4 || th != 8 || npth != 4 {
		t.Errorf("holes = %d vias, %d TH, %d NPTH; want 4, 8, 4", vias, th, npth)
	}
}

func TestRoutesOrthogonal(t *testing.T) {
	l, err := BuildLayout(DefaultParams())
	if err != nil {
		t.Fatalf("BuildLayout error: %v", err)
	}
	if len(l.Routes) != 16 {
		t.Errorf("routes = %d, want 16", len(l.Routes))
	}
	for i, r := range l.Routes {
		for j := 1; j < len(r); j++ {
			dx := r[j].X != r[j-1].X
			dy := r[j].Y != r[j-1].Y
			if dx == dy {
				t.Errorf("route %d segment %d is not orthogonal: %v -> %v", i, j, r[j-1], r[j])
			}
		}
	}
}

func TestBuildLayoutRejectsBadParams(t *testing.T) {
	p := DefaultParams()
	p.TraceWidth = 0
	if _, err := BuildLayout(p); err == nil {
		t.Error("zero trace width should be rejected")
	}

	p = DefaultParams()
	p.BoardName = "../evil"
	if _, err := BuildLayout(p); err == nil {
		t.Error("unsafe board name should be rejected")
	}
}
