package fab

import "testing"

func TestTableDeclare(t *testing.T) {
	tbl := NewTable()

	c1, err := tbl.Declare(Rect(0.24, 0.70))
	if err != nil {
		t.Fatalf("Declare error: %v", err)
	}
	if c1 != "D10" {
		t.Errorf("first code = %q, want D10", c1)
	}

	c2, err := tbl.Declare(Circle(0.6))
	if err != nil {
		t.Fatalf("Declare error: %v", err)
	}
	if c2 != "D11" {
		t.Errorf("second code = %q, want D11", c2)
	}

	// Redeclaring an identical shape returns the same code.
	again, err := tbl.Declare(Rect(0.24, 0.70))
	if err != nil {
		t.Fatalf("Declare error: %v", err)
	}
	if again != c1 {
		t.Errorf("duplicate declaration = %q, want %q", again, c1)
	}

	// A rotated rectangle is a different physical tool.
	rot, err := tbl.Declare(Rect(0.70, 0.24))
	if err != nil {
		t.Fatalf("Declare error: %v", err)
	}
	if rot == c1 {
		t.Error("0.24x0.70 and 0.70x0.24 must get distinct codes")
	}
}

func TestTableDeclareDegenerate(t *testing.T) {
	tbl := NewTable()
	for _, s := range []Shape{Rect(0, 1), Rect(1, -1), Circle(0), {}} {
		if _, err := tbl.Declare(s); err == nil {
			t.Errorf("Declare(%+v) = nil error, want DEGENERATE_GEOMETRY", s)
		}
	}
}

func TestDefinitionBlock(t *testing.T) {
	tbl := NewTable()
	rect, _ := tbl.Declare(Rect(0.24, 0.70))
	circ, _ := tbl.Declare(Circle(1.6))

	got := tbl.DefinitionBlock([]Code{rect, circ})
	want := "%ADD10R,0.2400X0.7000*%\n%ADD11C,1.6000*%\n"
	if got != want {
		t.Errorf("DefinitionBlock = %q, want %q", got, want)
	}

	// Order follows the request, unknown codes are skipped.
	got = tbl.DefinitionBlock([]Code{circ, "D99", rect})
	want = "%ADD11C,1.6000*%\n%ADD10R,0.2400X0.7000*%\n"
	if got != want {
		t.Errorf("DefinitionBlock = %q, want %q", got, want)
	}
}

func TestShapeExpand(t *testing.T) {
	r := Rect(0.5, 0.6).Expand(0.05)
	if r.W != 0.6 || r.H != 0.7 {
		t.Errorf("Expand rect = %gx%g, want 0.6x0.7", r.W, r.H)
	}
	c := Circle(0.6).Expand(0.05)
	if c.D != 0.7 {
		t.Errorf("Expand circle = %g, want 0.7", c.D)
	}
}

func TestTableCodesOrder(t *testing.T) {
	tbl := NewTable()
	a, _ := tbl.Declare(Circle(1))
	b, _ := tbl.Declare(Circle(2))
	c, _ := tbl.Declare(Circle(3))

	codes := tbl.Codes()
	if len(codes) != 3 || codes[0] != a || codes[1] != b || codes[2] != c {
		t.Errorf("Codes() = %v, want declaration order [%s %s %s]", codes, a, b, c)
	}
}
