package excellon

import (
	"strings"
	"testing"

	"github.com/lwerner/copperline/pkg/fab"
)

func layoutWithHoles(t *testing.T, holes []fab.Hole) *fab.Layout {
	t.Helper()
	l, err := fab.BuildLayout(fab.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	l.Holes = holes
	return l
}

func TestPlanAssignsToolsByDiameter(t *testing.T) {
	l := layoutWithHoles(t, []fab.Hole{
		{Pos: fab.Point{X: 1, Y: 1}, Diameter: 1.0, Plating: fab.PlatingThrough},
		{Pos: fab.Point{X: 2, Y: 2}, Diameter: 0.3, Plating: fab.PlatingVia},
		{Pos: fab.Point{X: 3, Y: 3}, Diameter: 0.3, Plating: fab.PlatingVia},
	})

	tools, holes, err := Plan(l)
	if err != nil {
		t.Fatal(err)
	}
	if len(tools) != 2 {
		t.Fatalf("tools = %d, want 2 (shared diameters share a tool)", len(tools))
	}
	if tools[0].Diameter != 0.3 || tools[1].Diameter != 1.0 {
		t.Errorf("tool order = %v, want ascending diameter", tools)
	}
	if len(holes[1]) != 2 || len(holes[2]) != 1 {
		t.Errorf("hole grouping = %d/%d, want 2/1", len(holes[1]), len(holes[2]))
	}
}

func TestDrillDefaultBoard(t *testing.T) {
	l, err := fab.BuildLayout(fab.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	data, err := Drill(l)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)

	if !strings.HasPrefix(s, "M48\n") {
		t.Error("drill file must open with M48")
	}
	if !strings.HasSuffix(s, "M30\n") {
		t.Error("drill file must end with M30")
	}
	for _, want := range []string{
		"FMAT,2\n",
		"METRIC,TZ\n",
		"T1C0.300\n",
		"T2C1.000\n",
		"T3C2.200\n",
		"%\n",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("missing %q", want)
		}
	}

	// 4 vias + 8 header pins + 4 mounting holes.
	if got := strings.Count(s, "\nX"); got != 16 {
		t.Errorf("hole count = %d, want 16", got)
	}
	// First via sits below-left of the IC center.
	if !strings.Contains(s, "X9.5000Y9.5000\n") {
		t.Error("missing via at (9.5, 9.5)")
	}
	// Mounting holes at the 2 mm corner inset.
	if !strings.Contains(s, "X18.0000Y18.0000\n") {
		t.Error("missing mounting hole at (18, 18)")
	}
}

func TestDrillToolSectionsOrdered(t *testing.T) {
	l, err := fab.BuildLayout(fab.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	data, err := Drill(l)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)

	header := strings.Index(s, "%\n")
	t1 := strings.Index(s, "\nT1\n")
	t2 := strings.Index(s, "\nT2\n")
	t3 := strings.Index(s, "\nT3\n")
	if !(header < t1 && t1 < t2 && t2 < t3) {
		t.Errorf("tool sections out of order: %%=%d T1=%d T2=%d T3=%d", header, t1, t2, t3)
	}
}

func TestDrillRejectsBadHoles(t *testing.T) {
	l := layoutWithHoles(t, []fab.Hole{
		{Pos: fab.Point{X: 1, Y: 1}, Diameter: 0},
	})
	if _, err := Drill(l); err == nil {
		t.Error("zero diameter should be rejected")
	}
}
