package gerber

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/lwerner/copperline/pkg/fab"
)

func buildTestLayout(t *testing.T) *fab.Layout {
	t.Helper()
	l, err := fab.BuildLayout(fab.DefaultParams())
	if err != nil {
		t.Fatalf("BuildLayout error: %v", err)
	}
	return l
}

func TestLayersStructure(t *testing.T) {
	l := buildTestLayout(t)

	for _, layer := range Layers() {
		data, err := layer.Emit(l)
		if err != nil {
			t.Fatalf("%s: emit error: %v", layer.Name, err)
		}
		s := string(data)

		if !strings.HasPrefix(s, "%FSLAX36Y36*%\n") {
			t.Errorf("%s: missing format declaration", layer.Name)
		}
		if !strings.HasSuffix(s, "M02*\n") {
			t.Errorf("%s: missing terminator", layer.Name)
		}
		if !strings.Contains(s, "%TF.FileFunction,"+layer.FileFunction+"*%") {
			t.Errorf("%s: missing file function %q", layer.Name, layer.FileFunction)
		}
	}
}

var (
	declRe = regexp.MustCompile(`%ADD(\d+)[RC],`)
	useRe  = regexp.MustCompile(`(?m)^D(\d+)\*$`)
)

func TestLayersApertureConsistency(t *testing.T) {
	l := buildTestLayout(t)

	for _, layer := range Layers() {
		data, err := layer.Emit(l)
		if err != nil {
			t.Fatalf("%s: emit error: %v", layer.Name, err)
		}

		declared := map[string]bool{}
		for _, m := range declRe.FindAllStringSubmatch(string(data), -1) {
			if declared[m[1]] {
				t.Errorf("%s: aperture D%s declared twice", layer.Name, m[1])
			}
			declared[m[1]] = true
		}
		for _, m := range useRe.FindAllStringSubmatch(string(data), -1) {
			if !declared[m[1]] {
				t.Errorf("%s: aperture D%s used but not declared", layer.Name, m[1])
			}
		}
	}
}

func TestTopCopperContent(t *testing.T) {
	l := buildTestLayout(t)

	data, err := TopCopper(l)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)

	// 21 IC pads + 8 passive pads + 8 header pads + 4 via flashes.
	if got := strings.Count(s, "D03*"); got != 41 {
		t.Errorf("top copper flashes = %d, want 41", got)
	}
	// One move per routed segment.
	if got := strings.Count(s, "D02*"); got != len(l.Routes) {
		t.Errorf("top copper moves = %d, want %d", got, len(l.Routes))
	}
	// EP flash at the IC center.
	if !strings.Contains(s, "X10000000Y10000000D03*") {
		t.Error("top copper missing exposed-pad flash at (10,10)")
	}
}

func TestBottomCopperContent(t *testing.T) {
	l := buildTestLayout(t)

	data, err := BottomCopper(l)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)

	// Ground pour plus four via flashes.
	if got := strings.Count(s, "D03*"); got != 5 {
		t.Errorf("bottom copper flashes = %d, want 5", got)
	}
	// 19x19 mm pour centered on the board.
	if !strings.Contains(s, "R,19.0000X19.0000") {
		t.Error("bottom copper missing ground pour aperture")
	}
}

func TestSoldermaskDilation(t *testing.T) {
	l := buildTestLayout(t)

	data, err := TopSoldermask(l)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)

	// QFN pad 0.24x0.70 dilated by 0.05 per side.
	if !strings.Contains(s, "R,0.3400X0.8000") {
		t.Error("top soldermask missing dilated QFN aperture")
	}
	// Copper-sized apertures must not leak into the mask layer.
	if strings.Contains(s, "R,0.2400X0.7000") {
		t.Error("top soldermask contains an undilated copper aperture")
	}
}

func TestBottomSoldermaskContent(t *testing.T) {
	l := buildTestLayout(t)

	data, err := BottomSoldermask(l)
	if err != nil {
		t.Fatal(err)
	}

	// Vias and through-holes get relief; NPTH mounting holes do not.
	if got := strings.Count(string(data), "D03*"); got != 12 {
		t.Errorf("bottom soldermask flashes = %d, want 12 (4 vias + 8 TH)", got)
	}
}

func TestSilkscreenContent(t *testing.T) {
	l := buildTestLayout(t)

	data, err := TopSilkscreen(l)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)

	// Exactly one polarity dot.
	if got := strings.Count(s, "D03*"); got != 1 {
		t.Errorf("silkscreen flashes = %d, want 1 (pin-1 dot)", got)
	}
	// Pin-1 dot sits outside the lower-left body corner.
	if !strings.Contains(s, "X8100000Y8100000D03*") {
		t.Error("pin-1 dot not at (8.1, 8.1)")
	}
	// Six component outlines plus the designator cross.
	if got := strings.Count(s, "D02*"); got != 6+2 {
		t.Errorf("silkscreen moves = %d, want 8", got)
	}
}

func TestBoardOutlineContent(t *testing.T) {
	l := buildTestLayout(t)

	data, err := BoardOutline(l)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)

	if !strings.Contains(s, "X20000000Y20000000D01*") {
		t.Error("outline must reach the far board corner")
	}
	if strings.Contains(s, "D03*") {
		t.Error("outline layer must not flash")
	}
}

func TestEmitIdempotent(t *testing.T) {
	l := buildTestLayout(t)

	for _, layer := range Layers() {
		first, err := layer.Emit(l)
		if err != nil {
			t.Fatal(err)
		}
		second, err := layer.Emit(l)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, second) {
			t.Errorf("%s: two emissions of the same layout differ", layer.Name)
		}
	}
}
