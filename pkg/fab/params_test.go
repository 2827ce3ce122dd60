package fab

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultParamsValid(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("DefaultParams().Validate() = %v", err)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero board width", func(p *Params) { p.BoardWidth = 0 }},
		{"negative pad", func(p *Params) { p.QFNPadW = -1 }},
		{"nan drill", func(p *Params) { p.ViaDrill = math.NaN() }},
		{"zero header pins", func(p *Params) { p.HeaderPins = 0 }},
		{"negative mask expand", func(p *Params) { p.MaskExpand = -0.1 }},
		{"pour inset too large", func(p *Params) { p.GroundPourInset = 15 }},
		{"empty board name", func(p *Params) { p.BoardName = "" }},
	}
	for _, tt := range tests {
		p := DefaultParams()
		tt.mutate(&p)
		if err := p.Validate(); err == nil {
			t.Errorf("%s: Validate() = nil, want error", tt.name)
		}
	}
}

func TestLoadParams(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.toml")
	content := "board_name = \"test_board\"\nboard_width = 25.0\ntrace_width = 0.25\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadParams(path)
	if err != nil {
		t.Fatalf("LoadParams error: %v", err)
	}
	if p.BoardName != "test_board" {
		t.Errorf("BoardName = %q", p.BoardName)
	}
	if p.BoardWidth != 25.0 {
		t.Errorf("BoardWidth = %g, want 25.0", p.BoardWidth)
	}
	if p.TraceWidth != 0.25 {
		t.Errorf("TraceWidth = %g, want 0.25", p.TraceWidth)
	}
	// Untouched fields keep their defaults.
	if p.BoardHeight != 20.0 {
		t.Errorf("BoardHeight = %g, want default 20.0", p.BoardHeight)
	}
}

func TestLoadParamsRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.toml")
	if err := os.WriteFile(path, []byte("trace_width = -1.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadParams(path); err == nil {
		t.Error("negative trace width should be rejected")
	}

	if _, err := LoadParams(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("missing file should be an error")
	}
}
