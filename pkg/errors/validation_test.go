package errors

import "testing"

func TestValidateBoardName(t *testing.T) {
	valid := []string{
		"SE050_breakout",
		"board-v2",
		"b",
		"A1.rev3",
	}
	for _, name := range valid {
		if err := ValidateBoardName(name); err != nil {
			t.Errorf("ValidateBoardName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{
		"",
		"../escape",
		"a/b",
		"a\\b",
		"name\x00",
		".hidden",
		string(make([]byte, 200)),
	}
	for _, name := range invalid {
		if err := ValidateBoardName(name); err == nil {
			t.Errorf("ValidateBoardName(%q) = nil, want error", name)
		}
	}
}

func TestValidateOutputDir(t *testing.T) {
	valid := []string{
		"out",
		"out/gerbers",
		"/tmp/fab",
		".",
	}
	for _, p := range valid {
		if err := ValidateOutputDir(p); err != nil {
			t.Errorf("ValidateOutputDir(%q) = %v, want nil", p, err)
		}
	}

	invalid := []string{
		"",
		"../escape",
		"a/../b",
		"bad\x00dir",
	}
	for _, p := range invalid {
		if err := ValidateOutputDir(p); err == nil {
			t.Errorf("ValidateOutputDir(%q) = nil, want error", p)
		}
	}
}
