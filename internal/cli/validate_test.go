package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/lwerner/copperline/pkg/export"
	"github.com/lwerner/copperline/pkg/pipeline"
)

func writeGeneratedSet(t *testing.T, dir string) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	runner := c.newRunner(true)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), pipeline.Options{Logger: c.Logger})
	if err != nil {
		t.Fatal(err)
	}
	m := export.NewManifest("SE050_breakout", result.Files)
	if err := export.WriteFileSet(dir, result.Files, m); err != nil {
		t.Fatal(err)
	}
}

func TestValidateGeneratedOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	writeGeneratedSet(t, dir)

	c := New(io.Discard, LogInfo)
	if err := c.runValidate(dir); err != nil {
		t.Errorf("freshly generated set should validate: %v", err)
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	writeGeneratedSet(t, dir)

	// Truncate a layer so the terminator is gone.
	path := filepath.Join(dir, "SE050_breakout.GTL")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data[:len(data)-8], 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	if err := c.runValidate(dir); err == nil {
		t.Error("corrupted set should fail validation")
	}
}

func TestValidateEmptyDirectory(t *testing.T) {
	c := New(io.Discard, LogInfo)
	if err := c.runValidate(t.TempDir()); err == nil {
		t.Error("directory without fabrication files should be an error")
	}
	if err := c.runValidate(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("missing directory should be an error")
	}
}
