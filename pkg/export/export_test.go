package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileSet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	files := []File{
		{Name: "board.GTL", Data: []byte("top copper")},
		{Name: "board.DRL", Data: []byte("drill")},
	}
	m := NewManifest("board", files)

	if err := WriteFileSet(dir, files, m); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "board.GTL"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "top copper" {
		t.Errorf("content = %q", data)
	}

	raw, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatal(err)
	}
	var got Manifest
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatal(err)
	}
	if got.RunID == "" || got.Board != "board" || len(got.Files) != 2 {
		t.Errorf("manifest = %+v", got)
	}
	if got.Files[0].Size != len("top copper") || len(got.Files[0].SHA256) != 64 {
		t.Errorf("digest = %+v", got.Files[0])
	}
}

func TestWriteFileSetRejectsPathNames(t *testing.T) {
	dir := t.TempDir()
	files := []File{{Name: "../escape.GTL", Data: []byte("x")}}
	if err := WriteFileSet(dir, files, NewManifest("b", files)); err == nil {
		t.Fatal("path traversal in file name should be rejected")
	}
	if _, err := os.Stat(filepath.Join(dir, "..", "escape.GTL")); err == nil {
		t.Fatal("file must not have been written")
	}
}

func TestEncodeDecodeFiles(t *testing.T) {
	in := []File{{Name: "a", Data: []byte{1, 2, 3}}, {Name: "b", Data: nil}}
	data, err := EncodeFiles(in)
	if err != nil {
		t.Fatal(err)
	}
	out, err := DecodeFiles(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].Name != "a" || len(out[0].Data) != 3 {
		t.Errorf("round trip = %+v", out)
	}

	if _, err := DecodeFiles([]byte("{not json")); err == nil {
		t.Error("garbage should fail to decode")
	}
}
