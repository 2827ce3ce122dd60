// Package export handles materializing a generated file set on disk,
// together with a manifest that records what was written and the content
// digest of every file.
package export

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lwerner/copperline/pkg/errors"
)

// File is one generated output: a base name and its content. Files carry
// no directory component; placement is decided at write time.
type File struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// Digest describes one written file in the manifest.
type Digest struct {
	Name   string `json:"name"`
	Size   int    `json:"size"`
	SHA256 string `json:"sha256"`
}

// Manifest records one generation run: a unique run ID, the board it was
// generated for, and a digest per output file.
type Manifest struct {
	RunID     string    `json:"run_id"`
	Board     string    `json:"board"`
	CreatedAt time.Time `json:"created_at"`
	Files     []Digest  `json:"files"`
}

// ManifestName is the file name the manifest is written under.
const ManifestName = "manifest.json"

// NewManifest builds a manifest for the given file set with a fresh
// random run ID.
func NewManifest(board string, files []File) Manifest {
	m := Manifest{
		RunID:     uuid.NewString(),
		Board:     board,
		CreatedAt: time.Now().UTC(),
		Files:     make([]Digest, 0, len(files)),
	}
	for _, f := range files {
		sum := sha256.Sum256(f.Data)
		m.Files = append(m.Files, Digest{
			Name:   f.Name,
			Size:   len(f.Data),
			SHA256: hex.EncodeToString(sum[:]),
		})
	}
	return m
}

// WriteFileSet writes every file plus the manifest into dir, creating the
// directory if needed. File names must be bare names; anything carrying a
// path separator is rejected before any file is written.
func WriteFileSet(dir string, files []File, manifest Manifest) error {
	for _, f := range files {
		if f.Name == "" || f.Name != filepath.Base(f.Name) {
			return errors.New(errors.ErrCodeInvalidPath, "bad output file name %q", f.Name)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create output directory")
	}

	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.Name), f.Data, 0644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", f.Name)
		}
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode manifest")
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write manifest")
	}
	return nil
}

// EncodeFiles serializes a file set for cache storage.
func EncodeFiles(files []File) ([]byte, error) {
	return json.Marshal(files)
}

// DecodeFiles deserializes a cached file set.
func DecodeFiles(data []byte) ([]File, error) {
	var files []File
	if err := json.Unmarshal(data, &files); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedFile, err, "decode cached file set")
	}
	return files, nil
}
