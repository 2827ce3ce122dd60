package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lwerner/copperline/pkg/pipeline"
)

func testHandler() http.Handler {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	return newServerHandler(runner, logger)
}

func TestServeHealthz(t *testing.T) {
	srv := httptest.NewServer(testHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestServeLayers(t *testing.T) {
	srv := httptest.NewServer(testHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/layers")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var layers []struct {
		Name         string `json:"name"`
		Extension    string `json:"extension"`
		FileFunction string `json:"file_function"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&layers); err != nil {
		t.Fatal(err)
	}
	if len(layers) != 6 {
		t.Fatalf("layers = %d, want 6", len(layers))
	}
	if layers[0].Extension != "GTL" || layers[5].Extension != "GKO" {
		t.Errorf("layer order: %s ... %s", layers[0].Extension, layers[5].Extension)
	}
}

func TestServeGenerate(t *testing.T) {
	srv := httptest.NewServer(testHandler())
	defer srv.Close()

	body := `{"layers":["GKO"],"skip_drill":true}`
	resp, err := http.Post(srv.URL+"/api/generate", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.Files) != 1 || got.Files[0].Name != "SE050_breakout.GKO" {
		t.Errorf("files = %+v", got.Files)
	}
	if got.ParamsHash == "" || got.Manifest.RunID == "" {
		t.Error("missing hash or run ID")
	}
	if !strings.HasPrefix(string(got.Files[0].Data), "%FSLAX36Y36*%") {
		t.Error("file data did not survive the JSON round trip")
	}
}

func TestServeGenerateRejectsBadInput(t *testing.T) {
	srv := httptest.NewServer(testHandler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/generate", "application/json", strings.NewReader("{broken"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/api/generate", "application/json", strings.NewReader(`{"layers":["BAD"]}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("unknown layer: status = %d", resp.StatusCode)
	}
}

func TestServeNetlist(t *testing.T) {
	srv := httptest.NewServer(testHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/netlist.svg")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "<svg") {
		t.Error("response is not SVG")
	}
}

func TestServeSchematic(t *testing.T) {
	srv := httptest.NewServer(testHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/schematic.svg")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(data), "<svg") {
		t.Error("response is not SVG")
	}
}
