package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quaazar/qmshx/pkg/scene"
)

func unitTriangle() *scene.Mesh {
	m := &scene.Mesh{Name: "tri"}
	n := scene.Vec3{Z: 1}
	m.AddVertex(scene.Vec3{X: 0, Y: 0, Z: 0}, n)
	m.AddVertex(scene.Vec3{X: 1, Y: 0, Z: 0}, n)
	m.AddVertex(scene.Vec3{X: 0, Y: 1, Z: 0}, n)
	m.AddPolygon(0, 1, 2)
	return m
}

func quadMesh() *scene.Mesh {
	m := &scene.Mesh{Name: "quad"}
	n := scene.Vec3{Z: 1}
	m.AddVertex(scene.Vec3{X: 0, Y: 0, Z: 0}, n)
	m.AddVertex(scene.Vec3{X: 1, Y: 0, Z: 0}, n)
	m.AddVertex(scene.Vec3{X: 1, Y: 1, Z: 0}, n)
	m.AddVertex(scene.Vec3{X: 0, Y: 1, Z: 0}, n)
	m.AddPolygon(0, 1, 2, 3)
	return m
}

// capture returns an Exporter logging into buf.
func capture(buf *bytes.Buffer) *Exporter {
	return &Exporter{Logger: log.New(buf, "", 0)}
}

func TestExportSuccessWritesFile(t *testing.T) {
	var buf bytes.Buffer
	e := capture(&buf)
	e.Sparse = true

	path := filepath.Join(t.TempDir(), "tri.qmsh")
	if err := e.Export(unitTriangle(), path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading exported file: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("exported file is not valid JSON: %v", err)
	}
	if _, ok := doc["vertices"]; !ok {
		t.Error("exported document missing vertices section")
	}
	if _, ok := doc["vgroup"]; !ok {
		t.Error("exported document missing vgroup section")
	}

	if !strings.Contains(buf.String(), "I: exporting 'tri'") {
		t.Errorf("expected info log line, got: %q", buf.String())
	}
}

func TestExportNilMesh(t *testing.T) {
	var buf bytes.Buffer
	e := capture(&buf)

	path := filepath.Join(t.TempDir(), "none.qmsh")
	err := e.Export(nil, path)
	if !errors.Is(err, ErrNoMesh) {
		t.Fatalf("expected ErrNoMesh, got %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("no file should be written when no mesh is selected")
	}
	if !strings.Contains(buf.String(), "E: no mesh selected") {
		t.Errorf("expected error log line, got: %q", buf.String())
	}
}

func TestExportNotTriangulated(t *testing.T) {
	var buf bytes.Buffer
	e := capture(&buf)

	path := filepath.Join(t.TempDir(), "quad.qmsh")
	err := e.Export(quadMesh(), path)

	var ntErr *NotTriangulatedError
	if !errors.As(err, &ntErr) {
		t.Fatalf("expected *NotTriangulatedError, got %v", err)
	}
	if ntErr.Name != "quad" {
		t.Errorf("error names mesh %q, want %q", ntErr.Name, "quad")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("no file should be written for a non-triangulated mesh")
	}
	if !strings.Contains(buf.String(), "W: 'quad' is not eligible to export") {
		t.Errorf("expected warning log line, got: %q", buf.String())
	}
}

func TestExportStrictRejectsPartialStride(t *testing.T) {
	var buf bytes.Buffer
	e := capture(&buf)
	e.Strict = true

	m := unitTriangle()
	m.Loops = append(m.Loops, 0)

	path := filepath.Join(t.TempDir(), "partial.qmsh")
	if err := e.Export(m, path); err == nil {
		t.Fatal("expected strict export to fail")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("no file should be written on strict rejection")
	}
}

func TestExportPermissiveTruncatesPartialStride(t *testing.T) {
	var buf bytes.Buffer
	e := capture(&buf)
	e.Sparse = true

	m := unitTriangle()
	m.Loops = append(m.Loops, 0)

	path := filepath.Join(t.TempDir(), "partial.qmsh")
	if err := e.Export(m, path); err != nil {
		t.Fatalf("permissive export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading exported file: %v", err)
	}
	var doc struct {
		Vgroup struct {
			Triangles [][3]int `json:"triangles"`
		} `json:"vgroup"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Vgroup.Triangles) != 1 {
		t.Errorf("expected the partial stride to be dropped, got %d triangles", len(doc.Vgroup.Triangles))
	}
}

func TestExportWriteFailurePropagates(t *testing.T) {
	var buf bytes.Buffer
	e := capture(&buf)

	// A path inside a non-existent directory makes the write fail.
	path := filepath.Join(t.TempDir(), "missing", "tri.qmsh")
	err := e.Export(unitTriangle(), path)
	if err == nil {
		t.Fatal("expected write error")
	}
	if !strings.Contains(err.Error(), "writing") {
		t.Errorf("unexpected error: %v", err)
	}
}
