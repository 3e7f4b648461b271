// Package export performs a single qmsh export invocation: validate the
// mesh's eligibility, convert, serialize, and write the result to a file.
// Each outcome is also surfaced as a level-prefixed log line (E/W/I),
// matching the message classes the original exporter printed.
package export

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/quaazar/qmshx/pkg/qmsh"
	"github.com/quaazar/qmshx/pkg/scene"
)

// ErrNoMesh is returned when Export is invoked without a mesh.
var ErrNoMesh = errors.New("no mesh selected")

// NotTriangulatedError reports a mesh containing quadrangles or n-gons.
type NotTriangulatedError struct {
	Name string
}

func (e *NotTriangulatedError) Error() string {
	return fmt.Sprintf("mesh %q is not fully triangulated", e.Name)
}

// Exporter holds the per-invocation options. The zero value exports in
// pretty (non-sparse) permissive mode and logs via the default logger.
type Exporter struct {
	// Sparse selects the compact (no extraneous whitespace) rendering
	// instead of the 2-space-indented one.
	Sparse bool

	// Strict rejects meshes that the permissive converter would quietly
	// repair by truncation: partial loop strides, degenerate polygons,
	// out-of-range indices.
	Strict bool

	// Logger receives the I/W/E status lines. Nil means log.Default().
	Logger *log.Logger
}

func (e *Exporter) logf(format string, args ...interface{}) {
	l := e.Logger
	if l == nil {
		l = log.Default()
	}
	l.Printf(format, args...)
}

// Export converts m and writes the qmsh document to path. There are
// exactly three outcomes:
//
//   - m is nil: an error-level message is logged, ErrNoMesh is
//     returned, and no file is written;
//   - m is not fully triangulated: a warning-level message naming the
//     mesh is logged, a *NotTriangulatedError is returned, and no file
//     is written;
//   - otherwise: an info-level message is logged and the file is
//     written.
//
// A failing write propagates untranslated; there is no retry and no
// partial-write recovery.
func (e *Exporter) Export(m *scene.Mesh, path string) error {
	if m == nil {
		e.logf("E: no mesh selected")
		return ErrNoMesh
	}
	if !m.TriangulatedOnly() {
		e.logf("W: '%s' is not eligible to export, please convert quadrangles to triangles", m.Name)
		return &NotTriangulatedError{Name: m.Name}
	}

	e.logf("I: exporting '%s'", m.Name)

	var (
		qm  *qmsh.Mesh
		err error
	)
	if e.Strict {
		qm, err = qmsh.ConvertStrict(m)
		if err != nil {
			e.logf("W: '%s' failed strict conversion: %v", m.Name, err)
			return err
		}
	} else {
		qm = qmsh.Convert(m)
	}

	data, err := qmsh.Encode(qm, e.Sparse)
	if err != nil {
		return fmt.Errorf("export: encoding %q: %w", m.Name, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: writing %q: %w", path, err)
	}
	return nil
}
