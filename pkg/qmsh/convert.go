package qmsh

import (
	"fmt"
	"math"

	"github.com/quaazar/qmshx/pkg/scene"
)

// Convert builds a qmsh mesh from a raw scene mesh. It performs no
// validation: callers decide eligibility with Mesh.TriangulatedOnly or
// scene.Validate beforehand. Vertex order is preserved 1:1 and every
// component is rounded to 6 decimal places. The loop sequence is walked
// in strides of 3; a trailing partial stride is silently dropped, which
// matches the historical exporter behavior (use ConvertStrict to reject
// such meshes instead).
func Convert(m *scene.Mesh) *Mesh {
	out := &Mesh{
		Name:      m.Name,
		Vertices:  make([]Vertex, 0, len(m.Vertices)),
		Triangles: make([]Triangle, 0, len(m.Loops)/3),
	}

	for _, v := range m.Vertices {
		out.Vertices = append(out.Vertices, Vertex{
			Position: [3]float64{round6(v.Position.X), round6(v.Position.Y), round6(v.Position.Z)},
			Normal:   [3]float64{round6(v.Normal.X), round6(v.Normal.Y), round6(v.Normal.Z)},
			Extra:    []float64{},
		})
	}

	for i := 0; i+2 < len(m.Loops); i += 3 {
		out.Triangles = append(out.Triangles, Triangle{m.Loops[i], m.Loops[i+1], m.Loops[i+2]})
	}

	return out
}

// ConversionError reports why a mesh failed strict conversion.
type ConversionError struct {
	Name     string
	Findings []scene.ValidationError
}

func (e *ConversionError) Error() string {
	if len(e.Findings) == 1 {
		return fmt.Sprintf("mesh %q is not convertible: %s", e.Name, e.Findings[0])
	}
	return fmt.Sprintf("mesh %q is not convertible: %d findings, first: %s",
		e.Name, len(e.Findings), e.Findings[0])
}

// ConvertStrict is Convert with the permissive behaviors turned into
// errors: n-gons, degenerate polygons, out-of-range indices, and loop
// sequences that are not a multiple of 3 all reject the mesh.
func ConvertStrict(m *scene.Mesh) (*Mesh, error) {
	if findings := scene.Validate(m); len(findings) > 0 {
		return nil, &ConversionError{Name: m.Name, Findings: findings}
	}
	return Convert(m), nil
}

// round6 rounds to 6 decimal places with ties going to the even
// neighbor, so golden-file comparisons are stable across platforms.
func round6(x float64) float64 {
	return math.RoundToEven(x*1e6) / 1e6
}
