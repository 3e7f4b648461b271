package scene

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks export
// or is merely advisory.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks export
	SeverityWarning                           // advisory
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Polygon  int    // offending polygon index, -1 for mesh-level findings
	Message  string // human-readable description
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Polygon < 0 {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] polygon %d: %s", e.Severity, e.Polygon, e.Message)
}

// Validate runs structural checks on a mesh and returns all findings.
// An empty result means the mesh is well formed and fully triangulated.
// This function is read-only and never mutates the mesh.
func Validate(m *Mesh) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validatePolygons(m)...)
	errs = append(errs, validateLoops(m)...)
	return errs
}

// validatePolygons checks each face's arity and vertex references.
func validatePolygons(m *Mesh) []ValidationError {
	var errs []ValidationError
	for i, poly := range m.Polygons {
		if len(poly) > 3 {
			errs = append(errs, ValidationError{
				Polygon:  i,
				Message:  fmt.Sprintf("has %d vertices, convert quadrangles/n-gons to triangles", len(poly)),
				Severity: SeverityError,
			})
		}
		if len(poly) < 3 {
			errs = append(errs, ValidationError{
				Polygon:  i,
				Message:  fmt.Sprintf("degenerate face with %d vertices", len(poly)),
				Severity: SeverityWarning,
			})
		}
		for _, idx := range poly {
			if idx < 0 || idx >= len(m.Vertices) {
				errs = append(errs, ValidationError{
					Polygon:  i,
					Message:  fmt.Sprintf("vertex index %d out of range (mesh has %d vertices)", idx, len(m.Vertices)),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateLoops checks the flattened loop sequence against the polygons.
func validateLoops(m *Mesh) []ValidationError {
	var errs []ValidationError

	total := 0
	for _, poly := range m.Polygons {
		total += len(poly)
	}
	if total != len(m.Loops) {
		errs = append(errs, ValidationError{
			Polygon:  -1,
			Message:  fmt.Sprintf("loop sequence length %d does not match polygon total %d", len(m.Loops), total),
			Severity: SeverityError,
		})
	}

	if len(m.Loops)%3 != 0 {
		errs = append(errs, ValidationError{
			Polygon:  -1,
			Message:  fmt.Sprintf("loop sequence length %d is not a multiple of 3; the final partial triangle is dropped on export", len(m.Loops)),
			Severity: SeverityWarning,
		})
	}

	for i, idx := range m.Loops {
		if idx < 0 || idx >= len(m.Vertices) {
			errs = append(errs, ValidationError{
				Polygon:  -1,
				Message:  fmt.Sprintf("loop %d references vertex %d out of range (mesh has %d vertices)", i, idx, len(m.Vertices)),
				Severity: SeverityError,
			})
		}
	}
	return errs
}
