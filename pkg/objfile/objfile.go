// Package objfile reads Wavefront OBJ geometry into a scene.Mesh so it
// can be exported to qmsh. Only the records the exporter needs are
// understood: v, vn, and f (all face index forms); everything else is
// skipped. OBJ stores positions and normals in separate index spaces,
// so the reader emits one scene vertex per distinct (position, normal)
// pair and rewrites the faces against the combined vertex list.
package objfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/quaazar/qmshx/pkg/scene"
)

// corner is one parsed face-vertex reference. Indices are 0-based;
// norm is -1 when the face form carries no normal.
type corner struct {
	pos  int
	norm int
}

// ParseFile reads an OBJ file. The mesh is named after the file's base
// name without extension.
func ParseFile(path string) (*scene.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("objfile: %w", err)
	}
	defer f.Close()

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return Parse(f, name)
}

// Parse reads OBJ records from r into a mesh with the given name.
func Parse(r io.Reader, name string) (*scene.Mesh, error) {
	mesh := &scene.Mesh{Name: name}

	var positions, normals []scene.Vec3
	// combined maps a (position, normal) index pair to its scene vertex.
	combined := make(map[[2]int]int)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("objfile: line %d: vertex: %w", lineNo, err)
			}
			positions = append(positions, v)

		case "vn":
			v, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("objfile: line %d: normal: %w", lineNo, err)
			}
			normals = append(normals, v)

		case "o", "g":
			// Object/group names override the file-derived mesh name.
			if len(fields) > 1 && fields[0] == "o" {
				mesh.Name = fields[1]
			}

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("objfile: line %d: face with %d vertices", lineNo, len(fields)-1)
			}
			corners := make([]corner, 0, len(fields)-1)
			for _, spec := range fields[1:] {
				c, err := parseCorner(spec, len(positions), len(normals))
				if err != nil {
					return nil, fmt.Errorf("objfile: line %d: %w", lineNo, err)
				}
				corners = append(corners, c)
			}
			addFace(mesh, positions, normals, combined, corners)

		default:
			// vt, s, usemtl, mtllib and friends carry nothing qmsh keeps.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("objfile: %w", err)
	}

	return mesh, nil
}

// addFace resolves a face's corners to scene vertex indices and appends
// the polygon. Corners with an explicit normal are deduplicated by
// (position, normal) pair; corners without one get a fresh vertex
// carrying the face normal.
func addFace(mesh *scene.Mesh, positions, normals []scene.Vec3, combined map[[2]int]int, corners []corner) {
	var fn scene.Vec3
	needFaceNormal := false
	for _, c := range corners {
		if c.norm < 0 {
			needFaceNormal = true
			break
		}
	}
	if needFaceNormal {
		pts := make([]scene.Vec3, len(corners))
		for i, c := range corners {
			pts[i] = positions[c.pos]
		}
		fn = faceNormal(pts)
	}

	poly := make([]int, 0, len(corners))
	for _, c := range corners {
		if c.norm >= 0 {
			key := [2]int{c.pos, c.norm}
			idx, ok := combined[key]
			if !ok {
				idx = mesh.AddVertex(positions[c.pos], normals[c.norm])
				combined[key] = idx
			}
			poly = append(poly, idx)
		} else {
			poly = append(poly, mesh.AddVertex(positions[c.pos], fn))
		}
	}
	mesh.AddPolygon(poly...)
}

// parseVec3 reads three float fields.
func parseVec3(fields []string) (scene.Vec3, error) {
	if len(fields) < 3 {
		return scene.Vec3{}, fmt.Errorf("expected 3 components, got %d", len(fields))
	}
	var out [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return scene.Vec3{}, fmt.Errorf("component %d: %w", i, err)
		}
		out[i] = v
	}
	return scene.Vec3{X: out[0], Y: out[1], Z: out[2]}, nil
}

// parseCorner reads one face-vertex spec: v, v/vt, v//vn, or v/vt/vn.
// OBJ indices are 1-based; negative indices count back from the end of
// the respective list.
func parseCorner(spec string, posCount, normCount int) (corner, error) {
	parts := strings.Split(spec, "/")

	pos, err := resolveIndex(parts[0], posCount)
	if err != nil {
		return corner{}, fmt.Errorf("face vertex %q: %w", spec, err)
	}

	norm := -1
	if len(parts) == 3 && parts[2] != "" {
		norm, err = resolveIndex(parts[2], normCount)
		if err != nil {
			return corner{}, fmt.Errorf("face normal %q: %w", spec, err)
		}
	}

	return corner{pos: pos, norm: norm}, nil
}

// resolveIndex converts a 1-based (or negative relative) OBJ index into
// a 0-based index, range checked against count.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case n > 0:
		n--
	case n < 0:
		n = count + n
	default:
		return 0, fmt.Errorf("index 0 is not valid in OBJ")
	}
	if n < 0 || n >= count {
		return 0, fmt.Errorf("index %s out of range (have %d)", s, count)
	}
	return n, nil
}

// faceNormal computes a polygon normal with Newell's method, which
// stays stable for slightly non-planar faces.
func faceNormal(pts []scene.Vec3) scene.Vec3 {
	var n scene.Vec3
	for i, cur := range pts {
		next := pts[(i+1)%len(pts)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n.Normalized()
}
