// Package kernel defines the abstract geometry kernel interface used by
// scene scripts to build solids. Implementations (sdfx) provide solid
// modeling and boolean operations behind this interface and tessellate
// solids into raw scene meshes for qmsh export.
package kernel

import "github.com/quaazar/qmshx/pkg/scene"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToMesh tessellates a solid into a triangulated scene mesh with
	// the given name. The loop sequence of the result is always a
	// multiple of 3.
	ToMesh(s Solid, name string) (*scene.Mesh, error)
}
