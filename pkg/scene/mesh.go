package scene

// Vertex is a single mesh vertex: a position and its shading normal.
type Vertex struct {
	Position Vec3 `json:"position"`
	Normal   Vec3 `json:"normal"`
}

// Mesh is the raw mesh record handed to the exporter by a mesh source.
// Polygons holds one ordered vertex-index list per face. Loops is the
// flattened per-polygon vertex-index sequence in polygon order; sources
// must keep it consistent with Polygons (AddPolygon does this).
// The exporter only reads a Mesh, it never mutates or retains one.
type Mesh struct {
	Name     string   `json:"name"`
	Vertices []Vertex `json:"vertices"`
	Polygons [][]int  `json:"polygons"`
	Loops    []int    `json:"loops"`
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(position, normal Vec3) int {
	m.Vertices = append(m.Vertices, Vertex{Position: position, Normal: normal})
	return len(m.Vertices) - 1
}

// AddPolygon appends a face and its loop entries, keeping Polygons and
// Loops in sync.
func (m *Mesh) AddPolygon(indices ...int) {
	m.Polygons = append(m.Polygons, indices)
	m.Loops = append(m.Loops, indices...)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// PolygonCount returns the number of faces.
func (m *Mesh) PolygonCount() int {
	return len(m.Polygons)
}

// LoopCount returns the length of the flattened loop sequence.
func (m *Mesh) LoopCount() int {
	return len(m.Loops)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// TriangulatedOnly reports whether every polygon has at most 3 vertices.
// Quadrangles and n-gons make a mesh ineligible for qmsh export; polygons
// with fewer than 3 vertices are not rejected here (see Validate).
func (m *Mesh) TriangulatedOnly() bool {
	for _, poly := range m.Polygons {
		if len(poly) > 3 {
			return false
		}
	}
	return true
}
