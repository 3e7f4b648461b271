package qmsh

import "encoding/json"

// Vertex is one qmsh vertex: a rounded position and normal plus the
// reserved per-vertex extra channel (always empty for now).
type Vertex struct {
	Position [3]float64
	Normal   [3]float64
	Extra    []float64
}

// MarshalJSON renders the vertex as the interleaved row
// [[x,y,z],[nx,ny,nz],[]] the .qmsh format expects.
func (v Vertex) MarshalJSON() ([]byte, error) {
	extra := v.Extra
	if extra == nil {
		extra = []float64{}
	}
	return json.Marshal([]interface{}{v.Position, v.Normal, extra})
}

// Triangle is an ordered triple of indices into the vertex sequence.
type Triangle [3]int

// Mesh is a normalized qmsh mesh, built fresh per export and discarded
// after serialization.
type Mesh struct {
	Name      string
	Vertices  []Vertex
	Triangles []Triangle
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}
