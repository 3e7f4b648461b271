package qmsh

import "encoding/json"

// document mirrors the top level of the .qmsh schema. Fields are
// declared in alphabetical key order at every level; encoding/json
// emits struct fields in declaration order, which is what guarantees
// the format's sorted-keys contract.
type document struct {
	Vertices vertexSection `json:"vertices"`
	Vgroup   groupSection  `json:"vgroup"`
}

type vertexSection struct {
	Interleaved bool     `json:"interleaved"`
	Values      []Vertex `json:"values"`
}

type groupSection struct {
	Grouping  string     `json:"grouping"`
	Triangles []Triangle `json:"triangles"`
}

// Encode renders a qmsh mesh as a UTF-8 JSON document. When sparse is
// true the output carries no extraneous whitespace; otherwise it is
// pretty-printed with a 2-space indent. Empty meshes encode their
// vertex and triangle sections as [] rather than null.
func Encode(m *Mesh, sparse bool) ([]byte, error) {
	vertices := m.Vertices
	if vertices == nil {
		vertices = []Vertex{}
	}
	triangles := m.Triangles
	if triangles == nil {
		triangles = []Triangle{}
	}

	doc := document{
		Vertices: vertexSection{Interleaved: true, Values: vertices},
		Vgroup:   groupSection{Grouping: "triangles", Triangles: triangles},
	}

	if sparse {
		return json.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}
