// Package scene defines the raw mesh types supplied by a mesh source
// (OBJ file, scene script, or any other host) to the qmsh exporter.
// A scene.Mesh mirrors the source's structure: an ordered vertex list,
// an ordered polygon list, and the flattened loop sequence of
// per-polygon vertex indices.
package scene
