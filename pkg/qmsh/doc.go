// Package qmsh converts raw scene meshes into the Quaazar JSON mesh
// format (.qmsh) and renders the JSON document. Conversion normalizes
// vertex components to 6 decimal places and regroups the flattened loop
// sequence into triangle index triples.
package qmsh
