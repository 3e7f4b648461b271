package engine

import (
	"fmt"

	"github.com/quaazar/qmshx/pkg/kernel"
)

// Entry is one named solid registered by a (defmesh ...) form.
type Entry struct {
	Name  string
	Solid kernel.Solid
}

// Scene is the ordered collection of named solids a script produced.
// Entries keep their definition order so exports are deterministic.
type Scene struct {
	Entries []Entry
	names   map[string]int
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{names: make(map[string]int)}
}

// Add registers a named solid. Duplicate names are an error since each
// entry becomes its own output file.
func (s *Scene) Add(name string, solid kernel.Solid) error {
	if _, exists := s.names[name]; exists {
		return fmt.Errorf("mesh %q already defined", name)
	}
	s.names[name] = len(s.Entries)
	s.Entries = append(s.Entries, Entry{Name: name, Solid: solid})
	return nil
}

// Lookup returns the solid registered under name, or nil.
func (s *Scene) Lookup(name string) kernel.Solid {
	i, ok := s.names[name]
	if !ok {
		return nil
	}
	return s.Entries[i].Solid
}

// Count returns the number of registered meshes.
func (s *Scene) Count() int {
	return len(s.Entries)
}
