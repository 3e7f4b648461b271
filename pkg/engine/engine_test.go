package engine

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quaazar/qmshx/pkg/kernel"
	"github.com/quaazar/qmshx/pkg/scene"
)

// fakeSolid tracks the axis-aligned bounds of a fake kernel solid.
type fakeSolid struct {
	minBB, maxBB [3]float64
}

func (s *fakeSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// fakeKernel is a geometry-free kernel so engine tests stay fast and
// independent of sdfx tessellation.
type fakeKernel struct{}

func (k *fakeKernel) Box(x, y, z float64) kernel.Solid {
	return &fakeSolid{
		minBB: [3]float64{-x / 2, -y / 2, -z / 2},
		maxBB: [3]float64{x / 2, y / 2, z / 2},
	}
}

func (k *fakeKernel) Cylinder(height, radius float64) kernel.Solid {
	return &fakeSolid{
		minBB: [3]float64{-radius, -radius, -height / 2},
		maxBB: [3]float64{radius, radius, height / 2},
	}
}

func (k *fakeKernel) Union(a, _ kernel.Solid) kernel.Solid        { return a }
func (k *fakeKernel) Difference(a, _ kernel.Solid) kernel.Solid   { return a }
func (k *fakeKernel) Intersection(a, _ kernel.Solid) kernel.Solid { return a }

func (k *fakeKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	f := s.(*fakeSolid)
	return &fakeSolid{
		minBB: [3]float64{f.minBB[0] + x, f.minBB[1] + y, f.minBB[2] + z},
		maxBB: [3]float64{f.maxBB[0] + x, f.maxBB[1] + y, f.maxBB[2] + z},
	}
}

func (k *fakeKernel) Rotate(s kernel.Solid, _, _, _ float64) kernel.Solid { return s }

func (k *fakeKernel) ToMesh(_ kernel.Solid, name string) (*scene.Mesh, error) {
	m := &scene.Mesh{Name: name}
	n := scene.Vec3{Z: 1}
	m.AddVertex(scene.Vec3{}, n)
	m.AddVertex(scene.Vec3{X: 1}, n)
	m.AddVertex(scene.Vec3{Y: 1}, n)
	m.AddPolygon(0, 1, 2)
	return m, nil
}

func newTestEngine() *Engine {
	return NewEngine(&fakeKernel{})
}

func TestEvaluateEmptyString(t *testing.T) {
	eng := newTestEngine()

	sc, evalErrs, err := eng.Evaluate("")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if sc == nil {
		t.Fatal("expected non-nil scene")
	}
	if sc.Count() != 0 {
		t.Errorf("expected empty scene, got %d meshes", sc.Count())
	}
}

func TestEvaluateWhitespaceOnly(t *testing.T) {
	eng := newTestEngine()

	sc, evalErrs, err := eng.Evaluate("   \n\t  \n  ")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if sc == nil {
		t.Fatal("expected non-nil scene")
	}
	if sc.Count() != 0 {
		t.Errorf("expected empty scene, got %d meshes", sc.Count())
	}
}

func TestEvaluatePlainExpression(t *testing.T) {
	eng := newTestEngine()

	// Valid Lisp with no defmesh leaves the scene empty.
	sc, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if sc.Count() != 0 {
		t.Errorf("expected empty scene, got %d meshes", sc.Count())
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := newTestEngine()

	// Unmatched paren is a parse error.
	sc, evalErrs, err := eng.Evaluate("(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if sc != nil {
		t.Fatal("expected nil scene on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := newTestEngine()

	sc, evalErrs, err := eng.Evaluate("(+ 1 undefined_symbol)")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if sc != nil {
		t.Fatal("expected nil scene on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Col: 0, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") {
		t.Errorf("Error() should contain line info, got: %s", s)
	}
	if !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain message, got: %s", s)
	}

	// No line info.
	e2 := EvalError{Line: 0, Col: 0, Message: "no location"}
	s2 := e2.Error()
	if strings.Contains(s2, "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", s2)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := newTestEngine()

	source := `(defmesh "part" (box :x 10 :y 10 :z 10))`
	for i := 0; i < 5; i++ {
		sc, evalErrs, err := eng.Evaluate(source)
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, evalErrs)
		}
		if sc.Count() != 1 {
			t.Errorf("iteration %d: expected 1 mesh, got %d", i, sc.Count())
		}
	}
}

func TestEvaluateTimeout(t *testing.T) {
	// Test the timeout plumbing directly with a channel that never
	// sends, rather than constructing a runaway script.
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult) // Never sends

	done := make(chan struct{})
	var resultErr error

	go func() {
		defer close(done)
		_, _, resultErr = waitWithTimeout(ch, 1, &mu, &gen)
	}()

	select {
	case <-done:
		if resultErr == nil {
			t.Fatal("expected timeout error, got nil")
		}
		if !strings.Contains(resultErr.Error(), "timed out") {
			t.Errorf("expected timeout error message, got: %v", resultErr)
		}
	case <-time.After(EvalTimeout + 2*time.Second):
		t.Fatal("test itself timed out waiting for evaluation timeout")
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2) // Current generation is 2

	ch := make(chan evalResult, 1)
	ch <- evalResult{scene: nil, errors: nil, err: nil}

	// Pass generation 1 (stale).
	_, _, err := waitWithTimeout(ch, 1, &mu, &gen)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{
			name:     "error on line format",
			msg:      "Error on line 5: unexpected token\n",
			wantLine: 5,
			wantMsg:  "unexpected token",
		},
		{
			name:     "no line info",
			msg:      "some generic error",
			wantLine: 0,
			wantMsg:  "some generic error",
		},
		{
			name:     "line format lowercase",
			msg:      "error on line 12: missing paren",
			wantLine: 12,
			wantMsg:  "missing paren",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			e := errs[0]
			if e.Line != tt.wantLine {
				t.Errorf("line = %d, want %d", e.Line, tt.wantLine)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", e.Message, tt.wantMsg)
			}
		})
	}
}

// errString is a simple error type for testing.
type errString string

func (e errString) Error() string { return string(e) }
