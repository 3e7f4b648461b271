package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/quaazar/qmshx/pkg/kernel"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene-script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: half-width -> half_width
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSolid wraps a kernel.Solid so it can be passed between builtins.
type sexpSolid struct {
	solid kernel.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	min, max := s.solid.BoundingBox()
	return fmt.Sprintf("(solid [%.1f %.1f %.1f]..[%.1f %.1f %.1f])",
		min[0], min[1], min[2], max[0], max[1], max[2])
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a 3-component vector.
type sexpVec3 struct {
	x, y, z float64
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.x, v.y, v.z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value, treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts a kernel.Solid from a sexpSolid.
func toSolid(s zygo.Sexp) (kernel.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.solid, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts the components of a sexpVec3.
func toVec3(s zygo.Sexp) (x, y, z float64, err error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.x, v.y, v.z, nil
	}
	return 0, 0, 0, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// requireFloat extracts a mandatory keyword number argument.
func requireFloat(pa kwArgs, fn, name string) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return 0, fmt.Errorf("%s: missing required :%s", fn, name)
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", fn, name, err)
	}
	return f, nil
}

// twoSolids extracts the two positional solid arguments of a boolean op.
func twoSolids(fn string, args []zygo.Sexp) (kernel.Solid, kernel.Solid, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("%s requires exactly 2 solid arguments, got %d", fn, len(args))
	}
	a, err := toSolid(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%s: first argument: %w", fn, err)
	}
	b, err := toSolid(args[1])
	if err != nil {
		return nil, nil, fmt.Errorf("%s: second argument: %w", fn, err)
	}
	return a, b, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene-script builtins into a zygomys
// environment. Solids are built with k; (defmesh ...) forms populate sc
// during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, k kernel.Kernel, sc *Scene) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{x: x, y: y, z: z}, nil
	})

	// -----------------------------------------------------------------------
	// (box :x 100 :y 50 :z 25)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		x, err := requireFloat(pa, "box", "x")
		if err != nil {
			return zygo.SexpNull, err
		}
		y, err := requireFloat(pa, "box", "y")
		if err != nil {
			return zygo.SexpNull, err
		}
		z, err := requireFloat(pa, "box", "z")
		if err != nil {
			return zygo.SexpNull, err
		}

		return &sexpSolid{solid: k.Box(x, y, z)}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :height 50 :radius 10)
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		height, err := requireFloat(pa, "cylinder", "height")
		if err != nil {
			return zygo.SexpNull, err
		}
		radius, err := requireFloat(pa, "cylinder", "radius")
		if err != nil {
			return zygo.SexpNull, err
		}

		return &sexpSolid{solid: k.Cylinder(height, radius)}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b) / (difference a b) / (intersection a b)
	// -----------------------------------------------------------------------
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a, b, err := twoSolids("union", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: k.Union(a, b)}, nil
	})

	env.AddFunction("difference", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a, b, err := twoSolids("difference", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: k.Difference(a, b)}, nil
	})

	env.AddFunction("intersection", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		a, b, err := twoSolids("intersection", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: k.Intersection(a, b)}, nil
	})

	// -----------------------------------------------------------------------
	// (translate solid :by (vec3 10 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("translate requires a solid as first argument")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}

		v, ok := pa.kw["by"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("translate: missing required :by")
		}
		x, y, z, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: by: %w", err)
		}

		return &sexpSolid{solid: k.Translate(s, x, y, z)}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate solid :by (vec3 0 0 90))   ; Euler angles in degrees
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a solid as first argument")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}

		v, ok := pa.kw["by"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("rotate: missing required :by")
		}
		x, y, z, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: by: %w", err)
		}

		return &sexpSolid{solid: k.Rotate(s, x, y, z)}, nil
	})

	// -----------------------------------------------------------------------
	// (defmesh "name" solid)
	// -----------------------------------------------------------------------
	env.AddFunction("defmesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defmesh requires a name and a solid expression")
		}

		meshName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defmesh: name: %w", err)
		}
		solid, err := toSolid(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defmesh: %w", err)
		}

		if err := sc.Add(meshName, solid); err != nil {
			return zygo.SexpNull, fmt.Errorf("defmesh: %w", err)
		}

		return args[1], nil
	})
}
