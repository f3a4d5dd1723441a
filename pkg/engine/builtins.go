package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms expression source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal), so
//     (is :IfcWall) reads the same as (is "IfcWall").
//
//  2. Kebab-case to underscore: entity-type -> entity_type
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
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
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only when the hyphen sits between identifier characters.
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

// checkBalanced reports the first unbalanced parenthesis of a
// preprocessed program. The parser would otherwise wait for more input.
func checkBalanced(program string) *EvalError {
	depth, line := 0, 1
	inStr, inComment := byte(0), false
	for i := 0; i < len(program); i++ {
		c := program[i]
		switch {
		case c == '\n':
			line++
			inComment = false
		case inComment:
		case inStr != 0:
			if c == '\\' && inStr == '"' {
				i++
			} else if c == inStr {
				inStr = 0
			}
		case c == '"' || c == '`':
			inStr = c
		case c == '/' && i+1 < len(program) && program[i+1] == '/':
			inComment = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return &EvalError{Line: line, Message: "unexpected ')'"}
			}
		}
	}
	if inStr != 0 {
		return &EvalError{Line: line, Message: "unterminated string"}
	}
	if depth > 0 {
		return &EvalError{Line: line, Message: "missing ')'"}
	}
	return nil
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

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// ---------------------------------------------------------------------------
// Value helpers
// ---------------------------------------------------------------------------

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_IfcWall) and plain strings.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func sexpBool(b bool) zygo.Sexp {
	return &zygo.SexpBool{Val: b}
}

func oneString(fn string, args []zygo.Sexp) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s requires exactly 1 argument, got %d", fn, len(args))
	}
	s, err := toKeywordString(args[0])
	if err != nil {
		return "", fmt.Errorf("%s: %w", fn, err)
	}
	return s, nil
}

// globs caches compiled patterns across evaluations.
var globs sync.Map

func compileGlob(pattern string) (glob.Glob, error) {
	if g, ok := globs.Load(pattern); ok {
		return g.(glob.Glob), nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	globs.Store(pattern, g)
	return g, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the entity builtins into a zygomys
// environment. subj may be nil when the source is only compiled.
//
// Source code must be preprocessed with preprocessSource() so that
// :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, subj Subject) {

	// (entity_type) -> "IfcWallStandardCase"
	env.AddFunction("entity_type", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 0 {
			return zygo.SexpNull, fmt.Errorf("entity_type takes no arguments")
		}
		return &zygo.SexpStr{S: subj.EntityType()}, nil
	})

	// (is "IfcWall") or (is :IfcWall), subtype aware
	env.AddFunction("is", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		typ, err := oneString("is", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return sexpBool(subj.Is(typ)), nil
	})

	// (attr "Name") -> string, or nil when unset
	env.AddFunction("attr", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		attr, err := oneString("attr", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		v, ok := subj.Attr(attr)
		if !ok {
			return zygo.SexpNull, nil
		}
		return &zygo.SexpStr{S: v}, nil
	})

	// (attr-number "Elevation") -> float, or nil when unset
	env.AddFunction("attr_number", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		attr, err := oneString("attr-number", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		v, ok := subj.Number(attr)
		if !ok {
			return zygo.SexpNull, nil
		}
		return &zygo.SexpFloat{Val: v}, nil
	})

	// (on_layer "A-*") -> true when any layer matches
	env.AddFunction("on_layer", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pattern, err := oneString("on_layer", args)
		if err != nil {
			return zygo.SexpNull, err
		}
		g, err := compileGlob(pattern)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("on_layer: %w", err)
		}
		for _, l := range subj.Layers() {
			if g.Match(l) {
				return sexpBool(true), nil
			}
		}
		return sexpBool(false), nil
	})

	// (glob "W-*" (attr "Tag")); nil never matches
	env.AddFunction("glob", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("glob requires a pattern and a value, got %d arguments", len(args))
		}
		pattern, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("glob: pattern: %w", err)
		}
		if args[1] == zygo.SexpNull {
			return sexpBool(false), nil
		}
		s, err := toKeywordString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("glob: value: %w", err)
		}
		g, err := compileGlob(pattern)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("glob: %w", err)
		}
		return sexpBool(g.Match(s)), nil
	})
}
