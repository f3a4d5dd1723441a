// Package engine evaluates filter expressions. Expressions are zygomys
// Lisp run in a sandbox; builtins give them read access to the entity
// under test and nothing else.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/chazu/ifcgeom/pkg/errors"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in the expression.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Subject is the entity an expression is evaluated against.
type Subject interface {
	// EntityType is the canonical IFC type name, e.g. IfcWallStandardCase.
	EntityType() string
	// Is reports whether the entity is of the type or one of its subtypes.
	Is(typ string) bool
	// Attr renders a named attribute as a string.
	Attr(name string) (string, bool)
	// Number returns a numeric attribute.
	Number(name string) (float64, bool)
	// Layers are the presentation layers the entity's representations
	// are assigned to.
	Layers() []string
}

// Predicate is a compiled expression.
type Predicate struct {
	Source  string
	program string
}

func (p *Predicate) String() string {
	return p.Source
}

// Engine wraps the zygomys interpreter. It is safe for concurrent use;
// every evaluation runs in a fresh sandbox.
type Engine struct{}

// NewEngine creates a new Engine instance.
func NewEngine() *Engine {
	return &Engine{}
}

// Compile checks that source parses and returns it as a predicate.
// Syntax errors come back as eval errors; an empty expression is
// rejected outright.
func (e *Engine) Compile(source string) (*Predicate, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil, errors.Mark(errors.New("empty expression"), errors.ErrInvalidFilter)
	}
	p := &Predicate{Source: source, program: preprocessSource(source)}
	if ee := checkBalanced(p.program); ee != nil {
		return nil, []EvalError{*ee}, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, nil)
	if err := env.LoadString(p.program); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return p, nil, nil
}

// Evaluate runs p against subj. The result is the truthiness of the last
// expression: false and nil are false, everything else is true.
//
// Return semantics:
//   - On success: returns the result + nil errors + nil error
//   - On parse/eval failure: returns false + eval errors + nil error
//   - On fatal failure (timeout, panic): returns false + nil + error
func (e *Engine) Evaluate(p *Predicate, subj Subject) (bool, []EvalError, error) {
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: errors.Newf("panic during evaluation: %v", r)}
			}
		}()

		ok, evalErrs, err := e.evaluate(p, subj)
		ch <- evalResult{match: ok, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch)
}

// Match is Evaluate with eval errors folded into the returned error.
func (e *Engine) Match(p *Predicate, subj Subject) (bool, error) {
	ok, evalErrs, err := e.Evaluate(p, subj)
	if err != nil {
		return false, errors.Wrapf(err, "expression %q", p.Source)
	}
	if len(evalErrs) > 0 {
		return false, errors.Mark(errors.Wrapf(evalErrs[0], "expression %q", p.Source), errors.ErrInvalidFilter)
	}
	return ok, nil
}

func (e *Engine) evaluate(p *Predicate, subj Subject) (bool, []EvalError, error) {
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, subj)

	if err := env.LoadString(p.program); err != nil {
		return false, parseZygomysError(err), nil
	}
	res, err := env.Run()
	if err != nil {
		return false, parseZygomysError(err), nil
	}
	return truthy(res), nil, nil
}

func truthy(s zygo.Sexp) bool {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val
	case *zygo.SexpSentinel:
		return v != zygo.SexpNull
	case nil:
		return false
	}
	return true
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
