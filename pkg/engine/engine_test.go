package engine

import (
	"strings"
	"sync"
	"testing"

	"github.com/chazu/ifcgeom/pkg/errors"
)

func TestCompileEmptyString(t *testing.T) {
	eng := NewEngine()

	for _, src := range []string{"", "   \n\t  \n  "} {
		p, evalErrs, err := eng.Compile(src)
		if err == nil {
			t.Fatalf("Compile(%q) succeeded", src)
		}
		if !errors.Is(err, errors.ErrInvalidFilter) {
			t.Errorf("Compile(%q) error = %v, want ErrInvalidFilter", src, err)
		}
		if p != nil || len(evalErrs) > 0 {
			t.Errorf("Compile(%q) = %v, %v; want nil, nil", src, p, evalErrs)
		}
	}
}

func TestCompileSyntaxError(t *testing.T) {
	eng := NewEngine()

	// Unmatched paren is a parse error.
	p, evalErrs, err := eng.Compile(`(is "IfcWall"`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if p != nil {
		t.Fatal("expected nil predicate on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateLiterals(t *testing.T) {
	eng := NewEngine()
	tests := []struct {
		src  string
		want bool
	}{
		{"true", true},
		{"false", false},
		{"(+ 1 2)", true},
		{"(> 1 2)", false},
		{"(not false)", true},
		{`"anything"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p, evalErrs, err := eng.Compile(tt.src)
			if err != nil || len(evalErrs) > 0 {
				t.Fatalf("Compile() = %v, %v", evalErrs, err)
			}
			got, evalErrs, err := eng.Evaluate(p, &fakeSubject{})
			if err != nil || len(evalErrs) > 0 {
				t.Fatalf("Evaluate() = %v, %v", evalErrs, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%s) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine()

	p, _, err := eng.Compile("(and true undefined-symbol)")
	if err != nil || p == nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	got, evalErrs, err := eng.Evaluate(p, &fakeSubject{})
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if got {
		t.Error("failed evaluation reported a match")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestMatchFoldsEvalErrors(t *testing.T) {
	eng := NewEngine()
	p, _, _ := eng.Compile(`(is 42)`)
	if p == nil {
		t.Fatal("Compile() returned nil predicate")
	}
	_, err := eng.Match(p, &fakeSubject{})
	if err == nil {
		t.Fatal("Match() succeeded on a bad argument")
	}
	if !errors.Is(err, errors.ErrInvalidFilter) {
		t.Errorf("Match() error = %v, want ErrInvalidFilter", err)
	}
	if !strings.Contains(err.Error(), "(is 42)") {
		t.Errorf("Match() error %q does not name the expression", err)
	}
}

func TestEvaluateConcurrent(t *testing.T) {
	eng := NewEngine()
	p, _, err := eng.Compile(`(is "IfcWall")`)
	if err != nil || p == nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			subj := &fakeSubject{typ: "IfcSlab"}
			if i%2 == 0 {
				subj.typ = "IfcWall"
			}
			results[i], _ = eng.Match(p, subj)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if want := i%2 == 0; got != want {
			t.Errorf("result %d = %v, want %v", i, got, want)
		}
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"Error on line 3: unexpected token", 3, "unexpected token"},
		{"line 7: bad form", 7, "bad form"},
		{"  something broke  ", 0, "something broke"},
	}
	for _, tt := range tests {
		got := parseZygomysError(errors.New(tt.msg))
		if len(got) != 1 || got[0].Line != tt.wantLine || got[0].Message != tt.wantMsg {
			t.Errorf("parseZygomysError(%q) = %+v, want line %d %q", tt.msg, got, tt.wantLine, tt.wantMsg)
		}
	}
}

func TestEvalErrorString(t *testing.T) {
	if got := (EvalError{Line: 2, Message: "x"}).Error(); got != "line 2: x" {
		t.Errorf("Error() = %q", got)
	}
	if got := (EvalError{Message: "x"}).Error(); got != "x" {
		t.Errorf("Error() = %q", got)
	}
}
