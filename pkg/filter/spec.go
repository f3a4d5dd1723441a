package filter

import (
	"bufio"
	"os"
	"strings"
	"unicode"

	"github.com/chazu/ifcgeom/pkg/errors"
)

// Slot is where a filter argument was given: --include, --include+,
// --exclude or --exclude+.
type Slot int

const (
	SlotInclude Slot = iota
	SlotIncludeTraverse
	SlotExclude
	SlotExcludeTraverse
	numSlots
)

var slotNames = [numSlots]string{"include", "include+", "exclude", "exclude+"}

func (s Slot) String() string {
	if s < 0 || s >= numSlots {
		return "invalid"
	}
	return slotNames[s]
}

func (s Slot) include() bool  { return s == SlotInclude || s == SlotIncludeTraverse }
func (s Slot) traverse() bool { return s == SlotIncludeTraverse || s == SlotExcludeTraverse }

// ParseSlot maps "include", "--include+" and the like to a slot.
func ParseSlot(name string) (Slot, error) {
	name = strings.TrimLeft(name, "-")
	for i, n := range slotNames {
		if n == name {
			return Slot(i), nil
		}
	}
	return 0, errors.Mark(errors.Newf("invalid filtering type %q", name), errors.ErrInvalidFilter)
}

// Spec is an uncompiled filter: `entities IfcWall IfcSlab`,
// `layers A-*`, `arg Name "Level 1"` or `expr (is "IfcDoor")`.
type Spec struct {
	Include  bool
	Traverse bool
	Kind     Kind
	Arg      string
	Values   []string
}

// ParseSpec parses the words of one filter argument. Words of an
// expression are joined back into a single expression.
func ParseSpec(words []string) (Spec, error) {
	var s Spec
	if len(words) == 0 {
		return s, errors.Mark(errors.New("at least one value required"), errors.ErrInvalidFilter)
	}
	rest := words[1:]
	switch words[0] {
	case "entities":
		s.Kind = KindEntity
	case "layers":
		s.Kind = KindLayer
	case "arg":
		s.Kind = KindAttribute
		if len(rest) == 0 {
			return s, errors.Mark(errors.New("arg filter requires an attribute name"), errors.ErrInvalidFilter)
		}
		s.Arg, rest = rest[0], rest[1:]
	case "expr":
		s.Kind = KindExpr
		if len(rest) > 0 {
			rest = []string{strings.Join(rest, " ")}
		}
	default:
		return s, errors.WithHint(
			errors.Mark(errors.Newf("invalid filter kind %q", words[0]), errors.ErrInvalidFilter),
			"use one of: entities, layers, arg, expr")
	}
	if len(rest) == 0 {
		return s, errors.Mark(errors.Newf("%s filter requires at least one value", s.Kind), errors.ErrInvalidFilter)
	}
	s.Values = rest
	return s, nil
}

// Set accumulates the filter arguments of one run, one spec per slot.
type Set struct {
	slots [numSlots]*Spec
}

// Append parses words and merges them into the slot. Values merge when
// kind and attribute match the slot's earlier filter; a different kind
// or attribute is an error.
func (s *Set) Append(slot Slot, words []string) error {
	if slot < 0 || slot >= numSlots {
		return errors.Mark(errors.Newf("invalid slot %d", int(slot)), errors.ErrInvalidFilter)
	}
	spec, err := ParseSpec(words)
	if err != nil {
		return err
	}
	cur := s.slots[slot]
	if cur == nil {
		spec.Include, spec.Traverse = slot.include(), slot.traverse()
		spec.Values = sortedUnion(spec.Kind, nil, spec.Values)
		s.slots[slot] = &spec
		return nil
	}
	if cur.Kind != spec.Kind || cur.Arg != spec.Arg {
		return errors.Mark(errors.Newf("multiple %q filters specified with different criteria", slot.String()), errors.ErrInvalidFilter)
	}
	cur.Values = sortedUnion(cur.Kind, cur.Values, spec.Values)
	return nil
}

// AppendArg splits a command line argument such as `arg Name "Level 1"`
// and appends it.
func (s *Set) AppendArg(slot Slot, arg string) error {
	words, err := splitFilter(arg)
	if err != nil {
		return err
	}
	return s.Append(slot, words)
}

// splitFilter splits a filter argument into words. The body of an
// expression filter is kept verbatim.
func splitFilter(arg string) ([]string, error) {
	arg = strings.TrimSpace(arg)
	head, rest := cutSpace(arg)
	if head == "expr" {
		if rest == "" {
			return []string{head}, nil
		}
		return []string{head, rest}, nil
	}
	return SplitWords(arg)
}

func cutSpace(s string) (head, rest string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// Specs returns the used slots in slot order.
func (s *Set) Specs() []Spec {
	var out []Spec
	for _, sp := range s.slots {
		if sp != nil {
			out = append(out, *sp)
		}
	}
	return out
}

// Empty reports whether no filter was given.
func (s *Set) Empty() bool {
	return len(s.Specs()) == 0
}

// ReadFile reads filters from path into s and returns how many lines
// were read. Each non-blank line holds one filter, either as
// `--include=arg GlobalId 1VQ5n5$RrEbPk8le4ZCI81` or as
// `include arg GlobalId 1VQ5n5$RrEbPk8le4ZCI81`.
func (s *Set) ReadFile(path string) (int, error) {
	fh, err := os.Open(path)
	if err != nil {
		return 0, errors.Mark(errors.Wrap(err, "unable to open filter file"), errors.ErrInvalidFilter)
	}
	defer fh.Close()

	n := 0
	sc := bufio.NewScanner(fh)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		typ, rest := cutSpace(text)
		typ = strings.TrimLeft(typ, "-")
		if i := strings.IndexByte(typ, '='); i >= 0 {
			rest = typ[i+1:] + " " + rest
			typ = typ[:i]
		}
		slot, err := ParseSlot(typ)
		if err != nil {
			return n, errors.Wrapf(err, "invalid filtering type at line %d", line)
		}
		words, err := splitFilter(rest)
		if err != nil {
			return n, errors.Wrapf(err, "unable to parse filter at line %d", line)
		}
		if err := s.Append(slot, words); err != nil {
			return n, errors.Wrapf(err, "unable to parse filter at line %d", line)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, errors.Wrap(err, "reading filter file")
	}
	if n == 0 {
		return 0, errors.Mark(errors.Newf("no filters read from %s", path), errors.ErrInvalidFilter)
	}
	return n, nil
}

// SplitWords splits on spaces and tabs. Double quotes group words and
// backslash escapes the next character inside quotes.
func SplitWords(s string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		inQuote bool
	)
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case inQuote && r == '\\' && i+1 < len(rs):
			i++
			cur.WriteRune(rs[i])
		case r == '"':
			inQuote = !inQuote
			inWord = true
		case !inQuote && unicode.IsSpace(r):
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inQuote {
		return nil, errors.Mark(errors.Newf("unterminated quote in %q", s), errors.ErrInvalidFilter)
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}
