// Package step reads ISO 10303-21 physical files ("STEP part 21"), the
// text encoding used by .ifc files. It produces raw records; schema
// knowledge lives in package ifc.
package step

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/chazu/ifcgeom/pkg/errors"
)

// Kind discriminates parameter values.
type Kind int

const (
	KindNull    Kind = iota // $
	KindDerived             // *
	KindInteger
	KindReal
	KindString
	KindEnum   // .ELEMENT.
	KindRef    // #12
	KindList   // (a, b)
	KindTyped  // IFCLENGTHMEASURE(1.)
	KindBinary // "0FF"
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindDerived:
		return "derived"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindRef:
		return "ref"
	case KindList:
		return "list"
	case KindTyped:
		return "typed"
	case KindBinary:
		return "binary"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single parameter. Only the fields matching Kind are set.
// Typed values keep the type name in Str and the wrapped value in List[0].
type Value struct {
	Kind Kind
	Int  int64
	Real float64
	Str  string
	Ref  int
	List []Value
}

// Record is one entity instance line.
type Record struct {
	ID   int
	Type string // upper case as written
	Args []Value
	Line int
}

// File holds the header schema identifiers and data section records in
// file order.
type File struct {
	Schemas     []string
	Description []string
	Records     []Record
}

// Parse reads a whole physical file.
func Parse(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading step file")
	}
	p := &parser{src: data, line: 1}
	return p.file()
}

// ParseString is Parse over a string.
func ParseString(s string) (*File, error) {
	return Parse(strings.NewReader(s))
}

type parser struct {
	src  []byte
	pos  int
	line int
}

func (p *parser) errorf(format string, args ...any) error {
	return errors.Mark(
		errors.Newf("line %d: %s", p.line, fmt.Sprintf(format, args...)),
		errors.ErrParse)
}

func (p *parser) file() (*File, error) {
	f := &File{}
	if err := p.expectKeyword("ISO-10303-21"); err != nil {
		return nil, err
	}
	if err := p.expect(';'); err != nil {
		return nil, err
	}
	for {
		kw, err := p.keyword()
		if err != nil {
			return nil, err
		}
		switch kw {
		case "HEADER":
			if err := p.header(f); err != nil {
				return nil, err
			}
		case "DATA":
			if err := p.data(f); err != nil {
				return nil, err
			}
		case "END-ISO-10303-21":
			return f, nil
		default:
			return nil, p.errorf("unexpected section %q", kw)
		}
	}
}

func (p *parser) header(f *File) error {
	if err := p.expect(';'); err != nil {
		return err
	}
	for {
		kw, err := p.keyword()
		if err != nil {
			return err
		}
		if kw == "ENDSEC" {
			return p.expect(';')
		}
		args, err := p.params()
		if err != nil {
			return err
		}
		if err := p.expect(';'); err != nil {
			return err
		}
		switch kw {
		case "FILE_SCHEMA":
			f.Schemas = collectStrings(args)
		case "FILE_DESCRIPTION":
			if len(args) > 0 {
				f.Description = collectStrings(args[:1])
			}
		}
	}
}

func collectStrings(vs []Value) []string {
	var out []string
	for _, v := range vs {
		switch v.Kind {
		case KindString:
			out = append(out, v.Str)
		case KindList:
			out = append(out, collectStrings(v.List)...)
		}
	}
	return out
}

func (p *parser) data(f *File) error {
	// DATA may carry an optional parameter list in later editions.
	p.skipSpace()
	if p.peek() == '(' {
		if _, err := p.params(); err != nil {
			return err
		}
	}
	if err := p.expect(';'); err != nil {
		return err
	}
	for {
		p.skipSpace()
		if p.peek() != '#' {
			kw, err := p.keyword()
			if err != nil {
				return err
			}
			if kw != "ENDSEC" {
				return p.errorf("expected instance or ENDSEC, got %q", kw)
			}
			return p.expect(';')
		}
		line := p.line
		p.pos++
		id, err := p.integer()
		if err != nil {
			return err
		}
		if err := p.expect('='); err != nil {
			return err
		}
		p.skipSpace()
		if p.peek() == '(' {
			return p.errorf("complex entity instances (#%d) are not supported", id)
		}
		typ, err := p.keyword()
		if err != nil {
			return err
		}
		args, err := p.params()
		if err != nil {
			return err
		}
		if err := p.expect(';'); err != nil {
			return err
		}
		f.Records = append(f.Records, Record{ID: int(id), Type: typ, Args: args, Line: line})
	}
}

// params parses a parenthesized, comma separated parameter list.
func (p *parser) params() ([]Value, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	vals := []Value{}
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return vals, nil
	}
	for {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return vals, nil
		default:
			return nil, p.errorf("expected ',' or ')', got %q", p.peekString())
		}
	}
}

func (p *parser) value() (Value, error) {
	p.skipSpace()
	c := p.peek()
	switch {
	case c == '$':
		p.pos++
		return Value{Kind: KindNull}, nil
	case c == '*':
		p.pos++
		return Value{Kind: KindDerived}, nil
	case c == '#':
		p.pos++
		id, err := p.integer()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindRef, Ref: int(id)}, nil
	case c == '\'':
		s, err := p.str()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Str: s}, nil
	case c == '"':
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != '"' {
			p.pos++
		}
		if p.pos >= len(p.src) {
			return Value{}, p.errorf("unterminated binary literal")
		}
		s := string(p.src[start:p.pos])
		p.pos++
		return Value{Kind: KindBinary, Str: s}, nil
	case c == '.':
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != '.' {
			p.pos++
		}
		if p.pos >= len(p.src) {
			return Value{}, p.errorf("unterminated enumeration")
		}
		s := string(p.src[start:p.pos])
		p.pos++
		return Value{Kind: KindEnum, Str: s}, nil
	case c == '(':
		list, err := p.params()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindList, List: list}, nil
	case c == '-' || c == '+' || isDigit(c):
		return p.number()
	case isLetter(c):
		typ, err := p.keyword()
		if err != nil {
			return Value{}, err
		}
		inner, err := p.params()
		if err != nil {
			return Value{}, err
		}
		if len(inner) != 1 {
			return Value{}, p.errorf("typed parameter %s takes one value, got %d", typ, len(inner))
		}
		return Value{Kind: KindTyped, Str: typ, List: inner}, nil
	default:
		return Value{}, p.errorf("unexpected %q", p.peekString())
	}
}

func (p *parser) number() (Value, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	isReal := false
scan:
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case isDigit(c):
		case c == '.' || c == 'E' || c == 'e':
			isReal = true
		case (c == '-' || c == '+') && isReal && (p.src[p.pos-1] == 'E' || p.src[p.pos-1] == 'e'):
		default:
			break scan
		}
		p.pos++
	}
	text := string(p.src[start:p.pos])
	if !isReal {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return Value{}, p.errorf("bad integer %q", text)
		}
		return Value{Kind: KindInteger, Int: n}, nil
	}
	// STEP allows "1." and "1.E-3".
	norm := strings.Replace(text, ".E", ".0E", 1)
	norm = strings.Replace(norm, ".e", ".0e", 1)
	f, err := strconv.ParseFloat(norm, 64)
	if err != nil {
		return Value{}, p.errorf("bad real %q", text)
	}
	return Value{Kind: KindReal, Real: f}, nil
}

func (p *parser) integer() (int64, error) {
	start := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return 0, p.errorf("expected integer, got %q", p.peekString())
	}
	return strconv.ParseInt(string(p.src[start:p.pos]), 10, 64)
}

// str reads a quoted string and decodes the \X\, \X2\ and \S\ escapes.
func (p *parser) str() (string, error) {
	p.pos++ // opening quote
	var sb strings.Builder
	for {
		if p.pos >= len(p.src) {
			return "", p.errorf("unterminated string")
		}
		c := p.src[p.pos]
		if c == '\n' {
			p.line++
		}
		if c == '\'' {
			if p.pos+1 < len(p.src) && p.src[p.pos+1] == '\'' {
				sb.WriteByte('\'')
				p.pos += 2
				continue
			}
			p.pos++
			return sb.String(), nil
		}
		if c == '\\' {
			n, err := p.escape(&sb)
			if err != nil {
				return "", err
			}
			if n > 0 {
				continue
			}
		}
		sb.WriteByte(c)
		p.pos++
	}
}

// escape decodes one escape sequence at p.pos. It returns 0 when the
// backslash is literal.
func (p *parser) escape(sb *strings.Builder) (int, error) {
	rest := p.src[p.pos:]
	switch {
	case hasPrefix(rest, `\\`):
		sb.WriteByte('\\')
		p.pos += 2
		return 2, nil
	case hasPrefix(rest, `\X2\`):
		start := p.pos
		p.pos += 4
		var units []uint16
		for !hasPrefix(p.src[p.pos:], `\X0\`) {
			if p.pos+4 > len(p.src) {
				return 0, p.errorf("unterminated \\X2\\ escape")
			}
			u, err := strconv.ParseUint(string(p.src[p.pos:p.pos+4]), 16, 16)
			if err != nil {
				return 0, p.errorf("bad \\X2\\ escape")
			}
			units = append(units, uint16(u))
			p.pos += 4
		}
		p.pos += 4
		sb.WriteString(string(utf16.Decode(units)))
		return p.pos - start, nil
	case hasPrefix(rest, `\X\`) && len(rest) >= 5:
		b, err := strconv.ParseUint(string(rest[3:5]), 16, 8)
		if err != nil {
			return 0, p.errorf("bad \\X\\ escape")
		}
		sb.WriteRune(rune(b))
		p.pos += 5
		return 5, nil
	case hasPrefix(rest, `\S\`) && len(rest) >= 4:
		sb.WriteRune(rune(rest[3]) + 128)
		p.pos += 4
		return 4, nil
	}
	return 0, nil
}

func hasPrefix(b []byte, s string) bool {
	return len(b) >= len(s) && string(b[:len(s)]) == s
}

// keyword reads an identifier such as IFCWALL or END-ISO-10303-21.
func (p *parser) keyword() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if isLetter(c) || isDigit(c) || c == '_' || c == '-' {
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		if p.pos >= len(p.src) {
			return "", p.errorf("unexpected end of file")
		}
		return "", p.errorf("expected keyword, got %q", p.peekString())
	}
	return strings.ToUpper(string(p.src[start:p.pos])), nil
}

func (p *parser) expectKeyword(kw string) error {
	got, err := p.keyword()
	if err != nil {
		return err
	}
	if got != kw {
		return p.errorf("expected %s, got %s", kw, got)
	}
	return nil
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return p.errorf("expected %q, got %q", c, p.peekString())
	}
	p.pos++
	return nil
}

// skipSpace skips whitespace and /* */ comments.
func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\n':
			p.line++
			p.pos++
		case c == ' ' || c == '\t' || c == '\r':
			p.pos++
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '*':
			p.pos += 2
			for p.pos+1 < len(p.src) && !(p.src[p.pos] == '*' && p.src[p.pos+1] == '/') {
				if p.src[p.pos] == '\n' {
					p.line++
				}
				p.pos++
			}
			p.pos += 2
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) peekString() string {
	if p.pos >= len(p.src) {
		return "EOF"
	}
	end := p.pos + 10
	if end > len(p.src) {
		end = len(p.src)
	}
	return string(p.src[p.pos:end])
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
