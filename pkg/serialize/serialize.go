package serialize

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/chazu/ifcgeom/pkg/config"
	"github.com/chazu/ifcgeom/pkg/element"
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
	"go.uber.org/zap"
)

// Writer consumes iterator results. Output names the iterator output mode
// the writer expects.
type Writer interface {
	Output() string
	Write(s element.Stage) error
	Close() error
}

// Options are shared by every writer.
type Options struct {
	Naming    string           // config.Naming*; empty means unique id
	Precision int              // significant digits; <= 0 means config.DefaultPrecision
	Offset    [3]float64       // added to every vertex last
	Transform taxonomy.Matrix4 // applied to placed vertices before Offset
	UnitName  string           // length unit of the emitted coordinates
}

// TempExt is appended to the output path while a conversion is running.
// Writers pick their format from the path without it.
const TempExt = ".tmp"

// Extensions lists the model file formats. A path without an extension
// names a blob directory.
var Extensions = []string{".obj", ".3mf", ".dxf"}

// New creates the writer for path, chosen by its extension.
func New(path string, o Options, log *zap.SugaredLogger) (Writer, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	switch ext := formatExt(path); ext {
	case ".obj":
		return CreateOBJ(path, o, log.Named("obj"))
	case ".3mf":
		return New3MF(path, o, log.Named("3mf")), nil
	case ".dxf":
		return NewDXF(path, o, log.Named("dxf")), nil
	case "":
		return NewBlobWriter(path, log.Named("blob"))
	default:
		_, err := OutputFor(path)
		return nil, err
	}
}

// OutputFor returns the iterator output mode needed to write path.
func OutputFor(path string) (string, error) {
	switch ext := formatExt(path); ext {
	case ".obj", ".3mf", ".dxf":
		return config.OutputTriangulated, nil
	case "":
		return config.OutputSerialized, nil
	default:
		return "", errors.WithHintf(
			errors.Mark(errors.Newf("unsupported output format %q", ext), errors.ErrInvalidConfig),
			"use one of %s or a directory name", strings.Join(Extensions, ", "))
	}
}

func formatExt(path string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSuffix(path, TempExt)))
}

// Name returns the label of e under the given naming scheme. Names are
// single tokens; whitespace becomes an underscore. Missing names fall
// back to the unique id.
func Name(e *element.Element, naming string) string {
	var s string
	switch naming {
	case config.NamingName:
		s = e.Name
	case config.NamingGUID:
		s = e.GUID
	}
	if s == "" {
		s = e.UniqueID
	}
	return token(s)
}

func token(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, s)
}

func (o Options) precision() int {
	if o.Precision <= 0 {
		return config.DefaultPrecision
	}
	return o.Precision
}

func (o Options) format(v float64) string {
	return strconv.FormatFloat(v, 'g', o.precision(), 64)
}

// placer maps element-local mesh coordinates into output space.
type placer struct {
	m      taxonomy.Matrix4
	offset [3]float64
}

func (o Options) placer(e *element.Element) placer {
	return placer{m: o.Transform.Mul(e.Transformation.Matrix), offset: o.Offset}
}

func (p placer) point(t []float64, i int) [3]float64 {
	v := p.m.Apply([3]float64{t[3*i], t[3*i+1], t[3*i+2]})
	return [3]float64{v[0] + p.offset[0], v[1] + p.offset[1], v[2] + p.offset[2]}
}

func (p placer) normal(t []float64, i int) [3]float64 {
	return taxonomy.Normalize(p.m.ApplyVector([3]float64{t[3*i], t[3*i+1], t[3*i+2]}))
}

func triangulated(s element.Stage) (*element.Triangulated, error) {
	t, ok := s.(*element.Triangulated)
	if !ok {
		return nil, errors.Newf("%s: expected a triangulated element, got %T", s.Base().UniqueID, s)
	}
	return t, nil
}

// materials names styles for formats that refer to them by name.
// Structurally equal styles share one name.
type materials struct {
	canon *taxonomy.Canonicalizer
	names map[*taxonomy.Style]string
	used  map[string]bool
	order []*taxonomy.Style
}

func newMaterials() *materials {
	return &materials{
		canon: taxonomy.NewCanonicalizer(),
		names: make(map[*taxonomy.Style]string),
		used:  make(map[string]bool),
	}
}

// name returns the material name of s and whether it is new. A nil style
// is the default material.
func (m *materials) name(s *taxonomy.Style) (string, *taxonomy.Style, error) {
	if s == nil {
		s = defaultStyle
	}
	it, _, err := m.canon.Intern(s)
	if err != nil {
		return "", nil, err
	}
	s = it.(*taxonomy.Style)
	if n, ok := m.names[s]; ok {
		return n, s, nil
	}
	base := token(s.Name)
	if base == "" {
		base = "surface-style"
	}
	n := base
	for i := 2; m.used[n]; i++ {
		n = base + "-" + strconv.Itoa(i)
	}
	m.used[n] = true
	m.names[s] = n
	m.order = append(m.order, s)
	return n, s, nil
}

var defaultStyle = &taxonomy.Style{Name: "default", Diffuse: &taxonomy.Color{0.7, 0.7, 0.7}}
