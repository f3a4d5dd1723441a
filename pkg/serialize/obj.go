package serialize

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/ifcgeom/pkg/config"
	"github.com/chazu/ifcgeom/pkg/element"
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
	"go.uber.org/zap"
)

// OBJWriter writes triangulated elements as Wavefront OBJ groups, one per
// element, with the materials collected into a companion MTL file.
type OBJWriter struct {
	opts    Options
	log     *zap.SugaredLogger
	obj     *bufio.Writer
	mtl     *bufio.Writer
	closers []io.Closer
	mats    *materials

	// running OBJ indices are 1-based and global to the file
	vertices, normals, uvs int
	elements               int
}

// CreateOBJ creates path and its .mtl sibling. A trailing TempExt is
// ignored when naming the material file.
func CreateOBJ(path string, o Options, log *zap.SugaredLogger) (*OBJWriter, error) {
	base := strings.TrimSuffix(path, TempExt)
	mtlPath := strings.TrimSuffix(base, filepath.Ext(base)) + ".mtl"
	of, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", path)
	}
	mf, err := os.Create(mtlPath)
	if err != nil {
		of.Close()
		return nil, errors.Wrapf(err, "creating %s", mtlPath)
	}
	w := NewOBJWriter(of, mf, filepath.Base(mtlPath), o, log)
	w.closers = []io.Closer{of, mf}
	return w, nil
}

// NewOBJWriter writes to obj and mtl. mtlName is the file name referenced
// by the mtllib statement.
func NewOBJWriter(obj, mtl io.Writer, mtlName string, o Options, log *zap.SugaredLogger) *OBJWriter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	w := &OBJWriter{
		opts: o,
		log:  log,
		obj:  bufio.NewWriter(obj),
		mtl:  bufio.NewWriter(mtl),
		mats: newMaterials(),
	}
	fmt.Fprintf(w.obj, "# File generated by ifcgeom\n")
	if o.UnitName != "" {
		fmt.Fprintf(w.obj, "# Units: %s\n", o.UnitName)
	}
	fmt.Fprintf(w.obj, "mtllib %s\n", mtlName)
	fmt.Fprintf(w.mtl, "# File generated by ifcgeom\n")
	return w
}

// Output implements Writer.
func (*OBJWriter) Output() string { return config.OutputTriangulated }

// Elements returns the number of groups written.
func (w *OBJWriter) Elements() int { return w.elements }

// Write appends one group. Empty meshes are skipped.
func (w *OBJWriter) Write(s element.Stage) error {
	t, err := triangulated(s)
	if err != nil {
		return err
	}
	m := t.Geometry
	if m == nil || m.IsEmpty() {
		w.log.Debugw("skipping element without triangles", "id", t.ID)
		return nil
	}
	p := w.opts.placer(t.Element)
	nv := m.VertexCount()

	fmt.Fprintf(w.obj, "g %s\n", Name(t.Element, w.opts.Naming))
	fmt.Fprintf(w.obj, "s 1\n")
	for i := 0; i < nv; i++ {
		w.vec("v", p.point(m.Verts, i))
	}
	normals := m.HasNormals()
	if normals {
		for i := 0; i < nv; i++ {
			w.vec("vn", p.normal(m.Normals, i))
		}
	}
	uvs := len(m.UVs) == 2*nv && nv > 0
	if uvs {
		for i := 0; i < nv; i++ {
			fmt.Fprintf(w.obj, "vt %s %s\n", w.opts.format(m.UVs[2*i]), w.opts.format(m.UVs[2*i+1]))
		}
	}

	current := ""
	for f := 0; f < m.TriangleCount(); f++ {
		var style *taxonomy.Style
		if id := m.MaterialIDs[f]; id >= 0 {
			style = m.Materials[id]
		}
		name, _, err := w.mats.name(style)
		if err != nil {
			return errors.Wrapf(err, "material of %s", t.UniqueID)
		}
		if name != current {
			fmt.Fprintf(w.obj, "usemtl %s\n", name)
			current = name
		}
		w.obj.WriteString("f")
		for _, vi := range m.Faces[3*f : 3*f+3] {
			v := w.vertices + vi + 1
			switch {
			case normals && uvs:
				fmt.Fprintf(w.obj, " %d/%d/%d", v, w.uvs+vi+1, w.normals+vi+1)
			case normals:
				fmt.Fprintf(w.obj, " %d//%d", v, w.normals+vi+1)
			case uvs:
				fmt.Fprintf(w.obj, " %d/%d", v, w.uvs+vi+1)
			default:
				fmt.Fprintf(w.obj, " %d", v)
			}
		}
		w.obj.WriteString("\n")
	}

	w.vertices += nv
	if normals {
		w.normals += nv
	}
	if uvs {
		w.uvs += nv
	}
	w.elements++
	return nil
}

func (w *OBJWriter) vec(tag string, v [3]float64) {
	fmt.Fprintf(w.obj, "%s %s %s %s\n", tag, w.opts.format(v[0]), w.opts.format(v[1]), w.opts.format(v[2]))
}

// Close writes the material library and flushes both files.
func (w *OBJWriter) Close() error {
	for _, s := range w.mats.order {
		w.writeMaterial(w.mats.names[s], s)
	}
	var errs []error
	if err := w.obj.Flush(); err != nil {
		errs = append(errs, errors.Wrap(err, "flushing obj"))
	}
	if err := w.mtl.Flush(); err != nil {
		errs = append(errs, errors.Wrap(err, "flushing mtl"))
	}
	for _, c := range w.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (w *OBJWriter) writeMaterial(name string, s *taxonomy.Style) {
	fmt.Fprintf(w.mtl, "newmtl %s\n", name)
	if s.Diffuse != nil {
		w.color("Kd", *s.Diffuse)
	}
	if s.Specular != nil {
		w.color("Ks", *s.Specular)
	}
	if s.Specularity != nil {
		fmt.Fprintf(w.mtl, "Ns %s\n", w.opts.format(*s.Specularity))
	}
	if s.HasTransparency() {
		fmt.Fprintf(w.mtl, "d %s\n", w.opts.format(1-*s.Transparency))
	}
}

func (w *OBJWriter) color(tag string, c taxonomy.Color) {
	fmt.Fprintf(w.mtl, "%s %s %s %s\n", tag, w.opts.format(c[0]), w.opts.format(c[1]), w.opts.format(c[2]))
}
