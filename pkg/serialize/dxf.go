package serialize

import (
	"github.com/chazu/ifcgeom/pkg/config"
	"github.com/chazu/ifcgeom/pkg/element"
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"
	"go.uber.org/zap"
)

// DXFWriter draws the triangle edges of every element as 3D lines, with
// one layer per IFC entity type. The drawing is saved on Close.
type DXFWriter struct {
	path   string
	opts   Options
	log    *zap.SugaredLogger
	d      *drawing.Drawing
	layers map[string]bool
	lines  int
}

// NewDXF returns a writer that creates path on Close.
func NewDXF(path string, o Options, log *zap.SugaredLogger) *DXFWriter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &DXFWriter{path: path, opts: o, log: log, d: dxf.NewDrawing(), layers: make(map[string]bool)}
}

// Output implements Writer.
func (*DXFWriter) Output() string { return config.OutputTriangulated }

// Lines returns the number of line entities drawn.
func (w *DXFWriter) Lines() int { return w.lines }

// Write draws one element. Edges shared by adjacent triangles are drawn
// once.
func (w *DXFWriter) Write(s element.Stage) error {
	t, err := triangulated(s)
	if err != nil {
		return err
	}
	m := t.Geometry
	if m == nil || m.IsEmpty() {
		w.log.Debugw("skipping element without triangles", "id", t.ID)
		return nil
	}
	if err := w.layer(ifc.CanonicalName(t.Type)); err != nil {
		return err
	}
	p := w.opts.placer(t.Element)
	seen := make(map[[2]int]bool)
	for f := 0; f < m.TriangleCount(); f++ {
		tri := m.Faces[3*f : 3*f+3]
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			if a == b || seen[[2]int{a, b}] {
				continue
			}
			seen[[2]int{a, b}] = true
			pa, pb := p.point(m.Verts, a), p.point(m.Verts, b)
			if _, err := w.d.Line(pa[0], pa[1], pa[2], pb[0], pb[1], pb[2]); err != nil {
				return errors.Wrapf(err, "drawing %s", t.UniqueID)
			}
			w.lines++
		}
	}
	return nil
}

func (w *DXFWriter) layer(name string) error {
	if name == "" || w.layers[name] {
		if name == "" {
			name = "0"
		}
		return errors.Wrapf(w.d.ChangeLayer(name), "layer %s", name)
	}
	if _, err := w.d.AddLayer(name, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return errors.Wrapf(err, "layer %s", name)
	}
	w.layers[name] = true
	return nil
}

// Close saves the drawing.
func (w *DXFWriter) Close() error {
	return errors.Wrapf(w.d.SaveAs(w.path), "saving %s", w.path)
}
