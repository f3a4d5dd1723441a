package serialize

import (
	"image/color"
	"math"

	"github.com/chazu/ifcgeom/pkg/config"
	"github.com/chazu/ifcgeom/pkg/element"
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
	"github.com/hpinc/go3mf"
	"go.uber.org/zap"
)

// the base material group is always resource 1, objects follow
const baseMaterialsID = 1

// ThreeMFWriter collects triangulated elements into a 3MF package, one
// mesh object and build item per element. Styles become base materials.
// The package is encoded on Close.
type ThreeMFWriter struct {
	path  string
	opts  Options
	log   *zap.SugaredLogger
	model *go3mf.Model
	mats  *materials
	bases *go3mf.BaseMaterials
	index map[string]uint32
	next  uint32
}

// New3MF returns a writer that creates path on Close.
func New3MF(path string, o Options, log *zap.SugaredLogger) *ThreeMFWriter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ThreeMFWriter{
		path:  path,
		opts:  o,
		log:   log,
		model: &go3mf.Model{Units: units3MF(o.UnitName)},
		mats:  newMaterials(),
		bases: &go3mf.BaseMaterials{ID: baseMaterialsID},
		index: make(map[string]uint32),
		next:  baseMaterialsID + 1,
	}
}

func units3MF(name string) go3mf.Units {
	switch name {
	case "MILLIMETRE", "MILLIMETER":
		return go3mf.UnitMillimeter
	case "CENTIMETRE", "CENTIMETER":
		return go3mf.UnitCentimeter
	case "MICROMETRE", "MICROMETER":
		return go3mf.UnitMicrometer
	case "INCH":
		return go3mf.UnitInch
	case "FOOT":
		return go3mf.UnitFoot
	default:
		return go3mf.UnitMeter
	}
}

// Output implements Writer.
func (*ThreeMFWriter) Output() string { return config.OutputTriangulated }

// Model returns the model collected so far.
func (w *ThreeMFWriter) Model() *go3mf.Model { return w.model }

// Write adds one mesh object. Empty meshes are skipped.
func (w *ThreeMFWriter) Write(s element.Stage) error {
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
	mesh := &go3mf.Mesh{}
	for i := 0; i < m.VertexCount(); i++ {
		v := p.point(m.Verts, i)
		mesh.Vertices.Vertex = append(mesh.Vertices.Vertex, go3mf.Point3D{float32(v[0]), float32(v[1]), float32(v[2])})
	}
	var first uint32
	for f := 0; f < m.TriangleCount(); f++ {
		var style *taxonomy.Style
		if id := m.MaterialIDs[f]; id >= 0 {
			style = m.Materials[id]
		}
		idx, err := w.material(style)
		if err != nil {
			return errors.Wrapf(err, "material of %s", t.UniqueID)
		}
		if f == 0 {
			first = idx
		}
		mesh.Triangles.Triangle = append(mesh.Triangles.Triangle, go3mf.Triangle{
			V1: uint32(m.Faces[3*f]), V2: uint32(m.Faces[3*f+1]), V3: uint32(m.Faces[3*f+2]),
			PID: baseMaterialsID, P1: idx, P2: idx, P3: idx,
		})
	}

	obj := &go3mf.Object{
		ID:     w.next,
		Name:   Name(t.Element, w.opts.Naming),
		PID:    baseMaterialsID,
		PIndex: first,
		Mesh:   mesh,
	}
	w.next++
	w.model.Resources.Objects = append(w.model.Resources.Objects, obj)
	w.model.Build.Items = append(w.model.Build.Items, &go3mf.Item{ObjectID: obj.ID})
	return nil
}

func (w *ThreeMFWriter) material(s *taxonomy.Style) (uint32, error) {
	name, s, err := w.mats.name(s)
	if err != nil {
		return 0, err
	}
	if i, ok := w.index[name]; ok {
		return i, nil
	}
	i := uint32(len(w.bases.Materials))
	w.bases.Materials = append(w.bases.Materials, go3mf.Base{Name: name, Color: rgba(s)})
	w.index[name] = i
	return i, nil
}

func rgba(s *taxonomy.Style) color.RGBA {
	c := taxonomy.Color{0.7, 0.7, 0.7}
	if s.Diffuse != nil {
		c = *s.Diffuse
	}
	alpha := 1.0
	if s.HasTransparency() {
		alpha = 1 - *s.Transparency
	}
	return color.RGBA{R: channel(c[0]), G: channel(c[1]), B: channel(c[2]), A: channel(alpha)}
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// Close encodes the package.
func (w *ThreeMFWriter) Close() error {
	if len(w.bases.Materials) > 0 {
		w.model.Resources.Assets = append(w.model.Resources.Assets, w.bases)
	}
	out, err := go3mf.CreateWriter(w.path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", w.path)
	}
	if err := out.Encode(w.model); err != nil {
		out.Close()
		return errors.Wrapf(err, "encoding %s", w.path)
	}
	return out.Close()
}
