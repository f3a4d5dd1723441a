// Package tessellate turns kernel shapes into indexed triangle meshes.
// A Triangulation accumulates the meshes of every item of one
// representation; each item is added with Triangulate under the item's
// placement and style.
package tessellate

import (
	"math"

	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
	"go.uber.org/zap"
)

// normalEpsilon is the magnitude below which a surface normal is treated
// as undefined and emitted as the zero vector.
const normalEpsilon = 1e-9

// Settings are the mesh-affecting options.
type Settings struct {
	DeflectionTolerance float64
	WeldVertices        bool
	NoNormals           bool
	GenerateUVs         bool
	ConvertBackUnits    bool
	UnitMagnitude       float64 // length of one file unit in meters
}

// computeNormals reports whether per-vertex normals are produced. Welded
// vertices are shared between faces and carry no normal.
func (s Settings) computeNormals() bool {
	return !s.WeldVertices && !s.NoNormals
}

type vertexKey struct {
	style   int
	x, y, z float64
}

// Triangulation is an indexed mesh. Faces holds index triples and
// MaterialIDs one entry per triangle; Edges holds index pairs of edges
// used by exactly one triangle of the shape they came from.
type Triangulation struct {
	ID          string
	Verts       []float64
	Normals     []float64
	UVs         []float64
	Faces       []int
	Edges       []int
	MaterialIDs []int
	Materials   []*taxonomy.Style

	settings Settings
	log      *zap.SugaredLogger
	welds    map[vertexKey]int
	styles   *taxonomy.Canonicalizer
	styleIDs map[*taxonomy.Style]int
}

// New returns an empty triangulation.
func New(id string, s Settings, log *zap.SugaredLogger) *Triangulation {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if s.UnitMagnitude == 0 {
		s.UnitMagnitude = 1
	}
	return &Triangulation{
		ID:       id,
		settings: s,
		log:      log,
		welds:    make(map[vertexKey]int),
		styles:   taxonomy.NewCanonicalizer(),
		styleIDs: make(map[*taxonomy.Style]int),
	}
}

// Settings returns the options the triangulation was created with.
func (t *Triangulation) Settings() Settings {
	return t.settings
}

// AddStyle registers a surface style and returns its material id. Equal
// styles share one id. A nil style yields -1.
func (t *Triangulation) AddStyle(s *taxonomy.Style) (int, error) {
	if s == nil {
		return -1, nil
	}
	canon, _, err := t.styles.Intern(s)
	if err != nil {
		return -1, err
	}
	cs := canon.(*taxonomy.Style)
	if id, ok := t.styleIDs[cs]; ok {
		return id, nil
	}
	id := len(t.Materials)
	t.Materials = append(t.Materials, cs)
	t.styleIDs[cs] = id
	return id, nil
}

// addVertex appends a vertex, or returns the existing index of an
// identical one when welding.
func (t *Triangulation) addVertex(style int, p [3]float64) int {
	if t.settings.ConvertBackUnits {
		m := t.settings.UnitMagnitude
		p = [3]float64{p[0] / m, p[1] / m, p[2] / m}
	}
	if t.settings.WeldVertices {
		key := vertexKey{style, p[0], p[1], p[2]}
		if i, ok := t.welds[key]; ok {
			return i
		}
		i := len(t.Verts) / 3
		t.welds[key] = i
		t.Verts = append(t.Verts, p[0], p[1], p[2])
		return i
	}
	i := len(t.Verts) / 3
	t.Verts = append(t.Verts, p[0], p[1], p[2])
	return i
}

// Triangulate meshes shape with k and appends the result to t. Node
// positions are transformed by place; normals are rotated by its linear
// part. A meshing failure is logged and leaves t unchanged.
func Triangulate(k kernel.Kernel, shape kernel.Shape, place taxonomy.Matrix4, styleID int, t *Triangulation) {
	s := t.settings
	faces, err := k.Mesh(shape, s.DeflectionTolerance)
	if err != nil {
		t.log.Errorw("Failed to triangulate shape", "kernel", k.Name(), "error", err)
		return
	}

	normals := s.computeNormals()
	firstFace := len(t.Faces)
	for fi := range faces {
		f := &faces[fi]
		dict := make([]int, len(f.Nodes))
		for i, node := range f.Nodes {
			dict[i] = t.addVertex(styleID, place.Apply(node))
			if !normals {
				continue
			}
			var n [3]float64
			raw, err := k.SurfaceNormal(f, f.UVs[i])
			if err != nil {
				t.log.Debugw("Surface normal unavailable", "error", err)
			} else if math.Sqrt(taxonomy.Dot(raw, raw)) > normalEpsilon {
				n = taxonomy.Normalize(place.ApplyVector(raw))
			}
			t.Normals = append(t.Normals, n[0], n[1], n[2])
			if s.GenerateUVs {
				uv := boxProject(t.Verts[dict[i]*3:dict[i]*3+3], n)
				t.UVs = append(t.UVs, uv[0], uv[1])
			}
		}
		for _, tri := range f.Triangles {
			n1, n2, n3 := tri[0], tri[1], tri[2]
			if f.Reversed {
				n1, n3 = n3, n1
			}
			t.Faces = append(t.Faces, dict[n1], dict[n2], dict[n3])
			t.MaterialIDs = append(t.MaterialIDs, styleID)
		}
	}
	t.Edges = append(t.Edges, BoundaryEdges(t.Faces[firstFace:])...)
}

// boxProject picks texture coordinates from the two axes perpendicular to
// the dominant normal component.
func boxProject(p []float64, n [3]float64) [2]float64 {
	ax, ay, az := math.Abs(n[0]), math.Abs(n[1]), math.Abs(n[2])
	switch {
	case ax >= ay && ax >= az:
		return [2]float64{p[1], p[2]}
	case ay >= az:
		return [2]float64{p[0], p[2]}
	default:
		return [2]float64{p[0], p[1]}
	}
}

type edgeKey struct{ a, b int }

// BoundaryEdges returns, as index pairs in first-seen order, the edges of
// faces referenced by exactly one triangle.
func BoundaryEdges(faces []int) []int {
	counts := make(map[edgeKey]int)
	var order []edgeKey
	add := func(a, b int) {
		if a > b {
			a, b = b, a
		}
		k := edgeKey{a, b}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}
	for i := 0; i+2 < len(faces); i += 3 {
		add(faces[i], faces[i+1])
		add(faces[i+1], faces[i+2])
		add(faces[i+2], faces[i])
	}
	var edges []int
	for _, k := range order {
		if counts[k] == 1 {
			edges = append(edges, k.a, k.b)
		}
	}
	return edges
}
