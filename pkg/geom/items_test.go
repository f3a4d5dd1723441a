package geom

import (
	"testing"

	"github.com/chazu/ifcgeom/pkg/ifc/ifctest"
	"github.com/chazu/ifcgeom/pkg/kernel/poly"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
)

const booleanModel = `#9300=IFCBOOLEANRESULT(.DIFFERENCE.,#104,#156);
#9301=IFCBOOLEANRESULT(.UNION.,#104,#156);
#9302=IFCSHAPEREPRESENTATION(#11,'Body','CSG',(#9300,#9301));
#9303=IFCCARTESIANPOINT((100.,0.,0.));
#9304=IFCCARTESIANTRANSFORMATIONOPERATOR3D($,$,#9303,$,$);
#9305=IFCMAPPEDITEM(#320,#9304);
#9306=IFCSHAPEREPRESENTATION(#11,'Body','MappedRepresentation',(#9305));
`

func TestMapBooleanResult(t *testing.T) {
	c := newConverter(t, withExtra(t, booleanModel), nil, defaultSettings())
	items := c.mapRepresentation(c.file.ByID(9302), taxonomy.Identity(), nil, 0)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 (union is not supported)", len(items))
	}
	mi := items[0]
	if mi.id != 9300 || len(mi.cut) != 1 {
		t.Errorf("item = #%d with %d cuts, want #9300 with 1", mi.id, len(mi.cut))
	}
	if mi.style == nil || mi.style.Name != "Brick" {
		t.Errorf("style = %+v, want the style of the first operand", mi.style)
	}
}

func TestBooleanResultSubtracted(t *testing.T) {
	k := &recordingKernel{PolyKernel: poly.New()}
	c := newConverter(t, withExtra(t, booleanModel), k, defaultSettings())
	items := c.mapRepresentation(c.file.ByID(9302), taxonomy.Identity(), nil, 0)
	shape, err := c.build(items[0].item)
	if err != nil {
		t.Fatalf("build() failed: %v", err)
	}
	c.subtractItems(c.file.ByID(ifctest.WallID), items[0], shape)
	if len(k.subtracted) != 1 || len(k.subtracted[0]) != 1 {
		t.Fatalf("subtractions = %v, want one", k.subtracted)
	}
	// Operands share the item frame: the opening solid sits at the origin.
	box := k.subtracted[0][0]
	if !nearVec(box.Min, [3]float64{0, 0, 0}) || !nearVec(box.Max, [3]float64{1, 0.3, 2}) {
		t.Errorf("operand box = %v", box)
	}
}

func TestMappedItemPlacement(t *testing.T) {
	c := newConverter(t, withExtra(t, booleanModel), nil, defaultSettings())
	items := c.mapRepresentation(c.file.ByID(9306), taxonomy.Identity(), nil, 0)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if got := items[0].placement.Translation(); !nearVec(got, [3]float64{0.1, 0, 0}) {
		t.Errorf("placement translation = %v, want {0.1 0 0}", got)
	}
	if items[0].id != 322 {
		t.Errorf("item id = %d, want the mapped extrusion #322", items[0].id)
	}
}
