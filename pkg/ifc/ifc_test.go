package ifc_test

import (
	"strings"
	"testing"

	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/chazu/ifcgeom/pkg/ifc/ifctest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByTypeIsSubtypeAware(t *testing.T) {
	f := ifctest.Sample(t)

	walls := f.ByType("IfcWall")
	require.Len(t, walls, 1)
	assert.Equal(t, "IfcWallStandardCase", walls[0].Type)

	// Case-insensitive and ordered by id.
	elems := f.ByType("ifcbuildingelement")
	var ids []int
	for _, e := range elems {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int{ifctest.WallID, ifctest.DoorID, ifctest.Column1ID, ifctest.Column2ID, ifctest.SlabID}, ids)

	assert.Len(t, f.ByType("IfcProduct"), 11)
}

func TestAttributes(t *testing.T) {
	f := ifctest.Sample(t)
	wall := f.ByID(ifctest.WallID)
	require.NotNil(t, wall)

	name, ok := wall.Str("Name")
	assert.True(t, ok)
	assert.Equal(t, "Wall A", name)

	tag, _ := wall.Str("Tag")
	assert.Equal(t, "W-1", tag)

	assert.True(t, wall.IsNull("ObjectType"))
	_, ok = wall.Attr("NoSuchAttribute")
	assert.False(t, ok)

	storey := f.ByID(ifctest.FirstID)
	elev, ok := storey.Float("Elevation")
	assert.True(t, ok)
	assert.Equal(t, 3000.0, elev)

	placement := wall.Ref("ObjectPlacement")
	require.NotNil(t, placement)
	assert.Equal(t, "IfcLocalPlacement", placement.Type)
}

func TestInverse(t *testing.T) {
	f := ifctest.Sample(t)
	wall := f.ByID(ifctest.WallID)

	voids := f.Inverse(wall, "IfcRelVoidsElement", "RelatingBuildingElement")
	require.Len(t, voids, 1)
	assert.Equal(t, ifctest.OpeningID, voids[0].Ref("RelatedOpeningElement").ID)

	contained := f.Inverse(wall, "IfcRelContainedInSpatialStructure", "RelatedElements")
	require.Len(t, contained, 1)
	assert.Equal(t, ifctest.GroundID, contained[0].Ref("RelatingStructure").ID)

	// The wall is the relating side, not the related one.
	assert.Empty(t, f.Inverse(wall, "IfcRelVoidsElement", "RelatedOpeningElement"))
}

func TestLayerNames(t *testing.T) {
	f := ifctest.Sample(t)
	assert.Equal(t, []string{"A-WALL"}, f.LayerNames(f.ByID(ifctest.WallID)))
	assert.Empty(t, f.LayerNames(f.ByID(ifctest.DoorID)))
}

func TestLengthUnit(t *testing.T) {
	f := ifctest.Sample(t)
	name, mag := f.LengthUnit()
	assert.Equal(t, "MILLIMETRE", name)
	assert.InDelta(t, 0.001, mag, 1e-15)
	assert.Equal(t, "mm", ifc.UnitSymbol(name))

	empty := ifc.NewFile("IFC4")
	empty.Index()
	name, mag = empty.LengthUnit()
	assert.Equal(t, ifc.DefaultLengthUnit, name)
	assert.Equal(t, 1.0, mag)
}

func TestGUID(t *testing.T) {
	tests := []struct {
		compressed string
		want       string
	}{
		{"1Gly81yXTOyyoJTJn18K5c", "50bfc201-f217-58f3-cc93-753c41214166"},
		{"0YynsouHkC4H$RXtcrniqT", "22f31db2-e11b-8c11-1fdb-8779b5c6cd1d"},
		{ifctest.WallGUID, "9808fd7f-dc48-478e-9217-628e833d5611"},
	}
	for _, tt := range tests {
		t.Run(tt.compressed, func(t *testing.T) {
			got, err := ifc.FormatGUID(tt.compressed)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			u := uuid.MustParse(tt.want)
			assert.Equal(t, tt.compressed, ifc.CompressGUID(u))
		})
	}

	_, err := ifc.FormatGUID("short")
	assert.Error(t, err)
	_, err = ifc.FormatGUID(strings.Repeat("!", 22))
	assert.Error(t, err)
	_, err = ifc.FormatGUID("z" + strings.Repeat("0", 21))
	assert.Error(t, err, "first character above 3 overflows")

	g := ifc.NewGUID()
	assert.Len(t, g, 22)
	_, err = ifc.ExpandGUID(g)
	assert.NoError(t, err)
}

func TestDuplicateInstance(t *testing.T) {
	src := "ISO-10303-21;\nDATA;\n#1=IFCWALL();\n#1=IFCSLAB();\nENDSEC;\nEND-ISO-10303-21;\n"
	_, err := ifc.Open(writeTemp(t, src))
	assert.Error(t, err)
}

func TestSubtypeTable(t *testing.T) {
	assert.True(t, ifc.IsSubtype("IfcWallStandardCase", "IfcProduct"))
	assert.True(t, ifc.IsSubtype("IFCOPENINGELEMENT", "IfcFeatureElementSubtraction"))
	assert.False(t, ifc.IsSubtype("IfcSpace", "IfcElement"))
	assert.True(t, ifc.IsSubtype("IfcUnknownThing", "IFCUNKNOWNTHING"))
	assert.Equal(t, "IfcBuildingStorey", ifc.CanonicalName("IFCBUILDINGSTOREY"))
	assert.Equal(t, "IFCWHATEVER", ifc.CanonicalName("IfcWhatever"))
	assert.True(t, ifc.KnownType("ifcdoor"))
	assert.Equal(t, []string{"IfcWallStandardCase", "IfcWall", "IfcBuildingElement", "IfcElement",
		"IfcProduct", "IfcObject", "IfcObjectDefinition", "IfcRoot"}, ifc.Supertypes("IFCWALLSTANDARDCASE"))
	assert.Equal(t, []string{"IFCWHATEVER"}, ifc.Supertypes("IfcWhatever"))
}
