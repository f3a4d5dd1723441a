// Package ifctest provides small in-memory IFC models for tests.
package ifctest

import (
	"testing"

	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/chazu/ifcgeom/pkg/step"
)

// Well-known instance ids in Sample.
const (
	ProjectID  = 1
	SiteID     = 30
	BuildingID = 40
	GroundID   = 50
	FirstID    = 55
	WallID     = 100
	OpeningID  = 150
	DoorID     = 200
	Column1ID  = 300
	Column2ID  = 310
	SpaceID    = 400
	SlabID     = 500
)

// WallGUID is the GlobalId of the wall in Sample.
const WallGUID = "2O2Fr$t4X7Zf8NOew3FLOH"

// SampleSource is a two storey model in millimetres:
//   - ground floor: a 5000x200x3000 wall (layer A-WALL, brick style) with
//     a 1000x2000 opening filled by a door, a room and a slab,
//   - first floor: two columns sharing one mapped representation.
const SampleSource = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [CoordinationView]'),'2;1');
FILE_NAME('sample.ifc','2024-05-01T10:00:00',('ifcgeom'),(''),'','','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#1=IFCPROJECT('1Gly81yXTOyyoJTJn18K5c',$,'Sample',$,$,$,$,(#10),#20);
#10=IFCGEOMETRICREPRESENTATIONCONTEXT($,'Model',3,1.E-05,#13,$);
#11=IFCGEOMETRICREPRESENTATIONSUBCONTEXT('Body','Model',*,*,*,*,#10,$,.MODEL_VIEW.,$);
#13=IFCAXIS2PLACEMENT3D(#14,$,$);
#14=IFCCARTESIANPOINT((0.,0.,0.));
#20=IFCUNITASSIGNMENT((#21,#22));
#21=IFCSIUNIT(*,.LENGTHUNIT.,.MILLI.,.METRE.);
#22=IFCSIUNIT(*,.PLANEANGLEUNIT.,$,.RADIAN.);
#30=IFCSITE('0YynsouHkC4H$RXtcrniqT',$,'Site',$,$,#31,$,$,.ELEMENT.,$,$,$,$,$);
#31=IFCLOCALPLACEMENT($,#13);
#40=IFCBUILDING('23ZKfDRYaF8zzBi8qJ2bsr',$,'Building',$,$,#41,$,$,.ELEMENT.,$,$,$);
#41=IFCLOCALPLACEMENT(#31,#13);
#50=IFCBUILDINGSTOREY('055mgZU4d09D4PqbXJ5hek',$,'Ground',$,$,#51,$,$,.ELEMENT.,0.);
#51=IFCLOCALPLACEMENT(#41,#13);
#55=IFCBUILDINGSTOREY('1mmwnDYtUctXch1re2mH7g',$,'First',$,$,#56,$,$,.ELEMENT.,3000.);
#56=IFCLOCALPLACEMENT(#41,#57);
#57=IFCAXIS2PLACEMENT3D(#58,$,$);
#58=IFCCARTESIANPOINT((0.,0.,3000.));
#60=IFCRELAGGREGATES('3jjZ_272lWwceMkNelXcmD',$,$,$,#1,(#30));
#61=IFCRELAGGREGATES('0GdSYUfNtCDfgSuLAhRvYS',$,$,$,#30,(#40));
#62=IFCRELAGGREGATES('04OeNZhAiGrbYxirbrq4qJ',$,$,$,#40,(#55,#50));
#63=IFCRELCONTAINEDINSPATIALSTRUCTURE('10ztS4wahT8aFV54Pt61zF',$,$,$,(#100,#200,#400,#500),#50);
#64=IFCRELCONTAINEDINSPATIALSTRUCTURE('1cU2q6EhGWz7jSPFFLUZG0',$,$,$,(#300,#310),#55);
#100=IFCWALLSTANDARDCASE('2O2Fr$t4X7Zf8NOew3FLOH',$,'Wall A','Load bearing',$,#101,#102,'W-1',$);
#101=IFCLOCALPLACEMENT(#51,#13);
#102=IFCPRODUCTDEFINITIONSHAPE($,$,(#103));
#103=IFCSHAPEREPRESENTATION(#11,'Body','SweptSolid',(#104));
#104=IFCEXTRUDEDAREASOLID(#105,#107,#109,3000.);
#105=IFCRECTANGLEPROFILEDEF(.AREA.,$,#106,5000.,200.);
#106=IFCAXIS2PLACEMENT2D(#110,$);
#107=IFCAXIS2PLACEMENT3D(#14,$,$);
#109=IFCDIRECTION((0.,0.,1.));
#110=IFCCARTESIANPOINT((2500.,100.));
#111=IFCSTYLEDITEM(#104,(#112),$);
#112=IFCSURFACESTYLE('Brick',.BOTH.,(#113));
#113=IFCSURFACESTYLERENDERING(#114,0.,$,$,$,$,$,$,.NOTDEFINED.);
#114=IFCCOLOURRGB($,0.6,0.3,0.2);
#115=IFCPRESENTATIONLAYERASSIGNMENT('A-WALL',$,(#103),$);
#150=IFCOPENINGELEMENT('3p6YVYs6yf07G5F68z4B_e',$,'Opening',$,$,#151,#152,$,$);
#151=IFCLOCALPLACEMENT(#101,#153);
#152=IFCPRODUCTDEFINITIONSHAPE($,$,(#155));
#153=IFCAXIS2PLACEMENT3D(#154,$,$);
#154=IFCCARTESIANPOINT((1000.,-50.,0.));
#155=IFCSHAPEREPRESENTATION(#11,'Body','SweptSolid',(#156));
#156=IFCEXTRUDEDAREASOLID(#157,#107,#109,2000.);
#157=IFCRECTANGLEPROFILEDEF(.AREA.,$,#158,1000.,300.);
#158=IFCAXIS2PLACEMENT2D(#159,$);
#159=IFCCARTESIANPOINT((500.,150.));
#160=IFCRELVOIDSELEMENT('1e9innckXOgsFG0mAM5lwm',$,$,$,#100,#150);
#200=IFCDOOR('0t6l$errw2VRY9sSsG3flX',$,'Door',$,$,#201,#202,'D-1',2000.,1000.);
#201=IFCLOCALPLACEMENT(#151,#13);
#202=IFCPRODUCTDEFINITIONSHAPE($,$,(#203));
#203=IFCSHAPEREPRESENTATION(#11,'Body','SweptSolid',(#204));
#204=IFCEXTRUDEDAREASOLID(#205,#107,#109,2000.);
#205=IFCRECTANGLEPROFILEDEF(.AREA.,$,#206,1000.,50.);
#206=IFCAXIS2PLACEMENT2D(#207,$);
#207=IFCCARTESIANPOINT((500.,125.));
#210=IFCRELFILLSELEMENT('0xFmDeD0yIUn5BCmM3hF3E',$,$,$,#150,#200);
#300=IFCCOLUMN('3acB4UDC7fN9UNVwoWloir',$,'Column 1',$,$,#301,#302,'C-1',$);
#301=IFCLOCALPLACEMENT(#56,#303);
#302=IFCPRODUCTDEFINITIONSHAPE($,$,(#305));
#303=IFCAXIS2PLACEMENT3D(#304,$,$);
#304=IFCCARTESIANPOINT((500.,500.,0.));
#305=IFCSHAPEREPRESENTATION(#11,'Body','MappedRepresentation',(#306));
#306=IFCMAPPEDITEM(#320,#307);
#307=IFCCARTESIANTRANSFORMATIONOPERATOR3D($,$,#14,$,$);
#310=IFCCOLUMN('0mUqKrzJpJKC$zuNHYPIeT',$,'Column 2',$,$,#311,#312,'C-2',$);
#311=IFCLOCALPLACEMENT(#56,#313);
#312=IFCPRODUCTDEFINITIONSHAPE($,$,(#315));
#313=IFCAXIS2PLACEMENT3D(#314,$,$);
#314=IFCCARTESIANPOINT((4500.,500.,0.));
#315=IFCSHAPEREPRESENTATION(#11,'Body','MappedRepresentation',(#316));
#316=IFCMAPPEDITEM(#320,#307);
#320=IFCREPRESENTATIONMAP(#13,#321);
#321=IFCSHAPEREPRESENTATION(#11,'Body','SweptSolid',(#322));
#322=IFCEXTRUDEDAREASOLID(#323,#107,#109,2800.);
#323=IFCCIRCLEPROFILEDEF(.AREA.,$,$,150.);
#400=IFCSPACE('2qYRd2YzmPMkUfzIrzQx3z',$,'Room',$,$,#401,#402,$,.ELEMENT.,.INTERNAL.,$);
#401=IFCLOCALPLACEMENT(#51,#13);
#402=IFCPRODUCTDEFINITIONSHAPE($,$,(#403));
#403=IFCSHAPEREPRESENTATION(#11,'Body','SweptSolid',(#404));
#404=IFCEXTRUDEDAREASOLID(#405,#107,#109,2800.);
#405=IFCRECTANGLEPROFILEDEF(.AREA.,$,#406,4000.,4000.);
#406=IFCAXIS2PLACEMENT2D(#407,$);
#407=IFCCARTESIANPOINT((2000.,2200.));
#500=IFCSLAB('0p5xTU8RWUOXHN4WL5eNsB',$,'Floor',$,$,#501,#502,'S-1',.FLOOR.);
#501=IFCLOCALPLACEMENT(#51,#13);
#502=IFCPRODUCTDEFINITIONSHAPE($,$,(#503));
#503=IFCSHAPEREPRESENTATION(#11,'Body','SweptSolid',(#504));
#504=IFCEXTRUDEDAREASOLID(#505,#507,#109,200.);
#505=IFCARBITRARYCLOSEDPROFILEDEF(.AREA.,'L-shape',#506);
#506=IFCPOLYLINE((#510,#511,#512,#513,#514,#515,#510));
#507=IFCAXIS2PLACEMENT3D(#508,$,$);
#508=IFCCARTESIANPOINT((0.,0.,-200.));
#510=IFCCARTESIANPOINT((0.,0.));
#511=IFCCARTESIANPOINT((5000.,0.));
#512=IFCCARTESIANPOINT((5000.,2000.));
#513=IFCCARTESIANPOINT((2000.,2000.));
#514=IFCCARTESIANPOINT((2000.,4000.));
#515=IFCCARTESIANPOINT((0.,4000.));
#516=IFCPRESENTATIONLAYERASSIGNMENT('S-SLAB',$,(#503),$);
ENDSEC;
END-ISO-10303-21;
`

// Sample parses SampleSource, failing the test on error.
func Sample(t testing.TB) *ifc.File {
	t.Helper()
	sf, err := step.ParseString(SampleSource)
	if err != nil {
		t.Fatalf("parsing sample model: %v", err)
	}
	f, err := ifc.FromStep(sf)
	if err != nil {
		t.Fatalf("indexing sample model: %v", err)
	}
	return f
}
