package ifc

import "strings"

// entityDef describes one entity type: its supertype and the attributes
// it declares itself. Inherited attributes precede own ones.
type entityDef struct {
	name  string
	super string
	attrs []string
}

// schemaDefs covers the part of IFC2X3/IFC4 the converter reads. Both
// schemas agree on the attribute positions listed here.
var schemaDefs = []entityDef{
	{"IfcRoot", "", []string{"GlobalId", "OwnerHistory", "Name", "Description"}},
	{"IfcObjectDefinition", "IfcRoot", nil},
	{"IfcObject", "IfcObjectDefinition", []string{"ObjectType"}},
	{"IfcContext", "IfcObjectDefinition", []string{"ObjectType", "LongName", "Phase", "RepresentationContexts", "UnitsInContext"}},
	{"IfcProject", "IfcContext", nil},
	{"IfcProduct", "IfcObject", []string{"ObjectPlacement", "Representation"}},
	{"IfcElement", "IfcProduct", []string{"Tag"}},
	{"IfcBuildingElement", "IfcElement", nil},
	{"IfcBuiltElement", "IfcElement", nil},
	{"IfcWall", "IfcBuildingElement", nil},
	{"IfcWallStandardCase", "IfcWall", nil},
	{"IfcSlab", "IfcBuildingElement", nil},
	{"IfcBeam", "IfcBuildingElement", nil},
	{"IfcColumn", "IfcBuildingElement", nil},
	{"IfcMember", "IfcBuildingElement", nil},
	{"IfcPlate", "IfcBuildingElement", nil},
	{"IfcRoof", "IfcBuildingElement", nil},
	{"IfcStair", "IfcBuildingElement", nil},
	{"IfcRailing", "IfcBuildingElement", nil},
	{"IfcCovering", "IfcBuildingElement", nil},
	{"IfcFooting", "IfcBuildingElement", nil},
	{"IfcCurtainWall", "IfcBuildingElement", nil},
	{"IfcBuildingElementProxy", "IfcBuildingElement", nil},
	{"IfcDoor", "IfcBuildingElement", []string{"OverallHeight", "OverallWidth"}},
	{"IfcWindow", "IfcBuildingElement", []string{"OverallHeight", "OverallWidth"}},
	{"IfcFurnishingElement", "IfcElement", nil},
	{"IfcDistributionElement", "IfcElement", nil},
	{"IfcFlowSegment", "IfcDistributionElement", nil},
	{"IfcFeatureElement", "IfcElement", nil},
	{"IfcFeatureElementSubtraction", "IfcFeatureElement", nil},
	{"IfcOpeningElement", "IfcFeatureElementSubtraction", nil},
	{"IfcAnnotation", "IfcProduct", nil},
	{"IfcSpatialElement", "IfcProduct", []string{"LongName"}},
	{"IfcSpatialStructureElement", "IfcSpatialElement", []string{"CompositionType"}},
	{"IfcSite", "IfcSpatialStructureElement", []string{"RefLatitude", "RefLongitude", "RefElevation", "LandTitleNumber", "SiteAddress"}},
	{"IfcBuilding", "IfcSpatialStructureElement", []string{"ElevationOfRefHeight", "ElevationOfTerrain", "BuildingAddress"}},
	{"IfcBuildingStorey", "IfcSpatialStructureElement", []string{"Elevation"}},
	{"IfcSpace", "IfcSpatialStructureElement", []string{"InteriorOrExteriorSpace", "ElevationWithFlooring"}},

	{"IfcRelationship", "IfcRoot", nil},
	{"IfcRelDecomposes", "IfcRelationship", nil},
	{"IfcRelAggregates", "IfcRelDecomposes", []string{"RelatingObject", "RelatedObjects"}},
	{"IfcRelNests", "IfcRelDecomposes", []string{"RelatingObject", "RelatedObjects"}},
	{"IfcRelConnects", "IfcRelationship", nil},
	{"IfcRelContainedInSpatialStructure", "IfcRelConnects", []string{"RelatedElements", "RelatingStructure"}},
	{"IfcRelVoidsElement", "IfcRelConnects", []string{"RelatingBuildingElement", "RelatedOpeningElement"}},
	{"IfcRelFillsElement", "IfcRelConnects", []string{"RelatingOpeningElement", "RelatedBuildingElement"}},
	{"IfcRelAssociates", "IfcRelationship", []string{"RelatedObjects"}},
	{"IfcRelAssociatesMaterial", "IfcRelAssociates", []string{"RelatingMaterial"}},

	{"IfcObjectPlacement", "", nil},
	{"IfcLocalPlacement", "IfcObjectPlacement", []string{"PlacementRelTo", "RelativePlacement"}},
	{"IfcPlacement", "", []string{"Location"}},
	{"IfcAxis2Placement2D", "IfcPlacement", []string{"RefDirection"}},
	{"IfcAxis2Placement3D", "IfcPlacement", []string{"Axis", "RefDirection"}},
	{"IfcCartesianPoint", "", []string{"Coordinates"}},
	{"IfcDirection", "", []string{"DirectionRatios"}},
	{"IfcCartesianTransformationOperator", "", []string{"Axis1", "Axis2", "LocalOrigin", "Scale"}},
	{"IfcCartesianTransformationOperator3D", "IfcCartesianTransformationOperator", []string{"Axis3"}},

	{"IfcProductRepresentation", "", []string{"Name", "Description", "Representations"}},
	{"IfcProductDefinitionShape", "IfcProductRepresentation", nil},
	{"IfcRepresentation", "", []string{"ContextOfItems", "RepresentationIdentifier", "RepresentationType", "Items"}},
	{"IfcShapeRepresentation", "IfcRepresentation", nil},
	{"IfcRepresentationContext", "", []string{"ContextIdentifier", "ContextType"}},
	{"IfcGeometricRepresentationContext", "IfcRepresentationContext", []string{"CoordinateSpaceDimension", "Precision", "WorldCoordinateSystem", "TrueNorth"}},
	{"IfcGeometricRepresentationSubContext", "IfcGeometricRepresentationContext", []string{"ParentContext", "TargetScale", "TargetView", "UserDefinedTargetView"}},
	{"IfcRepresentationMap", "", []string{"MappingOrigin", "MappedRepresentation"}},
	{"IfcMappedItem", "", []string{"MappingSource", "MappingTarget"}},

	{"IfcSweptAreaSolid", "", []string{"SweptArea", "Position"}},
	{"IfcExtrudedAreaSolid", "IfcSweptAreaSolid", []string{"ExtrudedDirection", "Depth"}},
	{"IfcProfileDef", "", []string{"ProfileType", "ProfileName"}},
	{"IfcParameterizedProfileDef", "IfcProfileDef", []string{"Position"}},
	{"IfcRectangleProfileDef", "IfcParameterizedProfileDef", []string{"XDim", "YDim"}},
	{"IfcCircleProfileDef", "IfcParameterizedProfileDef", []string{"Radius"}},
	{"IfcEllipseProfileDef", "IfcParameterizedProfileDef", []string{"SemiAxis1", "SemiAxis2"}},
	{"IfcArbitraryClosedProfileDef", "IfcProfileDef", []string{"OuterCurve"}},
	{"IfcArbitraryProfileDefWithVoids", "IfcArbitraryClosedProfileDef", []string{"InnerCurves"}},
	{"IfcPolyline", "", []string{"Points"}},
	{"IfcBooleanResult", "", []string{"Operator", "FirstOperand", "SecondOperand"}},
	{"IfcBooleanClippingResult", "IfcBooleanResult", nil},

	{"IfcStyledItem", "", []string{"Item", "Styles", "Name"}},
	{"IfcPresentationStyleAssignment", "", []string{"Styles"}},
	{"IfcSurfaceStyle", "", []string{"Name", "Side", "Styles"}},
	{"IfcSurfaceStyleShading", "", []string{"SurfaceColour", "Transparency"}},
	{"IfcSurfaceStyleRendering", "IfcSurfaceStyleShading", []string{"DiffuseColour", "TransmissionColour", "DiffuseTransmissionColour", "ReflectionColour", "SpecularColour", "SpecularHighlight", "ReflectanceMethod"}},
	{"IfcColourRgb", "", []string{"Name", "Red", "Green", "Blue"}},
	{"IfcPresentationLayerAssignment", "", []string{"Name", "Description", "AssignedItems", "Identifier"}},
	{"IfcPresentationLayerWithStyle", "IfcPresentationLayerAssignment", []string{"LayerOn", "LayerFrozen", "LayerBlocked", "LayerStyles"}},

	{"IfcUnitAssignment", "", []string{"Units"}},
	{"IfcNamedUnit", "", []string{"Dimensions", "UnitType"}},
	{"IfcSIUnit", "IfcNamedUnit", []string{"Prefix", "Name"}},
	{"IfcConversionBasedUnit", "IfcNamedUnit", []string{"Name", "ConversionFactor"}},
	{"IfcMeasureWithUnit", "", []string{"ValueComponent", "UnitComponent"}},

	{"IfcMaterial", "", []string{"Name"}},
	{"IfcMaterialLayer", "", []string{"Material", "LayerThickness", "IsVentilated"}},
	{"IfcMaterialLayerSet", "", []string{"MaterialLayers", "LayerSetName"}},
	{"IfcMaterialLayerSetUsage", "", []string{"ForLayerSet", "LayerSetDirection", "DirectionSense", "OffsetFromReferenceLine"}},
}

type schemaEntry struct {
	name   string
	super  *schemaEntry
	attrs  map[string]int
	ntotal int
}

// schema is keyed by upper-case entity name.
var schema = buildSchema()

func buildSchema() map[string]*schemaEntry {
	m := make(map[string]*schemaEntry, len(schemaDefs))
	for _, d := range schemaDefs {
		e := &schemaEntry{name: d.name, attrs: map[string]int{}}
		if d.super != "" {
			sup, ok := m[strings.ToUpper(d.super)]
			if !ok {
				panic("ifc schema: " + d.name + " declared before supertype " + d.super)
			}
			e.super = sup
			for k, v := range sup.attrs {
				e.attrs[k] = v
			}
			e.ntotal = sup.ntotal
		}
		for _, a := range d.attrs {
			e.attrs[a] = e.ntotal
			e.ntotal++
		}
		m[strings.ToUpper(d.name)] = e
	}
	return m
}

// CanonicalName returns the schema spelling of an entity name, or the
// input upper-cased when the type is unknown.
func CanonicalName(name string) string {
	if e, ok := schema[strings.ToUpper(name)]; ok {
		return e.name
	}
	return strings.ToUpper(name)
}

// IsSubtype reports whether typ equals or derives from super. Matching
// is case-insensitive.
func IsSubtype(typ, super string) bool {
	want := strings.ToUpper(super)
	if strings.ToUpper(typ) == want {
		return true
	}
	for e := schema[strings.ToUpper(typ)]; e != nil; e = e.super {
		if strings.ToUpper(e.name) == want {
			return true
		}
	}
	return false
}

// Supertypes returns name followed by its ancestors, nearest first, in
// schema spelling. An unknown type yields just its canonical name.
func Supertypes(name string) []string {
	e := schema[strings.ToUpper(name)]
	if e == nil {
		return []string{CanonicalName(name)}
	}
	var out []string
	for ; e != nil; e = e.super {
		out = append(out, e.name)
	}
	return out
}

// KnownType reports whether the schema table declares name.
func KnownType(name string) bool {
	_, ok := schema[strings.ToUpper(name)]
	return ok
}

// attributeIndex returns the position of a named attribute.
func attributeIndex(typ, attr string) (int, bool) {
	e, ok := schema[strings.ToUpper(typ)]
	if !ok {
		return 0, false
	}
	i, ok := e.attrs[attr]
	return i, ok
}
