package ifc

import (
	"strings"
)

// DefaultLengthUnit is reported when a model declares no length unit.
const DefaultLengthUnit = "METER"

var siPrefixes = map[string]float64{
	"EXA":   1e18,
	"PETA":  1e15,
	"TERA":  1e12,
	"GIGA":  1e9,
	"MEGA":  1e6,
	"KILO":  1e3,
	"HECTO": 1e2,
	"DECA":  1e1,
	"DECI":  1e-1,
	"CENTI": 1e-2,
	"MILLI": 1e-3,
	"MICRO": 1e-6,
	"NANO":  1e-9,
	"PICO":  1e-12,
	"FEMTO": 1e-15,
	"ATTO":  1e-18,
}

// LengthUnit returns the project's length unit name and its size in
// meters.
func (f *File) LengthUnit() (name string, magnitude float64) {
	name, magnitude = DefaultLengthUnit, 1
	project := f.Project()
	if project == nil {
		return
	}
	assignment := project.Ref("UnitsInContext")
	if assignment == nil {
		return
	}
	for _, u := range assignment.Refs("Units") {
		if t, _ := u.Str("UnitType"); t != "LENGTHUNIT" {
			continue
		}
		if n, m, ok := unitMagnitude(u); ok {
			return n, m
		}
	}
	return
}

func unitMagnitude(u *Entity) (string, float64, bool) {
	switch {
	case u.Is("IfcSIUnit"):
		base, _ := u.Str("Name")
		factor := 1.0
		prefix, hasPrefix := u.Str("Prefix")
		if hasPrefix {
			p, ok := siPrefixes[prefix]
			if !ok {
				return "", 0, false
			}
			factor = p
		}
		return prefix + base, factor, true
	case u.Is("IfcConversionBasedUnit"):
		name, _ := u.Str("Name")
		measure := u.Ref("ConversionFactor")
		if measure == nil {
			return "", 0, false
		}
		v, ok := measure.Attr("ValueComponent")
		if !ok {
			return "", 0, false
		}
		value, ok := AsFloat(v)
		if !ok {
			return "", 0, false
		}
		baseFactor := 1.0
		if base := measure.Ref("UnitComponent"); base != nil {
			if _, m, ok := unitMagnitude(base); ok {
				baseFactor = m
			}
		}
		return strings.ToUpper(name), value * baseFactor, true
	}
	return "", 0, false
}

// UnitSymbol abbreviates well-known length unit names, for serializers
// that label coordinates.
func UnitSymbol(name string) string {
	switch strings.ToUpper(name) {
	case "MILLIMETRE", "MILLIMETER":
		return "mm"
	case "CENTIMETRE", "CENTIMETER":
		return "cm"
	case "METRE", "METER":
		return "m"
	case "FOOT", "FEET":
		return "ft"
	case "INCH":
		return "in"
	}
	return name
}
