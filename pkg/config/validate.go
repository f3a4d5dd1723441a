package config

import (
	"runtime"

	"github.com/chazu/ifcgeom/pkg/errors"
)

func invalid(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), errors.ErrInvalidConfig)
}

// Validate checks that the configuration is usable.
func (s *Settings) Validate() error {
	if s.Geometry.DeflectionTolerance <= 0 {
		return invalid("geometry.deflection_tolerance must be > 0, got %g", s.Geometry.DeflectionTolerance)
	}

	switch s.Iterator.Kernel {
	case KernelSDFX, KernelPoly:
	default:
		return invalid("iterator.kernel %q is not one of %s, %s", s.Iterator.Kernel, KernelSDFX, KernelPoly)
	}

	switch s.Iterator.Output {
	case OutputTriangulated, OutputNative, OutputSerialized:
	default:
		return invalid("iterator.output %q is not one of %s, %s, %s",
			s.Iterator.Output, OutputTriangulated, OutputNative, OutputSerialized)
	}

	switch s.Serializer.Naming {
	case NamingUniqueID, NamingName, NamingGUID:
	default:
		return invalid("serializer.naming %q is not one of %s, %s, %s",
			s.Serializer.Naming, NamingUniqueID, NamingName, NamingGUID)
	}

	if s.Serializer.Precision < 1 || s.Serializer.Precision > 17 {
		return invalid("serializer.precision must be within 1..17, got %d", s.Serializer.Precision)
	}

	if s.Serializer.SiteLocalPlacement && s.Serializer.BuildingLocalPlacement {
		return invalid("site_local_placement and building_local_placement are mutually exclusive")
	}
	if s.Serializer.CenterModel && (s.Serializer.SiteLocalPlacement || s.Serializer.BuildingLocalPlacement) {
		return invalid("center_model cannot be combined with site or building local placement")
	}
	if s.Serializer.CenterModel && s.Serializer.ModelOffset != "" {
		return invalid("center_model and model_offset are mutually exclusive")
	}
	if _, err := ParseModelOffset(s.Serializer.ModelOffset); err != nil {
		return err
	}

	if s.Serializer.UseElementHierarchy {
		return errors.WithHint(
			invalid("use_element_hierarchy is only supported for .dae output"),
			"no Collada writer is available; drop the option")
	}
	return nil
}

// Warnings lists combinations that are accepted but partly ignored.
func (s *Settings) Warnings() []string {
	var out []string
	if s.Geometry.GenerateUVs && (s.Geometry.WeldVertices || s.Geometry.NoNormals) {
		out = append(out, "generate_uvs requires normals; UVs will not be generated")
	}
	if s.Geometry.ConvertBackUnits && s.Geometry.UseWorldCoords {
		out = append(out, "convert_back_units applies to vertex positions in world coordinates as well")
	}
	return out
}

// EffectiveThreads resolves the worker count, one per CPU when unset.
func (s *Settings) EffectiveThreads() int {
	if s.Iterator.Threads <= 0 {
		return runtime.NumCPU()
	}
	return s.Iterator.Threads
}
