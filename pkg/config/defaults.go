package config

import "github.com/spf13/viper"

// Default values shared with flag definitions.
const (
	DefaultDeflectionTolerance = 1e-3
	DefaultPrecision           = 15
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Geometry defaults
	v.SetDefault("geometry.deflection_tolerance", DefaultDeflectionTolerance)
	v.SetDefault("geometry.weld_vertices", false)
	v.SetDefault("geometry.no_normals", false)
	v.SetDefault("geometry.generate_uvs", false)
	v.SetDefault("geometry.convert_back_units", false)
	v.SetDefault("geometry.use_world_coords", false)
	v.SetDefault("geometry.disable_opening_subtractions", false)
	v.SetDefault("geometry.enable_layerset_slicing", false)
	v.SetDefault("geometry.compute_quantities", false)
	v.SetDefault("geometry.default_material_file", "")

	// Iterator defaults
	v.SetDefault("iterator.threads", 1)
	v.SetDefault("iterator.kernel", KernelSDFX)
	v.SetDefault("iterator.output", OutputTriangulated)

	// Serializer defaults
	v.SetDefault("serializer.naming", NamingUniqueID)
	v.SetDefault("serializer.precision", DefaultPrecision)
	v.SetDefault("serializer.model_offset", "")

	// Log defaults
	v.SetDefault("log.format", "plain")
	v.SetDefault("log.verbosity", 0)
	v.SetDefault("log.no_progress", false)
}
