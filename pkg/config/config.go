// Package config holds the conversion settings. Values come from, in
// increasing precedence, built-in defaults, an optional ifcgeom.toml, the
// IFCGEOM_* environment and command line flags bound by the caller.
package config

import (
	"strconv"
	"strings"

	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/spf13/viper"
)

// Settings is the full configuration of a conversion run.
type Settings struct {
	Geometry   GeometryConfig   `mapstructure:"geometry"`
	Iterator   IteratorConfig   `mapstructure:"iterator"`
	Serializer SerializerConfig `mapstructure:"serializer"`
	Log        LogConfig        `mapstructure:"log"`
}

// GeometryConfig controls how products are turned into geometry.
type GeometryConfig struct {
	DeflectionTolerance        float64 `mapstructure:"deflection_tolerance"`         // meshing tolerance in meters
	WeldVertices               bool    `mapstructure:"weld_vertices"`                // share identical positions, drops normals
	NoNormals                  bool    `mapstructure:"no_normals"`                   // skip normal computation
	GenerateUVs                bool    `mapstructure:"generate_uvs"`                 // box projected texture coordinates
	ConvertBackUnits           bool    `mapstructure:"convert_back_units"`           // emit file units instead of meters
	UseWorldCoords             bool    `mapstructure:"use_world_coords"`             // fold placements into vertices
	DisableOpeningSubtractions bool    `mapstructure:"disable_opening_subtractions"` // keep walls uncut
	EnableLayersetSlicing      bool    `mapstructure:"enable_layerset_slicing"`      // split by material layer
	ComputeQuantities          bool    `mapstructure:"compute_quantities"`           // area, volume, manifold checks
	DefaultMaterialFile        string  `mapstructure:"default_material_file"`        // TOML overrides for fallback styles
}

// IteratorConfig controls the worker pool.
type IteratorConfig struct {
	Threads int    `mapstructure:"threads"` // <= 0 means one per CPU
	Kernel  string `mapstructure:"kernel"`  // geometry backend
	Output  string `mapstructure:"output"`  // triangulated | native | serialized
}

// SerializerConfig controls how elements are written.
type SerializerConfig struct {
	Naming                 string `mapstructure:"naming"`    // unique_id | name | guid
	Precision              int    `mapstructure:"precision"` // significant digits
	CenterModel            bool   `mapstructure:"center_model"`
	SiteLocalPlacement     bool   `mapstructure:"site_local_placement"`
	BuildingLocalPlacement bool   `mapstructure:"building_local_placement"`
	ModelOffset            string `mapstructure:"model_offset"` // "x;y;z"
	UseElementHierarchy    bool   `mapstructure:"use_element_hierarchy"`
}

// LogConfig controls logging and progress output.
type LogConfig struct {
	Format     string `mapstructure:"format"`    // plain | json
	Verbosity  int    `mapstructure:"verbosity"` // -1 quiet, 0 normal, 1 debug
	NoProgress bool   `mapstructure:"no_progress"`
}

// Output modes of the iterator.
const (
	OutputTriangulated = "triangulated"
	OutputNative       = "native"
	OutputSerialized   = "serialized"
)

// Element naming schemes of the serializers.
const (
	NamingUniqueID = "unique_id"
	NamingName     = "name"
	NamingGUID     = "guid"
)

// Kernel backends.
const (
	KernelSDFX = "sdfx"
	KernelPoly = "poly"
)

// Load unmarshals v into Settings and validates the result.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to unmarshal config"), errors.ErrInvalidConfig)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Default returns the built-in settings.
func Default() *Settings {
	v := viper.New()
	SetDefaults(v)
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		panic(err)
	}
	return &s
}

// LoadFile reads a TOML configuration file on top of the defaults.
func LoadFile(path string) (*Settings, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "failed to read config file %s", path), errors.ErrInvalidConfig)
	}
	return Load(v)
}

// NewViper returns a viper instance with defaults, the IFCGEOM_ environment
// and, when present, ifcgeom.toml from the working directory.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("IFCGEOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	v.SetConfigName("ifcgeom")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Mark(errors.Wrap(err, "failed to read ifcgeom.toml"), errors.ErrInvalidConfig)
		}
	}
	return v, nil
}

// ParseModelOffset parses an "x;y;z" offset. The empty string is the zero
// offset.
func ParseModelOffset(s string) ([3]float64, error) {
	var off [3]float64
	if s == "" {
		return off, nil
	}
	parts := strings.Split(s, ";")
	if len(parts) != 3 {
		return off, errors.Mark(errors.Newf("model offset %q: expected x;y;z", s), errors.ErrInvalidConfig)
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return off, errors.Mark(errors.Wrapf(err, "model offset %q", s), errors.ErrInvalidConfig)
		}
		off[i] = f
	}
	return off, nil
}
