package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chazu/ifcgeom/pkg/config"
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/filter"
	"github.com/chazu/ifcgeom/pkg/graph"
	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagKeys binds command line flags to configuration keys.
var flagKeys = map[string]string{
	"threads":                      "iterator.threads",
	"kernel":                       "iterator.kernel",
	"deflection-tolerance":         "geometry.deflection_tolerance",
	"weld-vertices":                "geometry.weld_vertices",
	"no-normals":                   "geometry.no_normals",
	"generate-uvs":                 "geometry.generate_uvs",
	"convert-back-units":           "geometry.convert_back_units",
	"use-world-coords":             "geometry.use_world_coords",
	"disable-opening-subtractions": "geometry.disable_opening_subtractions",
	"enable-layerset-slicing":      "geometry.enable_layerset_slicing",
	"validate":                     "geometry.compute_quantities",
	"default-material-file":        "geometry.default_material_file",
	"naming":                       "serializer.naming",
	"precision":                    "serializer.precision",
	"center-model":                 "serializer.center_model",
	"site-local-placement":         "serializer.site_local_placement",
	"building-local-placement":     "serializer.building_local_placement",
	"model-offset":                 "serializer.model_offset",
	"use-element-hierarchy":        "serializer.use_element_hierarchy",
	"log-format":                   "log.format",
	"no-progress":                  "log.no_progress",
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ifcgeom",
		Short: "Extract geometry from IFC building models",
		Long: `ifcgeom converts the products of an IFC model into triangulated or
kernel-native geometry, in parallel, and writes them as OBJ, 3MF, DXF or
one blob per element.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (IFCGEOM_* prefix)
3. ./ifcgeom.toml or the file given with --config
4. Default values`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newConvertCmd(), newValidateCmd(), newKernelsCmd())
	return root
}

// convertFlags holds the flags that do not map onto configuration keys.
type convertFlags struct {
	configFile string
	verbose    int
	quiet      bool
	include    []string
	includeT   []string
	exclude    []string
	excludeT   []string
	filterFile string
}

func newConvertCmd() *cobra.Command {
	var cf convertFlags
	cmd := &cobra.Command{
		Use:   "convert <input.ifc> <output>",
		Short: "Convert the geometry of a model",
		Long: `Convert the geometry of the products in input.

The output format follows the extension: .obj (with a .mtl material
library), .3mf or .dxf. An output without extension is a directory that
receives one kernel-serialized blob per element.

Filters select the products to convert:
  --include "entities IfcWall IfcSlab"
  --exclude+ "layers A-FURN*"
  --include "arg Name 'Level 1'"
  --include "expr (> (attr_number \"OverallHeight\") 2000)"
Without an entity filter IfcOpeningElement and IfcSpace are skipped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadViper(cmd, cf)
			if err != nil {
				return err
			}
			s, err := config.Load(v)
			if err != nil {
				return err
			}
			if err := logger.Initialize(logger.Options{Format: s.Log.Format, Verbosity: s.Log.Verbosity}); err != nil {
				return err
			}
			filters, err := cf.filterSet()
			if err != nil {
				return err
			}

			app := NewApp(s, filters, logger.Logger)
			if !s.Log.NoProgress && s.Log.Verbosity >= logger.VerbosityNormal {
				app.WithProgress(os.Stderr)
			}
			_, err = app.Convert(args[0], args[1])
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cf.configFile, "config", "", "TOML configuration file")
	f.CountVarP(&cf.verbose, "verbose", "v", "more output, repeat for debug detail")
	f.BoolVarP(&cf.quiet, "quiet", "q", false, "only warnings and errors")
	f.StringArrayVar(&cf.include, "include", nil, "convert only matching products (entities|layers|arg <attr>|expr)")
	f.StringArrayVar(&cf.includeT, "include+", nil, "like --include, also matching decomposition and containment descendants")
	f.StringArrayVar(&cf.exclude, "exclude", nil, "skip matching products")
	f.StringArrayVar(&cf.excludeT, "exclude+", nil, "like --exclude, also matching descendants")
	f.StringVar(&cf.filterFile, "filter-file", "", "read filters from a file, one per line")

	f.IntP("threads", "j", 1, "worker threads, 0 for one per CPU")
	f.String("kernel", config.KernelSDFX, "geometry kernel: "+strings.Join([]string{config.KernelSDFX, config.KernelPoly}, ", "))
	f.Float64("deflection-tolerance", config.DefaultDeflectionTolerance, "meshing tolerance in meters")
	f.Bool("weld-vertices", false, "share vertices with equal positions, drops normals")
	f.Bool("no-normals", false, "do not compute normals")
	f.Bool("generate-uvs", false, "generate box projected texture coordinates")
	f.Bool("convert-back-units", false, "write coordinates in the model's length unit")
	f.Bool("use-world-coords", false, "apply placements to vertices")
	f.Bool("disable-opening-subtractions", false, "do not cut openings out of elements")
	f.Bool("enable-layerset-slicing", false, "split elements by material layer")
	f.Bool("validate", false, "compute quantities and fail when any product fails to convert")
	f.String("default-material-file", "", "TOML file overriding the fallback styles")
	f.String("naming", config.NamingUniqueID, "element names: unique_id, name or guid")
	f.Int("precision", config.DefaultPrecision, "significant digits of written coordinates")
	f.Bool("center-model", false, "move the model center to the origin")
	f.Bool("site-local-placement", false, "write coordinates relative to the site")
	f.Bool("building-local-placement", false, "write coordinates relative to the building")
	f.String("model-offset", "", "translate the model by x;y;z")
	f.Bool("use-element-hierarchy", false, "group elements by spatial structure (.dae only)")
	f.String("log-format", "plain", "log format: plain or json")
	f.Bool("no-progress", false, "hide the progress bar")
	return cmd
}

// loadViper layers the configuration file, environment and the flags
// that were set explicitly.
func loadViper(cmd *cobra.Command, cf convertFlags) (*viper.Viper, error) {
	v, err := config.NewViper()
	if err != nil {
		return nil, err
	}
	if cf.configFile != "" {
		v.SetConfigFile(cf.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "failed to read config file %s", cf.configFile), errors.ErrInvalidConfig)
		}
	}
	for name, key := range flagKeys {
		if fl := cmd.Flags().Lookup(name); fl != nil && fl.Changed {
			if err := v.BindPFlag(key, fl); err != nil {
				return nil, errors.Wrapf(err, "binding --%s", name)
			}
		}
	}
	switch {
	case cf.quiet:
		v.Set("log.verbosity", logger.VerbosityQuiet)
	case cf.verbose > 0:
		v.Set("log.verbosity", cf.verbose)
	}
	return v, nil
}

func (cf convertFlags) filterSet() (*filter.Set, error) {
	set := &filter.Set{}
	slots := []struct {
		slot filter.Slot
		args []string
	}{
		{filter.SlotInclude, cf.include},
		{filter.SlotIncludeTraverse, cf.includeT},
		{filter.SlotExclude, cf.exclude},
		{filter.SlotExcludeTraverse, cf.excludeT},
	}
	for _, s := range slots {
		for _, arg := range s.args {
			if err := set.AppendArg(s.slot, arg); err != nil {
				return nil, errors.Wrapf(err, "--%s %s", s.slot, arg)
			}
		}
	}
	if cf.filterFile != "" {
		n, err := set.ReadFile(cf.filterFile)
		if err != nil {
			return nil, err
		}
		logger.Logger.Debugw("filters read from file", "path", cf.filterFile, "count", n)
	}
	return set, nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input.ifc>",
		Short: "Check the spatial decomposition of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ifc.Open(args[0])
			if err != nil {
				return err
			}
			g := graph.Build(f)
			res := graph.ValidateAll(g, nil)
			out := cmd.OutOrStdout()
			for _, e := range res.Errors {
				fmt.Fprintln(out, e.Error())
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "[warning] %s\n", w)
			}
			if len(res.Errors) > 0 {
				return errors.Newf("%d structural errors", len(res.Errors))
			}
			fmt.Fprintf(out, "%d products, %d storeys, no structural errors\n", g.NodeCount(), len(g.Storeys()))
			return nil
		},
	}
}

func newKernelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kernels",
		Short: "List the available geometry kernels",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, n := range kernel.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
		},
	}
}

// report prints err with its hints to stderr.
func report(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	for _, h := range errors.GetAllHints(err) {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", h)
	}
}
