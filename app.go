package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/chazu/ifcgeom/pkg/config"
	"github.com/chazu/ifcgeom/pkg/element"
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/filter"
	"github.com/chazu/ifcgeom/pkg/geom"
	"github.com/chazu/ifcgeom/pkg/graph"
	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/chazu/ifcgeom/pkg/iterator"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/serialize"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
	"go.uber.org/zap"

	// geometry backends register themselves
	_ "github.com/chazu/ifcgeom/pkg/kernel/poly"
	_ "github.com/chazu/ifcgeom/pkg/kernel/sdfx"
)

// App converts one model per call. It holds the settings and filters of a
// command line invocation.
type App struct {
	settings *config.Settings
	filters  *filter.Set
	log      *zap.SugaredLogger
	progress io.Writer // nil disables the progress bar

	newWriter func(path string, o serialize.Options, log *zap.SugaredLogger) (serialize.Writer, error)
}

// Summary reports what a conversion did.
type Summary struct {
	Objects  int
	Stats    iterator.Stats
	Warnings []graph.ValidationWarning
	Duration time.Duration
}

// NewApp returns an app for the given settings. A nil filter set means
// the default entity filter.
func NewApp(s *config.Settings, filters *filter.Set, log *zap.SugaredLogger) *App {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if filters == nil {
		filters = &filter.Set{}
	}
	return &App{settings: s, filters: filters, log: log, newWriter: serialize.New}
}

// WithProgress renders a progress bar to w.
func (a *App) WithProgress(w io.Writer) *App {
	a.progress = w
	return a
}

// Convert writes the geometry of input to output. Model files are written
// next to output with serialize.TempExt appended and renamed when done; a
// path without an extension receives one blob per element.
func (a *App) Convert(input, output string) (sum Summary, err error) {
	start := time.Now()
	defer func() {
		sum.Duration = time.Since(start)
		a.log.Infof("Done creating geometry (%d objects)", sum.Objects)
		a.log.Infof("Conversion took %s", formatDuration(sum.Duration))
	}()

	s := a.settings
	for _, w := range s.Warnings() {
		a.log.Warn(w)
	}
	mode, err := serialize.OutputFor(output)
	if err != nil {
		return sum, err
	}
	factory, err := kernel.Lookup(s.Iterator.Kernel)
	if err != nil {
		return sum, err
	}
	gs, err := geom.NewSettings(s.Geometry)
	if err != nil {
		return sum, err
	}

	f, err := ifc.Open(input)
	if err != nil {
		return sum, err
	}
	g := graph.Build(f)
	for _, e := range graph.Validate(g) {
		a.log.Warnw("decomposition", "finding", e.Error())
	}
	chain, err := a.filters.Build(filter.Options{
		OutputExt: filepath.Ext(output),
		Graph:     g,
		Log:       a.log.Named("filter"),
	})
	if err != nil {
		return sum, err
	}
	for _, d := range chain.Describe() {
		a.log.Debugw("filter", "rule", d)
	}

	it := iterator.New(iterator.Options{
		File:     f,
		Graph:    g,
		Chain:    chain,
		Kernel:   factory,
		Settings: gs,
		Threads:  s.EffectiveThreads(),
		Output:   mode,
		Log:      a.log,
	})
	defer it.Close()
	a.log.Info("Creating geometry...")
	if err := it.Initialize(); err != nil {
		a.log.Warn("No geometrical elements found or none successfully converted")
		sum.Stats = it.Stats()
		return sum, err
	}

	opts, err := a.serializerOptions(it)
	if err != nil {
		return sum, err
	}
	target := output
	if mode == config.OutputTriangulated {
		target = output + serialize.TempExt
	}
	w, err := a.newWriter(target, opts, a.log.Named("serialize"))
	if err != nil {
		return sum, err
	}

	bar := a.startProgress()
	extents := make(map[graph.NodeID]graph.ZRange)
	for ok := true; ok; ok = it.Next() {
		st := it.Get()
		if err := w.Write(st); err != nil {
			w.Close()
			bar.stop()
			if target != output {
				os.Remove(target)
			}
			return sum, errors.Wrapf(err, "writing %s", st.Base().UniqueID)
		}
		if t, isMesh := st.(*element.Triangulated); isMesh {
			extend(extents, t)
		}
		sum.Objects++
		bar.update(it.Progress())
	}
	bar.stop()
	if err := w.Close(); err != nil {
		if target != output {
			os.Remove(target)
		}
		return sum, err
	}
	if target != output {
		if err := os.Rename(target, output); err != nil {
			return sum, errors.WithHintf(errors.Wrapf(err, "unable to write output file %s", output),
				"see %s for the conversion result", target)
		}
	}

	sum.Stats = it.Stats()
	sum.Warnings = a.validateContainment(g, it, extents)
	for _, w := range sum.Warnings {
		a.log.Warnw("storey containment", "finding", w.String())
	}
	if s.Geometry.ComputeQuantities && sum.Stats.Failed > 0 {
		return sum, errors.Newf("errors encountered during processing (%d products failed)", sum.Stats.Failed)
	}
	return sum, nil
}

// serializerOptions resolves naming, precision and the model offset or
// local placement the writer applies to every vertex.
func (a *App) serializerOptions(it *iterator.Iterator) (serialize.Options, error) {
	s := a.settings.Serializer
	o := serialize.Options{Naming: s.Naming, Precision: s.Precision}
	if a.settings.Geometry.ConvertBackUnits {
		o.UnitName = it.UnitName()
	}

	switch {
	case s.CenterModel:
		a.log.Info("Computing bounds...")
		if err := it.ComputeBounds(); err != nil {
			return o, err
		}
		lo, hi := it.BoundsMin(), it.BoundsMax()
		for i := range o.Offset {
			o.Offset[i] = -(lo[i] + hi[i]) / 2
		}
	case s.ModelOffset != "":
		off, err := config.ParseModelOffset(s.ModelOffset)
		if err != nil {
			return o, err
		}
		o.Offset = off
	case s.SiteLocalPlacement, s.BuildingLocalPlacement:
		typ := "IfcSite"
		if s.BuildingLocalPlacement {
			typ = "IfcBuilding"
		}
		m, err := localFrame(it.Hierarchy(), typ)
		if err != nil {
			return o, err
		}
		o.Transform = m
		return o, nil
	default:
		return o, nil
	}
	a.log.Infof("Using model offset (%g,%g,%g)", o.Offset[0], o.Offset[1], o.Offset[2])
	return o, nil
}

// localFrame returns the matrix that maps model coordinates into the frame
// of the first spatial element of type typ.
func localFrame(hierarchy []*element.Element, typ string) (taxonomy.Matrix4, error) {
	for _, e := range hierarchy {
		if !ifc.IsSubtype(e.Type, typ) {
			continue
		}
		inv, ok := e.Transformation.Matrix.Inverse()
		if !ok {
			return taxonomy.Matrix4{}, errors.Newf("placement of %s #%d is singular", e.Type, e.ID)
		}
		return inv, nil
	}
	return taxonomy.Matrix4{}, errors.Mark(errors.Newf("no %s found for local placement", typ), errors.ErrInvalidConfig)
}

// extend records the vertical extent of an element's mesh in model space.
func extend(extents map[graph.NodeID]graph.ZRange, t *element.Triangulated) {
	if t.Geometry == nil || t.Geometry.IsEmpty() {
		return
	}
	b, ok := t.Geometry.Bounds()
	if !ok {
		return
	}
	r := graph.ZRange{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, c := range b.Corners() {
		z := t.Transformation.Apply(c)[2]
		r.Min, r.Max = min(r.Min, z), max(r.Max, z)
	}
	id := graph.NodeID(t.ID)
	if cur, seen := extents[id]; seen {
		r.Min, r.Max = min(r.Min, cur.Min), max(r.Max, cur.Max)
	}
	extents[id] = r
}

// validateContainment compares each element's storey against the storey
// band its geometry occupies. Overlap is measured as shared height.
func (a *App) validateContainment(g *graph.Graph, it *iterator.Iterator, extents map[graph.NodeID]graph.ZRange) []graph.ValidationWarning {
	if len(extents) == 0 {
		return nil
	}
	ids := make([]graph.NodeID, 0, len(extents))
	for id := range extents {
		ids = append(ids, id)
	}
	scale, tol := it.UnitMagnitude(), graph.DefaultSliceTolerance
	if a.settings.Geometry.ConvertBackUnits {
		scale, tol = 1, tol/it.UnitMagnitude()
	}
	return graph.ValidateContainment(g, graph.ContainmentInput{
		Elements:  ids,
		Scale:     scale,
		Tolerance: tol,
		Overlap: func(id graph.NodeID, slice graph.ZRange) float64 {
			r := extents[id]
			return max(0, min(r.Max, slice.Max)-max(r.Min, slice.Min))
		},
	})
}

// formatDuration renders d as whole minutes and seconds, e.g. "1 minute
// 5 seconds" or "0 seconds".
func formatDuration(d time.Duration) string {
	secs := int(d / time.Second)
	minutes, secs := secs/60, secs%60
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("%d %s", n, unit)
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	if minutes > 0 {
		return plural(minutes, "minute") + " " + plural(secs, "second")
	}
	return plural(secs, "second")
}
