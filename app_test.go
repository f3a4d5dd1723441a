package main

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chazu/ifcgeom/pkg/config"
	"github.com/chazu/ifcgeom/pkg/element"
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/filter"
	"github.com/chazu/ifcgeom/pkg/geom"
	"github.com/chazu/ifcgeom/pkg/graph"
	"github.com/chazu/ifcgeom/pkg/ifc/ifctest"
	"github.com/chazu/ifcgeom/pkg/iterator"
	"github.com/chazu/ifcgeom/pkg/kernel"
	"github.com/chazu/ifcgeom/pkg/serialize"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
	"go.uber.org/zap"
)

// writeSample stores the sample model in a temporary directory.
func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.ifc")
	if err := os.WriteFile(path, []byte(ifctest.SampleSource), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testSettings(mutate func(*config.Settings)) *config.Settings {
	s := config.Default()
	s.Iterator.Kernel = config.KernelPoly
	s.Iterator.Threads = 2
	if mutate != nil {
		mutate(s)
	}
	return s
}

// TestE2EConvertOBJ runs the whole pipeline: IFC file, filters, parallel
// iteration, triangulation and the OBJ writer.
func TestE2EConvertOBJ(t *testing.T) {
	input := writeSample(t)
	output := filepath.Join(t.TempDir(), "model.obj")

	sum, err := NewApp(testSettings(nil), nil, nil).Convert(input, output)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if sum.Objects != 5 {
		t.Errorf("Objects = %d, want 5", sum.Objects)
	}
	if sum.Stats.Failed != 0 {
		t.Errorf("Stats.Failed = %d, want 0", sum.Stats.Failed)
	}
	if len(sum.Warnings) != 0 {
		t.Errorf("unexpected containment warnings: %v", sum.Warnings)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	obj := string(data)
	if n := strings.Count(obj, "\ng product-"); n != 5 {
		t.Errorf("found %d groups, want 5", n)
	}
	if !strings.Contains(obj, "mtllib model.mtl") {
		t.Error("missing mtllib statement")
	}
	if _, err := os.Stat(output + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}

	mtl, err := os.ReadFile(filepath.Join(filepath.Dir(output), "model.mtl"))
	if err != nil {
		t.Fatalf("reading material library: %v", err)
	}
	if !strings.Contains(string(mtl), "newmtl Brick\nKd 0.6 0.3 0.2\n") {
		t.Errorf("material library lacks the wall style:\n%s", mtl)
	}
}

func TestE2EConvertNamesAndFilters(t *testing.T) {
	input := writeSample(t)
	output := filepath.Join(t.TempDir(), "walls.obj")

	var set filter.Set
	if err := set.AppendArg(filter.SlotInclude, "entities IfcWall IfcColumn"); err != nil {
		t.Fatal(err)
	}
	s := testSettings(func(s *config.Settings) { s.Serializer.Naming = config.NamingName })
	sum, err := NewApp(s, &set, nil).Convert(input, output)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if sum.Objects != 3 {
		t.Errorf("Objects = %d, want 3", sum.Objects)
	}
	data, _ := os.ReadFile(output)
	for _, g := range []string{"g Wall_A\n", "g Column_1\n", "g Column_2\n"} {
		if !strings.Contains(string(data), g) {
			t.Errorf("output lacks %q", strings.TrimSpace(g))
		}
	}
}

func TestE2EConvertBlobs(t *testing.T) {
	input := writeSample(t)
	dir := filepath.Join(t.TempDir(), "blobs")

	sum, err := NewApp(testSettings(nil), nil, nil).Convert(input, dir)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != sum.Objects || sum.Objects != 5 {
		t.Errorf("%d blobs for %d objects, want 5", len(entries), sum.Objects)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".off" {
			t.Errorf("blob %s: want .off extension", e.Name())
		}
	}
}

func TestE2EConvertNothingToConvert(t *testing.T) {
	input := writeSample(t)
	output := filepath.Join(t.TempDir(), "beams.obj")

	var set filter.Set
	if err := set.AppendArg(filter.SlotInclude, "entities IfcBeam"); err != nil {
		t.Fatal(err)
	}
	sum, err := NewApp(testSettings(nil), &set, nil).Convert(input, output)
	if !errors.Is(err, errors.ErrNothingToConvert) {
		t.Fatalf("Convert() error = %v, want ErrNothingToConvert", err)
	}
	if sum.Objects != 0 {
		t.Errorf("Objects = %d, want 0", sum.Objects)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("output written although nothing was converted")
	}
}

// failingWriter passes elements to a real writer and fails on the n-th.
type failingWriter struct {
	serialize.Writer
	n, written int
}

func (w *failingWriter) Write(s element.Stage) error {
	w.written++
	if w.written == w.n {
		return errors.New("disk full")
	}
	return w.Writer.Write(s)
}

func TestE2EConvertWriteFailureRemovesTemp(t *testing.T) {
	input := writeSample(t)
	output := filepath.Join(t.TempDir(), "model.obj")

	app := NewApp(testSettings(nil), nil, nil)
	var tmp string
	app.newWriter = func(path string, o serialize.Options, log *zap.SugaredLogger) (serialize.Writer, error) {
		tmp = path
		w, err := serialize.New(path, o, log)
		if err != nil {
			return nil, err
		}
		return &failingWriter{Writer: w, n: 3}, nil
	}
	sum, err := app.Convert(input, output)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("Convert() error = %v, want the write failure", err)
	}
	if sum.Objects != 2 {
		t.Errorf("Objects = %d, want 2", sum.Objects)
	}
	if tmp != output+serialize.TempExt {
		t.Errorf("writer path = %q, want %q", tmp, output+serialize.TempExt)
	}
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("output written despite the failure: %v", err)
	}
}

// sampleIterator returns an initialized iterator over the sample model.
func sampleIterator(t *testing.T) *iterator.Iterator {
	t.Helper()
	var set filter.Set
	chain, err := set.Build(filter.Options{OutputExt: ".obj"})
	if err != nil {
		t.Fatal(err)
	}
	factory, err := kernel.Lookup(config.KernelPoly)
	if err != nil {
		t.Fatal(err)
	}
	it := iterator.New(iterator.Options{
		File:     ifctest.Sample(t),
		Chain:    chain,
		Kernel:   factory,
		Settings: geom.Settings{Materials: geom.DefaultMaterials()},
		Threads:  1,
	})
	if err := it.Initialize(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(it.Close)
	return it
}

func TestSerializerOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Settings)
		want   [3]float64
	}{
		{"none", nil, [3]float64{}},
		{"center", func(s *config.Settings) { s.Serializer.CenterModel = true }, [3]float64{-2.25, -0.225, -1.5}},
		{"offset", func(s *config.Settings) { s.Serializer.ModelOffset = "1;2;-3.5" }, [3]float64{1, 2, -3.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewApp(testSettings(tt.mutate), nil, nil)
			o, err := a.serializerOptions(sampleIterator(t))
			if err != nil {
				t.Fatalf("serializerOptions() error = %v", err)
			}
			for i := range o.Offset {
				if math.Abs(o.Offset[i]-tt.want[i]) > 1e-9 {
					t.Errorf("Offset = %v, want %v", o.Offset, tt.want)
					break
				}
			}
		})
	}
}

func TestLocalFrame(t *testing.T) {
	hierarchy := []*element.Element{
		{ID: 1, Type: "IfcProject"},
		{ID: 30, Type: "IfcSite", Transformation: element.NewTransformation(taxonomy.Translation(100, 200, 0), false, 1)},
	}
	m, err := localFrame(hierarchy, "IfcSite")
	if err != nil {
		t.Fatalf("localFrame() error = %v", err)
	}
	if got := m.Apply([3]float64{101, 202, 3}); got != [3]float64{1, 2, 3} {
		t.Errorf("site frame maps (101,202,3) to %v, want (1,2,3)", got)
	}

	_, err = localFrame(hierarchy, "IfcBuilding")
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("localFrame() without building error = %v, want ErrInvalidConfig", err)
	}
}

func TestValidateContainment(t *testing.T) {
	it := sampleIterator(t)
	a := NewApp(testSettings(nil), nil, nil)
	g := graph.Build(ifctest.Sample(t))

	extents := map[graph.NodeID]graph.ZRange{
		graph.NodeID(ifctest.WallID): {Min: 3.2, Max: 6},
		graph.NodeID(ifctest.DoorID): {Min: 0, Max: 2},
	}
	warnings := a.validateContainment(g, it, extents)
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(warnings), warnings)
	}
	if warnings[0].NodeID != graph.NodeID(ifctest.WallID) {
		t.Errorf("warning for %s, want the wall", warnings[0].NodeID)
	}
	if !strings.Contains(warnings[0].Message, `"First"`) {
		t.Errorf("message %q does not name the storey the wall is on", warnings[0].Message)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 seconds"},
		{time.Second, "1 second"},
		{59*time.Second + 900*time.Millisecond, "59 seconds"},
		{time.Minute, "1 minute 0 seconds"},
		{61 * time.Second, "1 minute 1 second"},
		{125 * time.Second, "2 minutes 5 seconds"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
