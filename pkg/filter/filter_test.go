package filter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/filter"
	"github.com/chazu/ifcgeom/pkg/ifc"
	"github.com/chazu/ifcgeom/pkg/ifc/ifctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(es []*ifc.Entity) []int {
	var out []int
	for _, e := range es {
		out = append(out, e.ID)
	}
	return out
}

type arg struct {
	slot filter.Slot
	text string
}

func candidates(t *testing.T, ext string, args ...arg) []int {
	t.Helper()
	var set filter.Set
	for _, a := range args {
		require.NoError(t, set.AppendArg(a.slot, a.text))
	}
	chain, err := set.Build(filter.Options{OutputExt: ext})
	require.NoError(t, err)
	got, err := chain.Candidates(ifctest.Sample(t))
	require.NoError(t, err)
	return ids(got)
}

func TestCandidates(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		args []arg
		want []int
	}{
		{
			name: "defaults skip spaces and openings",
			ext:  ".obj",
			want: []int{ifctest.SiteID, ifctest.BuildingID, ifctest.GroundID, ifctest.FirstID,
				ifctest.WallID, ifctest.DoorID, ifctest.Column1ID, ifctest.Column2ID, ifctest.SlabID},
		},
		{
			name: "floor plans keep only spaces",
			ext:  ".svg",
			want: []int{ifctest.SpaceID},
		},
		{
			name: "entity types are subtype aware and case-insensitive",
			args: []arg{{filter.SlotInclude, "entities ifcwall IfcSlab"}},
			want: []int{ifctest.WallID, ifctest.SlabID},
		},
		{
			name: "entity filter replaces the defaults",
			args: []arg{{filter.SlotExclude, "entities IfcColumn"}},
			want: []int{ifctest.SiteID, ifctest.BuildingID, ifctest.GroundID, ifctest.FirstID,
				ifctest.WallID, ifctest.OpeningID, ifctest.DoorID, ifctest.SpaceID, ifctest.SlabID},
		},
		{
			name: "layer glob",
			args: []arg{{filter.SlotInclude, "layers A-*"}},
			want: []int{ifctest.WallID},
		},
		{
			name: "layers are case-sensitive",
			args: []arg{{filter.SlotInclude, "layers a-wall"}},
			want: nil,
		},
		{
			name: "attribute glob",
			args: []arg{{filter.SlotInclude, "arg Name Column*"}},
			want: []int{ifctest.Column1ID, ifctest.Column2ID},
		},
		{
			name: "quoted attribute value",
			args: []arg{{filter.SlotInclude, `arg Name "Wall A"`}},
			want: []int{ifctest.WallID},
		},
		{
			name: "exclude with traversal drops the storey contents",
			args: []arg{{filter.SlotExcludeTraverse, "arg Name First"}},
			want: []int{ifctest.SiteID, ifctest.BuildingID, ifctest.GroundID,
				ifctest.WallID, ifctest.DoorID, ifctest.SlabID},
		},
		{
			name: "include with traversal follows voids and fills",
			args: []arg{{filter.SlotIncludeTraverse, "arg Name Ground"}},
			want: []int{ifctest.GroundID, ifctest.WallID, ifctest.DoorID, ifctest.SlabID},
		},
		{
			name: "include without traversal",
			args: []arg{{filter.SlotInclude, "arg Name Ground"}},
			want: []int{ifctest.GroundID},
		},
		{
			name: "expression",
			args: []arg{{filter.SlotInclude, `expr (and (is "IfcColumn") (glob "*2" (attr "Name")))`}},
			want: []int{ifctest.Column2ID},
		},
		{
			name: "filters combine with and",
			args: []arg{
				{filter.SlotIncludeTraverse, "arg Name Ground"},
				{filter.SlotExclude, "entities IfcDoor IfcSpace IfcOpeningElement"},
			},
			want: []int{ifctest.GroundID, ifctest.WallID, ifctest.SlabID},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, candidates(t, tt.ext, tt.args...))
		})
	}
}

func TestAppendMerge(t *testing.T) {
	var set filter.Set
	require.NoError(t, set.AppendArg(filter.SlotInclude, "entities IfcWall"))
	require.NoError(t, set.AppendArg(filter.SlotInclude, "entities IfcSlab IfcWall"))

	specs := set.Specs()
	require.Len(t, specs, 1)
	assert.Equal(t, []string{"IfcSlab", "IfcWall"}, specs[0].Values)
	assert.True(t, specs[0].Include)
	assert.False(t, specs[0].Traverse)

	err := set.AppendArg(filter.SlotInclude, "layers A-*")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidFilter))

	// Other slots are independent.
	require.NoError(t, set.AppendArg(filter.SlotExclude, "layers A-*"))

	require.NoError(t, set.AppendArg(filter.SlotExcludeTraverse, "arg Name X"))
	require.NoError(t, set.AppendArg(filter.SlotExcludeTraverse, "arg Name Y"))
	err = set.AppendArg(filter.SlotExcludeTraverse, "arg Tag X")
	assert.True(t, errors.Is(err, errors.ErrInvalidFilter), "different attribute: %v", err)
}

func TestParseSpecErrors(t *testing.T) {
	for _, words := range [][]string{
		nil,
		{"entities"},
		{"arg"},
		{"arg", "Name"},
		{"colours", "red"},
		{"expr"},
	} {
		_, err := filter.ParseSpec(words)
		assert.True(t, errors.Is(err, errors.ErrInvalidFilter), "ParseSpec(%q) = %v", words, err)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"attribute not filterable", "arg ObjectType x"},
		{"bad pattern", "layers ["},
		{"bad expression", "expr (is"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var set filter.Set
			require.NoError(t, set.AppendArg(filter.SlotInclude, tt.text))
			_, err := set.Build(filter.Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidFilter))
		})
	}
}

func TestExpressionFailureIsConfigError(t *testing.T) {
	var set filter.Set
	require.NoError(t, set.AppendArg(filter.SlotInclude, "expr (is 1)"))
	chain, err := set.Build(filter.Options{})
	require.NoError(t, err)
	_, err = chain.Candidates(ifctest.Sample(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidFilter))
}

func TestParseSlot(t *testing.T) {
	tests := map[string]filter.Slot{
		"include":    filter.SlotInclude,
		"--include+": filter.SlotIncludeTraverse,
		"exclude":    filter.SlotExclude,
		"-exclude+":  filter.SlotExcludeTraverse,
	}
	for in, want := range tests {
		got, err := filter.ParseSlot(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, in[len(in)-len(got.String()):], got.String())
	}
	_, err := filter.ParseSlot("select")
	assert.Error(t, err)
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"entities IfcWall  IfcSlab", []string{"entities", "IfcWall", "IfcSlab"}},
		{"arg\tName \"Level 1\"", []string{"arg", "Name", "Level 1"}},
		{`arg Name "say \"hi\""`, []string{"arg", "Name", `say "hi"`}},
		{`arg Name ""`, []string{"arg", "Name", ""}},
		{"   ", nil},
	}
	for _, tt := range tests {
		got, err := filter.SplitWords(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	_, err := filter.SplitWords(`arg Name "open`)
	assert.Error(t, err)
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "filters.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFile(t *testing.T) {
	path := writeFile(t, `
--include=arg GlobalId 2O2Fr$t4X7Zf8NOew3FLOH

include arg  GlobalId	3acB4UDC7fN9UNVwoWloir
exclude+ expr (is "IfcDoor")
`)
	var set filter.Set
	n, err := set.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	specs := set.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, filter.KindAttribute, specs[0].Kind)
	assert.Equal(t, "GlobalId", specs[0].Arg)
	assert.Equal(t, []string{"2O2Fr$t4X7Zf8NOew3FLOH", "3acB4UDC7fN9UNVwoWloir"}, specs[0].Values)
	assert.Equal(t, []string{`(is "IfcDoor")`}, specs[1].Values)
	assert.True(t, specs[1].Traverse)

	chain, err := set.Build(filter.Options{})
	require.NoError(t, err)
	got, err := chain.Candidates(ifctest.Sample(t))
	require.NoError(t, err)
	assert.Equal(t, []int{ifctest.WallID, ifctest.Column1ID}, ids(got))
}

func TestReadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown type", "include arg Name x\nselect entities IfcWall\n", "line 2"},
		{"bad filter", "include colours red\n", "line 1"},
		{"conflict", "include entities IfcWall\ninclude layers A\n", "line 2"},
		{"empty", "\n  \n", "no filters read"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var set filter.Set
			_, err := set.ReadFile(writeFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	var set filter.Set
	_, err := set.ReadFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, errors.Is(err, errors.ErrInvalidFilter))
}

func TestDescribe(t *testing.T) {
	var set filter.Set
	require.NoError(t, set.AppendArg(filter.SlotIncludeTraverse, "arg Name Ground"))
	chain, err := set.Build(filter.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"including entities with Name: Ground (and their decomposition)",
		"excluding entities: IfcOpeningElement, IfcSpace",
	}, chain.Describe())
}
