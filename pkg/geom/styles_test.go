package geom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/ifc/ifctest"
	"github.com/chazu/ifcgeom/pkg/taxonomy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "materials.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultMaterials(t *testing.T) {
	m := DefaultMaterials()
	tests := []struct {
		typ  string
		want string
	}{
		{"IfcWall", "IfcWall"},
		{"IFCWALLSTANDARDCASE", "IfcWallStandardCase"},
		{"IfcWindow", "IfcWindow"},
		{"IfcColumn", ""},
		{"IfcUnknownThing", ""},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			s := m.ForType(tt.typ)
			if tt.want == "" {
				assert.Nil(t, s)
				return
			}
			require.NotNil(t, s)
			assert.Equal(t, tt.want, s.Name)
		})
	}
	assert.True(t, m.ForType("IfcWindow").HasTransparency())
}

func TestLoadMaterials(t *testing.T) {
	path := writeFile(t, `
[types.IfcColumn]
diffuse = [0.1, 0.2, 0.3]

[types.IfcWall]
transparency = 0.5

[materials.Concrete]
diffuse = [0.6, 0.6, 0.6]
specular = [1.0, 1.0, 1.0]
specularity = 64.0
`)
	m, err := LoadMaterials(path)
	require.NoError(t, err)

	col := m.ForType("IfcColumn")
	require.NotNil(t, col)
	assert.Equal(t, "IfcColumn", col.Name)
	assert.Equal(t, taxonomy.Color{0.1, 0.2, 0.3}, *col.Diffuse)

	// Overrides keep the built-in fields they do not name.
	wall := m.ForType("IfcWall")
	require.NotNil(t, wall)
	assert.Equal(t, taxonomy.Color{0.9, 0.9, 0.9}, *wall.Diffuse)
	assert.Equal(t, 0.5, *wall.Transparency)
	assert.Nil(t, DefaultMaterials().ForType("IfcWall").Transparency)

	concrete := m.ForMaterial("Concrete")
	require.NotNil(t, concrete)
	assert.Equal(t, 64.0, *concrete.Specularity)
	assert.Nil(t, m.ForMaterial("Steel"))
}

func TestLoadMaterialsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[types.IfcWall\n"},
		{"short colour", "[types.IfcWall]\ndiffuse = [0.1, 0.2]\n"},
		{"colour range", "[materials.X]\nspecular = [0.1, 2.0, 0.3]\n"},
		{"transparency range", "[materials.X]\ntransparency = -1.0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMaterials(writeFile(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig), "got %v", err)
		})
	}

	_, err := LoadMaterials(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))

	m, err := LoadMaterials("")
	require.NoError(t, err)
	assert.NotNil(t, m.ForType("IfcSlab"))
}

const renderingModel = `#9200=IFCCOLOURRGB($,0.1,0.2,0.3);
#9201=IFCCOLOURRGB($,0.9,0.9,0.9);
#9202=IFCSURFACESTYLERENDERING(#9200,0.25,#9201,$,$,$,#9201,IFCSPECULARROUGHNESS(0.5),.PHONG.);
#9203=IFCSURFACESTYLE('Glass',.BOTH.,(#9202));
#9204=IFCPRESENTATIONSTYLEASSIGNMENT((#9203));
#9205=IFCSTYLEDITEM(#504,(#9204),$);
`

func TestItemStyles(t *testing.T) {
	c := newConverter(t, withExtra(t, renderingModel), nil, defaultSettings())

	wall := c.styles.ItemStyle(c.file.ByID(104))
	require.NotNil(t, wall)
	assert.Equal(t, "Brick", wall.Name)
	assert.Equal(t, taxonomy.Color{0.6, 0.3, 0.2}, *wall.Diffuse)
	assert.Nil(t, wall.Specular)

	slab := c.styles.ItemStyle(c.file.ByID(504))
	require.NotNil(t, slab)
	assert.Equal(t, "Glass", slab.Name)
	assert.Equal(t, taxonomy.Color{0.9, 0.9, 0.9}, *slab.Diffuse)
	assert.Equal(t, taxonomy.Color{0.9, 0.9, 0.9}, *slab.Specular)
	assert.Equal(t, 0.25, *slab.Transparency)
	assert.Equal(t, 2.0, *slab.Specularity)

	assert.Nil(t, c.styles.ItemStyle(c.file.ByID(204)))

	n := convertOne(t, c, ifctest.SlabID)
	assert.Equal(t, "Glass", n.Geometry.Items[0].Style.Name)
}
