package element

import (
	"strings"

	"github.com/chazu/ifcgeom/pkg/ifc"
	"go.uber.org/zap"
)

// Element is the part of a conversion result that does not depend on
// the geometry form. Parents indexes the iterator's hierarchy arena,
// nearest spatial parent last.
type Element struct {
	ID             int
	ParentID       int
	Name           string
	Type           string
	GUID           string
	Context        string
	UniqueID       string
	Transformation Transformation
	Product        *ifc.Entity
	Parents        []int
}

// New builds an element and derives its unique id. A GlobalId that cannot
// be decoded is logged and the id falls back to "product".
func New(id, parentID int, name, typ, guid, context string, t Transformation, product *ifc.Entity, log *zap.SugaredLogger) *Element {
	e := &Element{
		ID:             id,
		ParentID:       parentID,
		Name:           name,
		Type:           typ,
		GUID:           guid,
		Context:        context,
		Transformation: t,
		Product:        product,
	}
	e.UniqueID = uniqueID(e, log)
	return e
}

func uniqueID(e *Element, log *zap.SugaredLogger) string {
	var b strings.Builder
	if ifc.CanonicalName(e.Type) == "IfcProject" {
		b.WriteString("project")
	} else {
		b.WriteString("product")
		if s, err := ifc.FormatGUID(e.GUID); err != nil {
			if log != nil {
				log.Errorw("cannot decode GlobalId", "id", e.ID, "guid", e.GUID, "error", err)
			}
		} else {
			b.WriteString("-")
			b.WriteString(s)
		}
	}
	if e.Context != "" {
		b.WriteString("-")
		b.WriteString(strings.ReplaceAll(strings.ToLower(e.Context), " ", "-"))
	}
	return b.String()
}

// Equal reports whether both elements describe the same entity.
func (e *Element) Equal(o *Element) bool {
	return e.ID == o.ID
}

// Elevation returns the storey elevation in file units. ok is false for
// other types and storeys without one.
func (e *Element) Elevation() (elev float64, ok bool) {
	if e.Product == nil || !e.Product.Is("IfcBuildingStorey") {
		return 0, false
	}
	return e.Product.Float("Elevation")
}

// Less orders storeys by elevation and everything else by id.
func Less(a, b *Element) bool {
	ea, okA := a.Elevation()
	eb, okB := b.Elevation()
	if okA && okB {
		return ea < eb
	}
	return a.ID < b.ID
}

// Base returns e. It lets every stage expose its element through Stage.
func (e *Element) Base() *Element {
	return e
}
