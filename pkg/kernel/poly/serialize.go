package poly

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/chazu/ifcgeom/pkg/kernel"
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Serialize writes s as an OFF polyhedron with outward face winding.
func (k *PolyKernel) Serialize(s kernel.Shape) ([]byte, string, error) {
	p, err := unwrap(s)
	if err != nil {
		return nil, "", err
	}
	nv, nf := 0, 0
	for _, part := range p.parts {
		nv += len(part.verts)
		nf += len(part.faces)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "OFF\n%d %d 0\n", nv, nf)
	for _, part := range p.parts {
		for _, v := range part.verts {
			fmt.Fprintf(&buf, "%s %s %s\n", formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]))
		}
	}
	base := 0
	for _, part := range p.parts {
		for _, f := range part.faces {
			fmt.Fprintf(&buf, "%d", len(f.loop))
			for i := range f.loop {
				vi := f.loop[i]
				if f.reversed {
					vi = f.loop[len(f.loop)-1-i]
				}
				fmt.Fprintf(&buf, " %d", base+vi)
			}
			buf.WriteByte('\n')
		}
		base += len(part.verts)
	}
	return buf.Bytes(), "off", nil
}
