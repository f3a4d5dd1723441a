package iterator

import (
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/geom"
)

// ComputeBounds computes the extent of the candidate product placements
// with a representation. It may be called once the iterator is Ready.
// Coordinates are meters, or file units when units are converted back.
func (it *Iterator) ComputeBounds() error {
	if it.state == Uninitialized {
		return errors.New("ComputeBounds called before Initialize")
	}
	conv := geom.NewConverter(it.opts.File, it.opts.Graph, nil, it.opts.Settings, it.log)
	scale := 1.0
	if it.opts.Settings.Mesh.ConvertBackUnits && it.unitMagnitude > 0 {
		scale = 1 / it.unitMagnitude
	}
	it.boundsValid = false
	for _, e := range it.candidates {
		if e.Ref("Representation") == nil {
			continue
		}
		m, err := conv.ObjectPlacement(e)
		if err != nil {
			it.log.Warnw("placement ignored for bounds", "id", e.ID, "error", err)
			continue
		}
		p := m.Translation()
		for i := range p {
			p[i] *= scale
		}
		if !it.boundsValid {
			it.boundsMin, it.boundsMax, it.boundsValid = p, p, true
			continue
		}
		for i := 0; i < 3; i++ {
			it.boundsMin[i] = min(it.boundsMin[i], p[i])
			it.boundsMax[i] = max(it.boundsMax[i], p[i])
		}
	}
	if !it.boundsValid {
		return errors.New("no placed products to compute bounds from")
	}
	return nil
}

// BoundsMin returns the lower corner found by ComputeBounds.
func (it *Iterator) BoundsMin() [3]float64 {
	return it.boundsMin
}

// BoundsMax returns the upper corner found by ComputeBounds.
func (it *Iterator) BoundsMax() [3]float64 {
	return it.boundsMax
}
