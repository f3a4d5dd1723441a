// Package geom maps IFC products to taxonomy items, builds them with a
// kernel and packages the result as elements. A Converter belongs to
// one worker: its caches and kernel are not shared.
//
// All lengths are converted to meters while mapping. Placements follow
// the IfcLocalPlacement chain of each product.
package geom
