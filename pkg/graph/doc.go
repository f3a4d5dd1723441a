// Package graph models the spatial decomposition of an IFC model as a
// DAG: project, site, building and storeys aggregate one another, storeys
// contain elements, elements are voided by openings and openings are
// filled by doors and windows. Filters use it to close over descendants;
// the iterator uses it to resolve each product's spatial parents.
package graph
