// Package element describes a product's extracted geometry. An Element
// carries identity, placement and hierarchy; the stage types Native,
// Triangulated and Serialized add the geometry in the form the
// iterator was asked to produce.
package element
