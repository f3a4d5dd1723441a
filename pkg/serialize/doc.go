// Package serialize writes iterator results to disk. Triangulated
// elements go to a single model file (OBJ with its MTL, 3MF, or a DXF
// wireframe); serialized elements go to one blob per element in a
// directory.
//
// Writers are fed in iteration order from a single goroutine and are
// not safe for concurrent use.
package serialize
