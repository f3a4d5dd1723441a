package ifc

import (
	"strings"

	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/google/uuid"
)

// guidChars is the IFC base64 alphabet. It differs from RFC 4648.
const guidChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

// ExpandGUID decodes a 22 character compressed GlobalId into a UUID.
// The first character carries 2 bits, the remaining 21 carry 6 each.
func ExpandGUID(compressed string) (uuid.UUID, error) {
	if len(compressed) != 22 {
		return uuid.Nil, errors.Newf("GlobalId %q has %d characters, want 22", compressed, len(compressed))
	}
	var b [16]byte
	pos := 0
	for i := 0; i < 6; i++ {
		width, nbytes := 4, 3
		start := 2 + (i-1)*4
		if i == 0 {
			width, nbytes, start = 2, 1, 0
		}
		var v uint32
		for _, c := range compressed[start : start+width] {
			d := strings.IndexRune(guidChars, c)
			if d < 0 {
				return uuid.Nil, errors.Newf("GlobalId %q contains invalid character %q", compressed, c)
			}
			v = v*64 + uint32(d)
		}
		for k := nbytes - 1; k >= 0; k-- {
			b[pos+k] = byte(v)
			v >>= 8
		}
		if v != 0 {
			return uuid.Nil, errors.Newf("GlobalId %q is out of range", compressed)
		}
		pos += nbytes
	}
	return uuid.FromBytes(b[:])
}

// CompressGUID is the inverse of ExpandGUID.
func CompressGUID(u uuid.UUID) string {
	var sb strings.Builder
	sb.Grow(22)
	pos := 0
	for i := 0; i < 6; i++ {
		width, nbytes := 4, 3
		if i == 0 {
			width, nbytes = 2, 1
		}
		var v uint32
		for k := 0; k < nbytes; k++ {
			v = v<<8 | uint32(u[pos+k])
		}
		pos += nbytes
		var chunk [4]byte
		for k := width - 1; k >= 0; k-- {
			chunk[k] = guidChars[v%64]
			v /= 64
		}
		sb.Write(chunk[:width])
	}
	return sb.String()
}

// FormatGUID renders a compressed GlobalId as a lowercase, dashed UUID.
func FormatGUID(compressed string) (string, error) {
	u, err := ExpandGUID(compressed)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// NewGUID returns a fresh random compressed GlobalId.
func NewGUID() string {
	return CompressGUID(uuid.New())
}
