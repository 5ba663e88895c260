package gltf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Decoder errors.
var (
	ErrUnsupportedComponentType = errors.New("unsupported index component type")
	ErrShortBuffer              = errors.New("accessor reads past end of buffer")
)

// Tight-packed element sizes for float32 vector accessors.
const (
	vec3Size = 12
	vec2Size = 8
)

// accessorView resolves an accessor index to the accessor and its
// buffer view, bounds-checking both references.
func (d *Document) accessorView(index int) (*Accessor, *BufferView, error) {
	if index < 0 || index >= len(d.Accessors) {
		return nil, nil, fmt.Errorf("%w: accessor %d out of range", ErrMalformedDocument, index)
	}
	acc := &d.Accessors[index]
	if acc.BufferView == nil {
		return nil, nil, fmt.Errorf("%w: accessor %d has no bufferView (sparse accessors unsupported)", ErrMalformedDocument, index)
	}
	vi := *acc.BufferView
	if vi < 0 || vi >= len(d.BufferViews) {
		return nil, nil, fmt.Errorf("%w: bufferView %d out of range", ErrMalformedDocument, vi)
	}
	return acc, &d.BufferViews[vi], nil
}

// DecodeVec3 decodes accessor index as little-endian float32 triples,
// honoring the buffer view's byte stride when present.
func DecodeVec3(doc *Document, buf []byte, index int) ([][3]float32, error) {
	acc, view, err := doc.accessorView(index)
	if err != nil {
		return nil, err
	}

	base := view.ByteOffset + acc.ByteOffset
	stride := view.ByteStride
	if stride == 0 {
		stride = vec3Size
	}

	out := make([][3]float32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		off := base + i*stride
		if off+vec3Size > len(buf) {
			return nil, fmt.Errorf("%w: vec3 element %d at offset %d", ErrShortBuffer, i, off)
		}
		out[i] = [3]float32{
			readFloat32(buf, off),
			readFloat32(buf, off+4),
			readFloat32(buf, off+8),
		}
	}
	return out, nil
}

// DecodeVec2 decodes accessor index as little-endian float32 pairs,
// honoring the buffer view's byte stride when present.
func DecodeVec2(doc *Document, buf []byte, index int) ([][2]float32, error) {
	acc, view, err := doc.accessorView(index)
	if err != nil {
		return nil, err
	}

	base := view.ByteOffset + acc.ByteOffset
	stride := view.ByteStride
	if stride == 0 {
		stride = vec2Size
	}

	out := make([][2]float32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		off := base + i*stride
		if off+vec2Size > len(buf) {
			return nil, fmt.Errorf("%w: vec2 element %d at offset %d", ErrShortBuffer, i, off)
		}
		out[i] = [2]float32{
			readFloat32(buf, off),
			readFloat32(buf, off+4),
		}
	}
	return out, nil
}

// DecodeIndices decodes an index accessor. Component type 5123 reads
// unsigned 16-bit values, 5125 unsigned 32-bit; both are tightly
// packed (index buffer views carry no stride). Any other component
// type fails with ErrUnsupportedComponentType.
func DecodeIndices(doc *Document, buf []byte, index int) ([]uint32, error) {
	acc, view, err := doc.accessorView(index)
	if err != nil {
		return nil, err
	}

	base := view.ByteOffset + acc.ByteOffset

	var width int
	switch acc.ComponentType {
	case ComponentUShort:
		width = 2
	case ComponentUInt:
		width = 4
	default:
		return nil, fmt.Errorf("%w: componentType %d", ErrUnsupportedComponentType, acc.ComponentType)
	}

	if base+acc.Count*width > len(buf) {
		return nil, fmt.Errorf("%w: %d indices of %d bytes at offset %d", ErrShortBuffer, acc.Count, width, base)
	}

	out := make([]uint32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		off := base + i*width
		if width == 2 {
			out[i] = uint32(binary.LittleEndian.Uint16(buf[off:]))
		} else {
			out[i] = binary.LittleEndian.Uint32(buf[off:])
		}
	}
	return out, nil
}

// AssembleFaces groups indices into consecutive triangle triples. When
// indices is nil, triples are synthesized from vertex order instead:
// (0,1,2), (3,4,5), and so on. A trailing partial triple is dropped in
// either case. Every index is checked against vertexCount.
func AssembleFaces(indices []uint32, vertexCount int) ([][3]uint32, error) {
	if indices == nil {
		faces := make([][3]uint32, 0, vertexCount/3)
		for i := 0; i+2 < vertexCount; i += 3 {
			faces = append(faces, [3]uint32{uint32(i), uint32(i + 1), uint32(i + 2)})
		}
		return faces, nil
	}

	faces := make([][3]uint32, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		f := [3]uint32{indices[i], indices[i+1], indices[i+2]}
		for _, idx := range f {
			if int(idx) >= vertexCount {
				return nil, fmt.Errorf("%w: face index %d >= vertex count %d", ErrMalformedDocument, idx, vertexCount)
			}
		}
		faces = append(faces, f)
	}
	return faces, nil
}

func readFloat32(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}
