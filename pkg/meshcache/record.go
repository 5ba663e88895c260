// Package meshcache builds and persists flattened, host-independent
// mesh records extracted from glTF documents. The cache artifact is the
// boundary to the scene consumer: consumers materialize native geometry
// from MeshRecord data and own any coordinate-space conventions of
// their host (in particular the texture V-axis flip commonly applied
// when mapping UVs onto native meshes — records store UVs exactly as
// decoded).
package meshcache

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltfcache/pkg/gltf"
)

// TransformSpec is a node transform as found in the source document:
// either an explicit column-major 4x4 matrix, or any subset of
// translation/rotation/scale. When a matrix is present it takes
// precedence over the TRS fields. Rotation keeps the source component
// order (x, y, z, w).
type TransformSpec struct {
	Matrix      *[16]float32
	Translation *[3]float32
	Rotation    *[4]float32
	Scale       *[3]float32
}

// TransformFromNode extracts the transform carried by a node, or nil
// if the node has no transform fields. Fields of unexpected length are
// ignored rather than failing the document.
func TransformFromNode(n *gltf.Node) *TransformSpec {
	t := &TransformSpec{}
	if len(n.Matrix) == 16 {
		t.Matrix = (*[16]float32)(n.Matrix)
	}
	if len(n.Translation) == 3 {
		t.Translation = (*[3]float32)(n.Translation)
	}
	if len(n.Rotation) == 4 {
		t.Rotation = (*[4]float32)(n.Rotation)
	}
	if len(n.Scale) == 3 {
		t.Scale = (*[3]float32)(n.Scale)
	}
	if t.Matrix == nil && t.Translation == nil && t.Rotation == nil && t.Scale == nil {
		return nil
	}
	return t
}

// Resolve composes the transform into a single matrix. Both glTF and
// mgl32 store matrices column-major, so an explicit matrix loads
// directly with no transpose. Otherwise the TRS parts compose in the
// fixed order M = T * R * S, with missing parts defaulting to
// identity. A nil spec resolves to identity.
func (t *TransformSpec) Resolve() mgl32.Mat4 {
	if t == nil {
		return mgl32.Ident4()
	}
	if t.Matrix != nil {
		return mgl32.Mat4(*t.Matrix)
	}

	m := mgl32.Ident4()
	if t.Scale != nil {
		m = mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2]).Mul4(m)
	}
	if t.Rotation != nil {
		// Source order is (x, y, z, w); mgl32 is scalar-first.
		q := mgl32.Quat{
			W: t.Rotation[3],
			V: mgl32.Vec3{t.Rotation[0], t.Rotation[1], t.Rotation[2]},
		}
		m = q.Normalize().Mat4().Mul4(m)
	}
	if t.Translation != nil {
		m = mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2]).Mul4(m)
	}
	return m
}

// MeshRecord is one flattened primitive. Invariants: every face index
// is < len(Verts); when UVs is non-nil, len(UVs) == len(Verts).
// TexturePath is the absolute resolved base-color texture path, or
// empty when the primitive has none.
type MeshRecord struct {
	Verts       [][3]float32
	Faces       [][3]uint32
	UVs         [][2]float32
	TexturePath string
	Transform   *TransformSpec
}

// CacheEntry holds all mesh records of one source document. Name is
// the document filename stem and serves as the consumer's grouping
// key.
type CacheEntry struct {
	Name   string
	Meshes []MeshRecord
}

// Cache is the persisted artifact: entries in sorted document filename
// order, loaded wholesale.
type Cache struct {
	Entries []CacheEntry
}
