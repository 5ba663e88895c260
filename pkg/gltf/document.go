// Package gltf provides loading and decoding for glTF 2.0 text documents.
package gltf

// Component type codes from the glTF 2.0 specification.
const (
	ComponentUShort = 5123 // unsigned 16-bit
	ComponentUInt   = 5125 // unsigned 32-bit
	ComponentFloat  = 5126 // IEEE-754 float32
)

// AttrPosition and AttrTexCoord0 are the primitive attribute keys this
// package consumes.
const (
	AttrPosition  = "POSITION"
	AttrTexCoord0 = "TEXCOORD_0"
)

// Document is the parsed JSON graph of a glTF document. It is read-only
// once loaded and is discarded after the owning build pass completes.
type Document struct {
	Asset       Asset        `json:"asset"`
	Buffers     []Buffer     `json:"buffers"`
	BufferViews []BufferView `json:"bufferViews"`
	Accessors   []Accessor   `json:"accessors"`
	Meshes      []Mesh       `json:"meshes"`
	Nodes       []Node       `json:"nodes"`
	Materials   []Material   `json:"materials"`
	Textures    []Texture    `json:"textures"`
	Images      []Image      `json:"images"`
}

// Asset holds document metadata.
type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
}

// Buffer references a binary blob by URI. Embedded (data:) URIs are not
// supported by this loader.
type Buffer struct {
	URI        string `json:"uri"`
	ByteLength int    `json:"byteLength"`
}

// BufferView is a byte-range window into a buffer. A zero ByteStride
// means elements are tightly packed.
type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride"`
}

// Accessor describes how to interpret a typed array stored in a buffer.
type Accessor struct {
	BufferView    *int   `json:"bufferView"`
	ByteOffset    int    `json:"byteOffset"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
}

// Mesh is a named set of primitives.
type Mesh struct {
	Name       string      `json:"name"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive is one drawable geometry chunk with its own attributes,
// optional index accessor and optional material.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices"`
	Material   *int           `json:"material"`
}

// Node carries either an explicit column-major matrix or TRS fields.
// Rotation is stored (x, y, z, w) as in the source format.
type Node struct {
	Name        string    `json:"name"`
	Mesh        *int      `json:"mesh"`
	Matrix      []float32 `json:"matrix"`
	Translation []float32 `json:"translation"`
	Rotation    []float32 `json:"rotation"`
	Scale       []float32 `json:"scale"`
}

// Material exposes only the PBR metallic-roughness base color slot;
// all other texture slots are ignored.
type Material struct {
	Name                 string                `json:"name"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness"`
}

// PBRMetallicRoughness holds the base color texture reference.
type PBRMetallicRoughness struct {
	BaseColorTexture *TextureRef `json:"baseColorTexture"`
}

// TextureRef points into the document's texture array.
type TextureRef struct {
	Index int `json:"index"`
}

// Texture points into the document's image array.
type Texture struct {
	Source *int `json:"source"`
}

// Image references an external image file by URI.
type Image struct {
	URI string `json:"uri"`
}
