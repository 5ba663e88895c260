package meshcache

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/gltfcache/pkg/gltf"
)

// ErrNoGeometry marks a document that loaded fine but produced no mesh
// records (no meshes array, or no primitive with a POSITION attribute
// survived decoding).
var ErrNoGeometry = errors.New("document produced no mesh records")

// Builder converts one glTF document into a CacheEntry. A Builder is
// safe for concurrent use by multiple build workers; the only shared
// state is the texture resolver's stat cache, which locks internally.
type Builder struct {
	textures *TextureResolver
	log      *zap.Logger
}

// NewBuilder creates a builder resolving textures under textureRoot.
// A nil logger disables diagnostics.
func NewBuilder(textureRoot string, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		textures: NewTextureResolver(textureRoot),
		log:      log,
	}
}

// Textures exposes the builder's texture resolver, mainly for its
// stat-cache counters.
func (b *Builder) Textures() *TextureResolver { return b.textures }

// Build processes a single document into a CacheEntry. All failures
// are local to the document: the caller skips it and continues the
// batch. Returns ErrNoGeometry when the document is valid but has
// nothing to cache.
func (b *Builder) Build(docPath string) (*CacheEntry, error) {
	doc, buf, err := gltf.Load(docPath)
	if err != nil {
		return nil, err
	}

	docDir := filepath.Dir(docPath)
	transforms := b.nodeTransforms(doc, docPath)

	entry := &CacheEntry{Name: gltf.Stem(docPath)}
	for mi := range doc.Meshes {
		for pi := range doc.Meshes[mi].Primitives {
			prim := &doc.Meshes[mi].Primitives[pi]
			rec, err := b.buildPrimitive(doc, buf, prim, docDir)
			if err != nil {
				b.log.Warn("dropping primitive",
					zap.String("document", docPath),
					zap.Int("mesh", mi),
					zap.Int("primitive", pi),
					zap.Error(err))
				continue
			}
			if rec == nil {
				continue
			}
			rec.Transform = transforms[mi]
			entry.Meshes = append(entry.Meshes, *rec)
		}
	}

	if len(entry.Meshes) == 0 {
		return nil, ErrNoGeometry
	}
	return entry, nil
}

// nodeTransforms maps mesh index to the transform of the node that
// references it. The source format allows several nodes to reference
// one mesh; the last scanned node wins, with a diagnostic, matching
// single-instance model libraries.
func (b *Builder) nodeTransforms(doc *gltf.Document, docPath string) map[int]*TransformSpec {
	transforms := make(map[int]*TransformSpec)
	for ni := range doc.Nodes {
		node := &doc.Nodes[ni]
		if node.Mesh == nil {
			continue
		}
		if _, dup := transforms[*node.Mesh]; dup {
			b.log.Warn("mesh referenced by multiple nodes, last transform wins",
				zap.String("document", docPath),
				zap.Int("mesh", *node.Mesh),
				zap.Int("node", ni))
		}
		transforms[*node.Mesh] = TransformFromNode(node)
	}
	return transforms
}

// buildPrimitive decodes one primitive. Primitives without a POSITION
// attribute yield (nil, nil). An index accessor with an unsupported
// component type drops the whole primitive rather than silently
// re-triangulating from vertex order.
func (b *Builder) buildPrimitive(doc *gltf.Document, buf []byte, prim *gltf.Primitive, docDir string) (*MeshRecord, error) {
	posIdx, ok := prim.Attributes[gltf.AttrPosition]
	if !ok {
		return nil, nil
	}

	verts, err := gltf.DecodeVec3(doc, buf, posIdx)
	if err != nil {
		return nil, fmt.Errorf("decoding positions: %w", err)
	}

	var uvs [][2]float32
	if uvIdx, ok := prim.Attributes[gltf.AttrTexCoord0]; ok {
		uvs, err = gltf.DecodeVec2(doc, buf, uvIdx)
		if err != nil {
			return nil, fmt.Errorf("decoding texcoords: %w", err)
		}
		if len(uvs) != len(verts) {
			b.log.Warn("texcoord count does not match vertex count, dropping UVs",
				zap.Int("uvs", len(uvs)),
				zap.Int("verts", len(verts)))
			uvs = nil
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = gltf.DecodeIndices(doc, buf, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("decoding indices: %w", err)
		}
	}

	faces, err := gltf.AssembleFaces(indices, len(verts))
	if err != nil {
		return nil, fmt.Errorf("assembling faces: %w", err)
	}

	return &MeshRecord{
		Verts:       verts,
		Faces:       faces,
		UVs:         uvs,
		TexturePath: b.textures.Resolve(doc, prim, docDir),
	}, nil
}
