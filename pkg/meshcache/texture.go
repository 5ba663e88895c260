package meshcache

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/Faultbox/gltfcache/pkg/gltf"
)

// TextureResolver resolves base-color texture references to existing
// files under a texture root directory. Lookups go through a stat
// cache so that the hundreds of documents sharing one texture root do
// not hit the filesystem repeatedly for the same candidates. Safe for
// concurrent use.
type TextureResolver struct {
	root string

	mu     sync.RWMutex
	seen   map[string]bool
	hits   int
	misses int
}

// NewTextureResolver creates a resolver rooted at the given texture
// directory.
func NewTextureResolver(root string) *TextureResolver {
	return &TextureResolver{
		root: root,
		seen: make(map[string]bool),
	}
}

// Resolve follows primitive.material -> pbrMetallicRoughness.
// baseColorTexture -> texture.source -> image.uri and probes, in
// order: root/uri, root/filename(uri), docDir/uri. The first existing
// candidate is returned as an absolute path. Any missing link in the
// chain, or no existing candidate, yields "".
func (r *TextureResolver) Resolve(doc *gltf.Document, prim *gltf.Primitive, docDir string) string {
	uri := baseColorURI(doc, prim)
	if uri == "" {
		return ""
	}

	rel := filepath.FromSlash(uri)
	candidates := []string{
		filepath.Join(r.root, rel),
		filepath.Join(r.root, filepath.Base(rel)),
		filepath.Join(docDir, rel),
	}

	for _, c := range candidates {
		if r.exists(c) {
			abs, err := filepath.Abs(c)
			if err != nil {
				return c
			}
			return abs
		}
	}
	return ""
}

// baseColorURI walks the material/texture/image reference chain.
func baseColorURI(doc *gltf.Document, prim *gltf.Primitive) string {
	if prim.Material == nil || *prim.Material < 0 || *prim.Material >= len(doc.Materials) {
		return ""
	}
	mat := &doc.Materials[*prim.Material]
	if mat.PBRMetallicRoughness == nil || mat.PBRMetallicRoughness.BaseColorTexture == nil {
		return ""
	}
	ti := mat.PBRMetallicRoughness.BaseColorTexture.Index
	if ti < 0 || ti >= len(doc.Textures) {
		return ""
	}
	tex := &doc.Textures[ti]
	if tex.Source == nil || *tex.Source < 0 || *tex.Source >= len(doc.Images) {
		return ""
	}
	return doc.Images[*tex.Source].URI
}

// exists reports whether path exists, consulting the stat cache first.
func (r *TextureResolver) exists(path string) bool {
	r.mu.RLock()
	ok, cached := r.seen[path]
	r.mu.RUnlock()
	if cached {
		r.mu.Lock()
		r.hits++
		r.mu.Unlock()
		return ok
	}

	_, err := os.Stat(path)
	ok = err == nil

	r.mu.Lock()
	r.seen[path] = ok
	r.misses++
	r.mu.Unlock()
	return ok
}

// Stats returns stat-cache hit and miss counts.
func (r *TextureResolver) Stats() (hits, misses int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hits, r.misses
}
