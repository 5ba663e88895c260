package gltf

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Loader errors.
var (
	ErrMalformedDocument         = errors.New("malformed glTF document")
	ErrMissingBinaryBuffer       = errors.New("no loadable binary buffer")
	ErrUnsupportedBufferEncoding = errors.New("embedded buffer encoding not supported")
)

// Load parses the glTF JSON document at path and loads its companion
// binary buffer. The buffer URI is resolved relative to the document's
// parent directory; the first buffer that exists on disk wins.
func Load(path string) (*Document, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading document: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse parses raw document JSON and resolves its binary buffer against
// baseDir. Split out from Load for testability.
func Parse(data []byte, baseDir string) (*Document, []byte, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	if err := doc.validate(); err != nil {
		return nil, nil, err
	}

	buf, err := loadBuffer(doc, baseDir)
	if err != nil {
		return nil, nil, err
	}
	return doc, buf, nil
}

// validate checks that the arrays the decode path depends on are
// present. A document without meshes is valid; it just yields nothing.
func (d *Document) validate() error {
	if len(d.Meshes) == 0 {
		return nil
	}
	if len(d.Accessors) == 0 {
		return fmt.Errorf("%w: meshes present but no accessors", ErrMalformedDocument)
	}
	if len(d.BufferViews) == 0 {
		return fmt.Errorf("%w: meshes present but no bufferViews", ErrMalformedDocument)
	}
	if len(d.Buffers) == 0 {
		return fmt.Errorf("%w: meshes present but no buffers", ErrMalformedDocument)
	}
	return nil
}

// loadBuffer loads the first referenced buffer that exists on disk.
func loadBuffer(doc *Document, baseDir string) ([]byte, error) {
	sawEmbedded := false
	for _, b := range doc.Buffers {
		if b.URI == "" {
			continue
		}
		if strings.HasPrefix(b.URI, "data:") {
			sawEmbedded = true
			continue
		}
		binPath := filepath.Join(baseDir, filepath.FromSlash(b.URI))
		data, err := os.ReadFile(binPath)
		if err == nil {
			return data, nil
		}
	}
	if sawEmbedded {
		return nil, ErrUnsupportedBufferEncoding
	}
	return nil, ErrMissingBinaryBuffer
}

// Stem returns the document filename without directory or extension,
// used as the cache entry name.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
