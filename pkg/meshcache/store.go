package meshcache

import (
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store errors.
var (
	ErrCorruptCache = errors.New("corrupt cache artifact")
	ErrCacheVersion = errors.New("incompatible cache version")
)

const cacheMagic = "GMSC"

// cacheVersion is bumped on incompatible changes to the record layout.
// The gob payload tolerates field additions on its own; the version
// exists for fast rejection of artifacts this binary cannot read.
const cacheVersion uint16 = 1

// Save writes the cache as a single artifact: magic, little-endian
// version, then a gob-encoded payload. The artifact is written to a
// temp file in the target directory and renamed into place so a crash
// mid-write never leaves a half-written cache behind.
func Save(c *Cache, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".gmsc-*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeCache(tmp, c); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp cache file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing cache artifact: %w", err)
	}
	return nil
}

func writeCache(w io.Writer, c *Cache) error {
	if _, err := w.Write([]byte(cacheMagic)); err != nil {
		return fmt.Errorf("writing cache header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, cacheVersion); err != nil {
		return fmt.Errorf("writing cache version: %w", err)
	}
	if err := gob.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}
	return nil
}

// Load reads a cache artifact wholesale. A bad magic or undecodable
// payload fails with ErrCorruptCache, an unknown version with
// ErrCacheVersion; the remedy for either is deleting the artifact and
// rebuilding.
func Load(path string) (*Cache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening cache artifact: %w", err)
	}
	defer f.Close()

	magic := make([]byte, len(cacheMagic))
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	if string(magic) != cacheMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorruptCache, magic)
	}

	var version uint16
	if err := binary.Read(f, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	if version != cacheVersion {
		return nil, fmt.Errorf("%w: artifact version %d, supported %d", ErrCacheVersion, version, cacheVersion)
	}

	c := &Cache{}
	if err := gob.NewDecoder(f).Decode(c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCache, err)
	}
	return c, nil
}
