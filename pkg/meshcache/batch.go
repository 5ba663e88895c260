package meshcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/gltfcache/pkg/gltf"
)

// BuildOptions configures a batch build.
type BuildOptions struct {
	// TextureRoot is the directory searched for base-color textures.
	TextureRoot string

	// Workers is the number of concurrent document builders.
	// Defaults to runtime.NumCPU().
	Workers int

	// CheckpointEvery saves a partial cache and a progress sidecar
	// after every N completed documents, so an interrupted build can
	// resume. Zero disables checkpointing. Requires CachePath.
	CheckpointEvery int

	// CachePath is where checkpoints are written (the same path the
	// caller will save the final cache to).
	CachePath string

	// ProgressPath is the JSON sidecar listing processed documents.
	// When the file exists at startup, those documents are skipped and
	// their entries are taken from the checkpoint cache.
	ProgressPath string

	Logger *zap.Logger
}

// Result is the outcome of one document's build.
type Result struct {
	Document string // base filename
	Meshes   int    // mesh records produced (0 when skipped/failed)
	Err      error  // nil on success
}

// Report aggregates per-document results so batch health is
// inspectable programmatically rather than only via log output.
type Report struct {
	Results   []Result
	Succeeded int
	Skipped   int // benign: no geometry, no binary buffer
	Failed    int // malformed documents, decode errors, panics
	Resumed   int // taken from a previous run's checkpoint
}

// Reasons buckets skipped and failed documents by failure class.
func (r *Report) Reasons() map[string]int {
	out := make(map[string]int)
	for _, res := range r.Results {
		if res.Err != nil {
			out[reason(res.Err)]++
		}
	}
	return out
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrNoGeometry):
		return "no-geometry"
	case errors.Is(err, gltf.ErrMissingBinaryBuffer):
		return "missing-buffer"
	case errors.Is(err, gltf.ErrUnsupportedBufferEncoding):
		return "unsupported-buffer-encoding"
	case errors.Is(err, gltf.ErrMalformedDocument):
		return "malformed-document"
	default:
		return "error"
	}
}

// skippable reports whether err is a benign absence rather than a
// broken document.
func skippable(err error) bool {
	return errors.Is(err, ErrNoGeometry) ||
		errors.Is(err, gltf.ErrMissingBinaryBuffer) ||
		errors.Is(err, gltf.ErrUnsupportedBufferEncoding)
}

// progressFile is the resume sidecar written next to checkpoints.
type progressFile struct {
	Done []string `json:"done"`
}

// BuildAll enumerates *.gltf documents in docDir in sorted filename
// order and builds each into a cache entry. Documents are processed
// concurrently but the returned cache preserves sorted filename order
// regardless of completion order. Per-document failures are recorded
// in the report and never abort the batch. Canceling ctx stops
// enqueuing further documents; entries already built are returned
// along with ctx.Err().
func BuildAll(ctx context.Context, docDir string, opts BuildOptions) (*Cache, *Report, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	files, err := filepath.Glob(filepath.Join(docDir, "*.gltf"))
	if err != nil {
		return nil, nil, fmt.Errorf("enumerating documents: %w", err)
	}
	sort.Strings(files)

	entries := make([]*CacheEntry, len(files))
	errs := make([]error, len(files))
	resumed := make([]bool, len(files))

	done := loadProgress(opts, entries, resumed, files, log)

	builder := NewBuilder(opts.TextureRoot, log)

	var pending []int
	for i := range files {
		if !resumed[i] {
			pending = append(pending, i)
		}
	}

	type outcome struct {
		index int
		entry *CacheEntry
		err   error
	}

	indexes := make(chan int)
	completions := make(chan outcome)

	go func() {
		defer close(indexes)
		for _, i := range pending {
			select {
			case indexes <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				entry, err := buildSafe(builder, files[i])
				completions <- outcome{index: i, entry: entry, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(completions)
	}()

	// Only this goroutine touches entries/errs, so checkpointing can
	// read them without racing the workers.
	completed := 0
	for out := range completions {
		entries[out.index], errs[out.index] = out.entry, out.err
		completed++
		done = append(done, filepath.Base(files[out.index]))
		if out.err != nil {
			log.Warn("skipping document",
				zap.String("document", files[out.index]),
				zap.Error(out.err))
		}
		if opts.CheckpointEvery > 0 && completed%opts.CheckpointEvery == 0 {
			checkpoint(opts, entries, done, log)
		}
	}

	cache := &Cache{}
	report := &Report{}
	for i := range files {
		name := filepath.Base(files[i])
		if resumed[i] {
			report.Resumed++
		}
		switch {
		case resumed[i] && entries[i] == nil:
			// Processed in a previous run with nothing to cache.
			report.Skipped++
			report.Results = append(report.Results, Result{Document: name, Err: ErrNoGeometry})
		case entries[i] != nil:
			cache.Entries = append(cache.Entries, *entries[i])
			report.Succeeded++
			report.Results = append(report.Results, Result{Document: name, Meshes: len(entries[i].Meshes)})
		case errs[i] != nil:
			if skippable(errs[i]) {
				report.Skipped++
			} else {
				report.Failed++
			}
			report.Results = append(report.Results, Result{Document: name, Err: errs[i]})
		}
	}

	if ctx.Err() != nil {
		return cache, report, ctx.Err()
	}

	if opts.ProgressPath != "" {
		writeProgress(opts.ProgressPath, done, log)
	}
	return cache, report, nil
}

// buildSafe converts a worker panic into a per-document error so one
// pathological file cannot take down a multi-hundred-file batch.
func buildSafe(b *Builder, path string) (entry *CacheEntry, err error) {
	defer func() {
		if r := recover(); r != nil {
			entry, err = nil, fmt.Errorf("panic while processing document: %v", r)
		}
	}()
	return b.Build(path)
}

// loadProgress restores resume state from a previous run: entries for
// already-processed documents are pulled from the checkpoint cache and
// their indexes marked resumed. Returns the list of processed base
// filenames.
func loadProgress(opts BuildOptions, entries []*CacheEntry, resumed []bool, files []string, log *zap.Logger) []string {
	if opts.ProgressPath == "" || opts.CachePath == "" {
		return nil
	}
	data, err := os.ReadFile(opts.ProgressPath)
	if err != nil {
		return nil
	}
	var prog progressFile
	if err := json.Unmarshal(data, &prog); err != nil {
		log.Warn("unreadable progress file, starting fresh", zap.Error(err))
		return nil
	}

	// Without a readable checkpoint cache the progress list is
	// worthless: successful documents would come back empty.
	partial, err := Load(opts.CachePath)
	if err != nil {
		log.Warn("checkpoint cache unreadable, rebuilding all", zap.Error(err))
		return nil
	}
	byName := make(map[string]*CacheEntry, len(partial.Entries))
	for i := range partial.Entries {
		byName[partial.Entries[i].Name] = &partial.Entries[i]
	}

	doneSet := make(map[string]bool, len(prog.Done))
	for _, name := range prog.Done {
		doneSet[name] = true
	}

	var done []string
	for i, f := range files {
		base := filepath.Base(f)
		if !doneSet[base] {
			continue
		}
		resumed[i] = true
		entries[i] = byName[gltf.Stem(f)] // nil when the run had nothing to cache
		done = append(done, base)
	}
	if len(done) > 0 {
		log.Info("resuming batch", zap.Int("already_processed", len(done)))
	}
	return done
}

// checkpoint saves the entries built so far plus the progress sidecar.
// Checkpoint failures are logged and do not interrupt the batch.
func checkpoint(opts BuildOptions, entries []*CacheEntry, done []string, log *zap.Logger) {
	if opts.CachePath == "" {
		return
	}
	partial := &Cache{}
	for _, e := range entries {
		if e != nil {
			partial.Entries = append(partial.Entries, *e)
		}
	}
	if err := Save(partial, opts.CachePath); err != nil {
		log.Warn("checkpoint save failed", zap.Error(err))
		return
	}
	if opts.ProgressPath != "" {
		writeProgress(opts.ProgressPath, done, log)
	}
}

func writeProgress(path string, done []string, log *zap.Logger) {
	sort.Strings(done)
	data, err := json.MarshalIndent(progressFile{Done: done}, "", "  ")
	if err != nil {
		log.Warn("encoding progress file failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Warn("writing progress file failed", zap.Error(err))
	}
}
