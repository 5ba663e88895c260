// gltfcache is a CLI utility that preprocesses directories of glTF
// documents into a single mesh cache artifact.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/gltfcache/internal/config"
	"github.com/Faultbox/gltfcache/internal/logger"
	"github.com/Faultbox/gltfcache/pkg/meshcache"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		cmdBuild(args)
	case "info":
		cmdInfo(args)
	case "verify":
		cmdVerify(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`gltfcache - glTF mesh cache preprocessor

Usage:
  gltfcache <command> [options]

Commands:
  build [options]        Build the cache from a directory of .gltf files
  info <cache-file>      Show cache artifact statistics
  verify <cache-file>    Load the cache and check record invariants

Build options:
  -models <dir>          Directory of .gltf documents
  -textures <dir>        Texture root directory
  -cache <file>          Output cache artifact path
  -workers <n>           Concurrent build workers (0 = all CPUs)
  -resume <file>         Progress file; reruns skip processed documents
  -checkpoint <n>        Save partial cache every n documents
  -config <file>         Config file (default ./gltfcache.yaml)
  -debug                 Enable debug logging

Examples:
  gltfcache build -models ./modelLib -textures ./modelLib/texture -cache ./cache/meshes.gmsc
  gltfcache info ./cache/meshes.gmsc`)
}

func cmdBuild(args []string) {
	config.ParseFlags(args)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Options{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.LogFile,
		Console: true,
	})
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Log.Info("building mesh cache",
		zap.String("models", cfg.Paths.ModelDir),
		zap.String("textures", cfg.Paths.TextureDir),
		zap.String("cache", cfg.Paths.CacheFile))

	cache, report, err := meshcache.BuildAll(ctx, cfg.Paths.ModelDir, meshcache.BuildOptions{
		TextureRoot:     cfg.Paths.TextureDir,
		Workers:         cfg.Build.Workers,
		CheckpointEvery: cfg.Build.CheckpointEvery,
		CachePath:       cfg.Paths.CacheFile,
		ProgressPath:    cfg.Paths.ProgressFile,
		Logger:          logger.Log,
	})
	if err != nil {
		// Canceled mid-batch: checkpoints already hold completed work.
		logger.Log.Warn("batch interrupted", zap.Error(err))
		os.Exit(1)
	}

	if err := meshcache.Save(cache, cfg.Paths.CacheFile); err != nil {
		logger.Log.Error("saving cache failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Log.Info("cache built",
		zap.Int("entries", len(cache.Entries)),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int("resumed", report.Resumed))
	for reason, count := range report.Reasons() {
		logger.Log.Info("skip reason", zap.String("reason", reason), zap.Int("count", count))
	}
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: gltfcache info <cache-file>")
		os.Exit(1)
	}

	cache, err := meshcache.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var meshes, verts, faces, textured int
	texturePaths := make(map[string]int)
	for _, entry := range cache.Entries {
		meshes += len(entry.Meshes)
		for _, m := range entry.Meshes {
			verts += len(m.Verts)
			faces += len(m.Faces)
			if m.TexturePath != "" {
				textured++
				texturePaths[m.TexturePath]++
			}
		}
	}

	fmt.Printf("Cache:    %s\n", args[0])
	fmt.Printf("Entries:  %d\n", len(cache.Entries))
	fmt.Printf("Meshes:   %d (%d textured)\n", meshes, textured)
	fmt.Printf("Vertices: %d\n", verts)
	fmt.Printf("Faces:    %d\n", faces)
	fmt.Printf("Textures: %d distinct\n", len(texturePaths))

	if len(cache.Entries) > 0 {
		fmt.Println()
		fmt.Println("Entries:")
		names := make([]string, 0, len(cache.Entries))
		byName := make(map[string]int)
		for _, e := range cache.Entries {
			names = append(names, e.Name)
			byName[e.Name] = len(e.Meshes)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Printf("  %-40s %d meshes\n", n, byName[n])
		}
	}
}

func cmdVerify(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: gltfcache verify <cache-file>")
		os.Exit(1)
	}

	cache, err := meshcache.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	problems := 0
	for _, entry := range cache.Entries {
		for mi, m := range entry.Meshes {
			for _, f := range m.Faces {
				for _, idx := range f {
					if int(idx) >= len(m.Verts) {
						fmt.Printf("%s mesh %d: face index %d out of range (%d verts)\n",
							entry.Name, mi, idx, len(m.Verts))
						problems++
					}
				}
			}
			if m.UVs != nil && len(m.UVs) != len(m.Verts) {
				fmt.Printf("%s mesh %d: %d UVs for %d verts\n",
					entry.Name, mi, len(m.UVs), len(m.Verts))
				problems++
			}
		}
	}

	if problems > 0 {
		fmt.Printf("FAILED: %d invariant violations\n", problems)
		os.Exit(1)
	}
	fmt.Printf("OK: %d entries verified\n", len(cache.Entries))
}
