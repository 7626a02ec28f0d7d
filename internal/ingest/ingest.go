package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"storydoc/internal/config"
	"storydoc/internal/parser"
	"storydoc/internal/store"
	"storydoc/internal/validate"
)

// Store is the subset of the store the ingester needs.
type Store interface {
	EnsureSchema(ctx context.Context) error
	UpsertStory(ctx context.Context, s store.StoryInput) error
	GetSourceHashes(ctx context.Context) (map[string]string, error)
	RemoveStaleStories(ctx context.Context, currentSourceFiles []string) (int64, error)
}

type Options struct {
	Full bool
}

type Result struct {
	StoriesUpserted int
	StoriesRemoved  int64
	FilesSkipped    int
	Errors          []error
}

// Run synchronises the store with the story documents under the configured
// source paths. Unchanged files are skipped by source hash unless Full is
// set; parse failures are collected without aborting the run.
func Run(ctx context.Context, cfg *config.ProjectConfig, db Store, options Options) (*Result, error) {
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	var existingHashes map[string]string
	if !options.Full {
		var err error
		existingHashes, err = db.GetSourceHashes(ctx)
		if err != nil {
			return nil, fmt.Errorf("get source hashes: %w", err)
		}
	}

	files, err := walkStoryFiles(cfg.Sources.Paths, cfg.Sources.Exclude)
	if err != nil {
		return nil, fmt.Errorf("walking source paths: %w", err)
	}

	result := &Result{}
	for _, path := range files {
		source, err := os.ReadFile(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("reading %s: %w", path, err))
			continue
		}
		hash := computeHash(source)
		if !options.Full {
			if existing, ok := existingHashes[path]; ok && existing == hash {
				result.FilesSkipped++
				continue
			}
		}

		st, err := parser.ParseString(string(source))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", path, err))
			continue
		}

		valid, _ := validate.ValidateReferences(st)
		input := store.StoryInput{
			Name:       storyName(path),
			SourceFile: path,
			SourceHash: hash,
			Source:     string(source),
			Chapters:   len(st.Chapters),
			Groups:     len(st.Groups),
			Nodes:      len(st.Nodes),
			Characters: len(st.Characters),
			Valid:      valid,
		}
		if err := db.UpsertStory(ctx, input); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("upserting %s: %w", path, err))
			continue
		}
		result.StoriesUpserted++
	}

	removed, err := db.RemoveStaleStories(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("removing stale stories: %w", err)
	}
	result.StoriesRemoved = removed

	return result, nil
}

func walkStoryFiles(paths, exclude []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !strings.HasSuffix(path, ".sdc") {
				return nil
			}
			for _, pattern := range exclude {
				if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
					return nil
				}
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func storyName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
