package store

import (
	"context"
	"time"
)

// Store persists ingested story documents. Execution history is never
// stored; only parsed sources and their summary metadata.
type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	UpsertStory(ctx context.Context, s StoryInput) error
	GetStory(ctx context.Context, name string) (*Story, error)
	ListStories(ctx context.Context) ([]StorySummary, error)
	GetSourceHashes(ctx context.Context) (map[string]string, error)
	RemoveStaleStories(ctx context.Context, currentSourceFiles []string) (int64, error)
}

type StoryInput struct {
	Name       string
	SourceFile string
	SourceHash string
	Source     string
	Chapters   int
	Groups     int
	Nodes      int
	Characters int
	Valid      bool
}

type Story struct {
	Name         string
	SourceFile   string
	SourceHash   string
	Source       string
	Chapters     int
	Groups       int
	Nodes        int
	Characters   int
	Valid        bool
	LastIngested time.Time
}

type StorySummary struct {
	Name       string
	SourceFile string
	Chapters   int
	Groups     int
	Nodes      int
	Characters int
	Valid      bool
}
