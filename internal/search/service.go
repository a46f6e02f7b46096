package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/mdsect/mdsect/internal/domain"
)

// Service coordinates building, opening, and querying the section index.
type Service struct {
	baseDir    string
	maxResults int
	indexer    *Indexer
	manifest   *Manifest
	lock       *FileLock
	index      bleve.Index
	ready      bool
	mu         sync.RWMutex
}

// NewService creates a section search service rooted at baseDir.
func NewService(baseDir string, maxResults int) (*Service, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("index directory cannot be empty")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	manifest, err := LoadManifest(filepath.Join(baseDir, ManifestFilename))
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	return &Service{
		baseDir:    baseDir,
		maxResults: maxResults,
		indexer:    NewIndexer(baseDir),
		manifest:   manifest,
		lock:       NewFileLock(filepath.Join(baseDir, LockFilename)),
	}, nil
}

// Build replaces the persisted index with a snapshot of the given aggregated
// index. A flock guards the index directory; a concurrent build returns
// ErrBuildInProgress rather than corrupting the index.
func (s *Service) Build(ctx context.Context, index domain.Index, inputs []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	acquired, err := s.lock.TryLock()
	if err != nil {
		return 0, fmt.Errorf("failed to acquire build lock: %w", err)
	}
	if !acquired {
		return 0, ErrBuildInProgress
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			slog.Error("Failed to release build lock", "error", err)
		}
	}()

	count, err := s.indexer.Build(index)
	if err != nil {
		return count, err
	}

	s.manifest.Reset(inputs)
	ordinals := make(map[string]int)
	for _, record := range index {
		ordinals[record.FilePath]++
		state, _ := s.manifest.GetFileState(record.FilePath)
		state.Sections = ordinals[record.FilePath]
		state.TextBlocks += len(record.BodyText)
		state.CodeBlocks += len(record.CodeBlocks)
		s.manifest.SetFileState(record.FilePath, state)
	}
	s.manifest.SetSectionCount(count)

	if err := s.manifest.Save(s.manifestPath()); err != nil {
		slog.Error("Failed to save index manifest", "error", err)
	}

	slog.Info("Section index built", "dir", s.baseDir, "sections", count, "files", len(ordinals))
	return count, nil
}

// Open opens the persisted index read-only and marks the service ready.
func (s *Service) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}
	if !s.indexer.Exists() {
		return fmt.Errorf("no section index found in %s", s.baseDir)
	}

	index, err := s.indexer.OpenForRead()
	if err != nil {
		return err
	}

	s.index = index
	s.ready = true
	return nil
}

// IsReady returns true once the index is open for queries.
func (s *Service) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Index returns the open Bleve index.
func (s *Service) Index() (bleve.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return nil, fmt.Errorf("section index is not open")
	}
	return s.index, nil
}

// Manifest returns the build manifest.
func (s *Service) Manifest() *Manifest {
	return s.manifest
}

// MaxResults returns the configured result cap for queries.
func (s *Service) MaxResults() int {
	return s.maxResults
}

// Close releases the open index, if any.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ready = false
	if s.index == nil {
		return nil
	}
	index := s.index
	s.index = nil
	return index.Close()
}

func (s *Service) manifestPath() string {
	return filepath.Join(s.baseDir, ManifestFilename)
}
