package search

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// ManifestVersion is the current schema version.
	ManifestVersion = 1

	// ManifestFilename is the default manifest filename.
	ManifestFilename = "manifest.json"
)

// Manifest records what the persisted section index was built from.
type Manifest struct {
	Version      int                  `json:"version"`
	BuiltAt      time.Time            `json:"built_at"`
	Inputs       []string             `json:"inputs"`
	SectionCount int                  `json:"section_count"`
	Files        map[string]FileState `json:"files"`
	mu           sync.RWMutex         `json:"-"`
}

// FileState summarizes one indexed file.
type FileState struct {
	Sections   int `json:"sections"`
	TextBlocks int `json:"text_blocks"`
	CodeBlocks int `json:"code_blocks"`
}

// NewManifest creates a new empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		Version: ManifestVersion,
		Files:   make(map[string]FileState),
	}
}

// LoadManifest reads a manifest from disk, or creates a new one if it doesn't exist.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewManifest(), nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if manifest.Files == nil {
		manifest.Files = make(map[string]FileState)
	}

	return &manifest, nil
}

// Save writes the manifest to disk atomically using write-to-temp + rename.
func (m *Manifest) Save(path string) error {
	m.mu.RLock()
	data, err := json.MarshalIndent(m, "", "  ")
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename manifest file: %w", err)
	}

	return nil
}

// SetFileState records the summary for one indexed file.
func (m *Manifest) SetFileState(path string, state FileState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Files[path] = state
}

// GetFileState returns the summary for one file and whether it was indexed.
func (m *Manifest) GetFileState(path string) (FileState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.Files[path]
	return state, ok
}

// FilePaths returns the indexed file paths in unspecified order.
func (m *Manifest) FilePaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.Files))
	for path := range m.Files {
		paths = append(paths, path)
	}
	return paths
}

// Reset clears the manifest and stamps a new build.
func (m *Manifest) Reset(inputs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Version = ManifestVersion
	m.BuiltAt = time.Now()
	m.Inputs = append([]string(nil), inputs...)
	m.SectionCount = 0
	m.Files = make(map[string]FileState)
}

// SetSectionCount records the total number of indexed sections.
func (m *Manifest) SetSectionCount(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SectionCount = n
}
