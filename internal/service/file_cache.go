package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ghbulk/ghbulk/internal/domain"
)

// Snapshot is the metadata persisted between CLI runs so pickers can be
// primed without refetching. Map keys are owner qualifiers for repositories
// and assignees, repository full names for labels and milestones. The access
// token is never part of a snapshot.
type Snapshot struct {
	Timestamp    time.Time                      `json:"timestamp"`
	User         domain.User                    `json:"user"`
	Owners       []domain.Owner                 `json:"owners,omitempty"`
	Repositories map[string][]domain.Repository `json:"repositories,omitempty"`
	Assignees    map[string][]domain.Assignee   `json:"assignees,omitempty"`
	Labels       map[string][]domain.Label      `json:"labels,omitempty"`
	Milestones   map[string][]domain.Milestone  `json:"milestones,omitempty"`
}

// SetRepositories records an owner's repositories, keyed by owner qualifier.
func (s *Snapshot) SetRepositories(key string, repos []domain.Repository) {
	if s.Repositories == nil {
		s.Repositories = make(map[string][]domain.Repository)
	}
	s.Repositories[key] = repos
}

// SetAssignees records an owner's assignees, keyed by owner qualifier.
func (s *Snapshot) SetAssignees(key string, assignees []domain.Assignee) {
	if s.Assignees == nil {
		s.Assignees = make(map[string][]domain.Assignee)
	}
	s.Assignees[key] = assignees
}

// SetLabels records a repository's labels, keyed by full name.
func (s *Snapshot) SetLabels(repo string, labels []domain.Label) {
	if s.Labels == nil {
		s.Labels = make(map[string][]domain.Label)
	}
	s.Labels[repo] = labels
}

// SetMilestones records a repository's milestones, keyed by full name.
func (s *Snapshot) SetMilestones(repo string, milestones []domain.Milestone) {
	if s.Milestones == nil {
		s.Milestones = make(map[string][]domain.Milestone)
	}
	s.Milestones[repo] = milestones
}

// FileCache persists a metadata snapshot as a JSON file.
type FileCache struct {
	filePath string
	mu       sync.RWMutex
	logger   Logger
}

// NewFileCache creates a new file cache.
func NewFileCache(filePath string, logger Logger) *FileCache {
	return &FileCache{
		filePath: filePath,
		logger:   logger,
	}
}

// Load loads the snapshot from the file.
// Returns nil if the file doesn't exist or is invalid.
func (c *FileCache) Load() (*Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, err := os.Stat(c.filePath); os.IsNotExist(err) {
		c.logger.Printf("File cache: no cache file at %s", c.filePath)
		return nil, nil
	}

	data, err := os.ReadFile(c.filePath)
	if err != nil {
		c.logger.Printf("File cache: failed to read cache file: %v", err)
		return nil, err
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		c.logger.Printf("File cache: failed to parse cache file: %v", err)
		return nil, err
	}

	age := time.Since(snapshot.Timestamp)
	c.logger.Printf("File cache: loaded %s (age: %v, owners: %d)",
		c.filePath, age.Round(time.Second), len(snapshot.Owners))

	return &snapshot, nil
}

// Save saves the snapshot to the file via a temp-file rename.
func (c *FileCache) Save(snapshot *Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot.Timestamp = time.Now()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		c.logger.Printf("File cache: failed to marshal snapshot: %v", err)
		return err
	}

	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.logger.Printf("File cache: failed to create directory %s: %v", dir, err)
		return err
	}

	tempFile := c.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		c.logger.Printf("File cache: failed to write temp file: %v", err)
		return err
	}

	if err := os.Rename(tempFile, c.filePath); err != nil {
		c.logger.Printf("File cache: failed to rename temp file: %v", err)
		os.Remove(tempFile)
		return err
	}

	c.logger.Printf("File cache: saved %s (owners: %d)", c.filePath, len(snapshot.Owners))
	return nil
}

// Clear removes the cache file.
func (c *FileCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.Remove(c.filePath); err != nil && !os.IsNotExist(err) {
		c.logger.Printf("File cache: failed to remove cache file: %v", err)
		return err
	}

	c.logger.Printf("File cache: cleared")
	return nil
}
