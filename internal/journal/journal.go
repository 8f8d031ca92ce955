// internal/journal/journal.go
package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/peekapeak/peekctl/internal/logger"
)

// Journal tracks which photos have been archived so an interrupted
// export can resume without re-uploading
type Journal struct {
	mu      sync.Mutex
	path    string
	Entries map[string]Entry `json:"entries"`
}

// Entry records one archived photo
type Entry struct {
	FileName  string    `json:"fileName"`
	PhotoID   int       `json:"photoId"`
	Archived  bool      `json:"archived"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a journal at path; an empty path picks a default in the
// user's home directory
func New(path string) *Journal {
	if path == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, ".peekctl-export-journal.json")
		} else {
			path = ".peekctl-export-journal.json"
		}
	}

	return &Journal{
		path:    path,
		Entries: make(map[string]Entry),
	}
}

// Load loads the journal from disk; a missing file starts fresh
func (j *Journal) Load() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := os.ReadFile(j.path)
	if os.IsNotExist(err) {
		logger.Info("No export journal at %s, starting fresh", j.path)
		return nil
	}
	if err != nil {
		return err
	}

	var loaded Journal
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}

	j.Entries = loaded.Entries
	if j.Entries == nil {
		j.Entries = make(map[string]Entry)
	}
	logger.Info("Loaded export journal with %d entries from %s", len(j.Entries), j.path)
	return nil
}

// Save writes the journal to disk
func (j *Journal) Save() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.save()
}

func (j *Journal) save() error {
	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(j.path, data, 0644)
}

// MarkArchived records a photo as archived and persists the journal
func (j *Journal) MarkArchived(fileName string, photoID int) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.Entries[fileName] = Entry{
		FileName:  fileName,
		PhotoID:   photoID,
		Archived:  true,
		Timestamp: time.Now(),
	}

	if err := j.save(); err != nil {
		logger.Error("Failed to save export journal: %v", err)
	}
}

// IsArchived checks whether a photo was already archived
func (j *Journal) IsArchived(fileName string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry, exists := j.Entries[fileName]
	return exists && entry.Archived
}

// Stats returns the journal's totals
func (j *Journal) Stats() (total, archived int) {
	j.mu.Lock()
	defer j.mu.Unlock()

	total = len(j.Entries)
	for _, entry := range j.Entries {
		if entry.Archived {
			archived++
		}
	}
	return total, archived
}
