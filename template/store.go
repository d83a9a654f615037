package template

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Store persists parsed templates as one JSON record per template id, next to
// a per-id working directory holding the extracted archive contents.
//
// Save/Load/List/Delete are safe for concurrent use across distinct ids.
// Concurrent writes to the same id are last-writer-wins; callers serialize
// per-id operations themselves.
type Store struct {
	baseDir string
	mu      sync.RWMutex
	log     func(string)
}

// NewStore creates a Store rooted at baseDir. log may be nil.
func NewStore(baseDir string, log func(string)) *Store {
	if log == nil {
		log = func(string) {}
	}
	return &Store{baseDir: baseDir, log: log}
}

// Init ensures the storage directory exists.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("create template store dir: %w", err)
	}
	return nil
}

// WorkDir returns the extraction working directory for a template id.
func (s *Store) WorkDir(templateID string) string {
	return filepath.Join(s.baseDir, templateID)
}

// validateID rejects ids that could escape the storage directory.
func validateID(templateID string) error {
	if templateID == "" || strings.ContainsAny(templateID, `/\`) || strings.Contains(templateID, "..") {
		return fmt.Errorf("invalid template id %q", templateID)
	}
	return nil
}

func (s *Store) recordPath(templateID string) string {
	return filepath.Join(s.baseDir, templateID+".json")
}

// Save persists the template record, replacing any previous record with the
// same id.
func (s *Store) Save(t *ParsedTemplate) error {
	if err := validateID(t.TemplateID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("encode template %s: %w", t.TemplateID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.recordPath(t.TemplateID), data, 0644); err != nil {
		return fmt.Errorf("write template record: %w", err)
	}
	s.log(fmt.Sprintf("Template saved: %s", t.TemplateID))
	return nil
}

// Load reads a template record. A missing record is a normal outcome and
// returns (nil, nil); only I/O or decode failures produce an error.
func (s *Store) Load(templateID string) (*ParsedTemplate, error) {
	if err := validateID(templateID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.recordPath(templateID))
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read template record: %w", err)
	}

	var t ParsedTemplate
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode template record %s: %w", templateID, err)
	}
	return &t, nil
}

// List returns every durable record currently present, skipping records that
// no longer decode. Never returns nil.
func (s *Store) List() ([]*ParsedTemplate, error) {
	s.mu.RLock()
	entries, err := os.ReadDir(s.baseDir)
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return []*ParsedTemplate{}, nil
		}
		return nil, fmt.Errorf("read template store dir: %w", err)
	}

	templates := []*ParsedTemplate{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		t, err := s.Load(id)
		if err != nil || t == nil {
			// Corrupted or vanished record, skip it.
			continue
		}
		templates = append(templates, t)
	}
	return templates, nil
}

// Delete removes the record and the associated extraction working directory.
// Deleting an id that does not exist is not an error.
func (s *Store) Delete(templateID string) error {
	if err := validateID(templateID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.recordPath(templateID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete template record: %w", err)
	}
	if err := os.RemoveAll(s.WorkDir(templateID)); err != nil {
		return fmt.Errorf("delete template workdir: %w", err)
	}
	s.log(fmt.Sprintf("Template deleted: %s", templateID))
	return nil
}

// Cleanup removes every record and working directory whose last-modified time
// is strictly older than maxAge. Intended for periodic background invocation.
// Returns the number of entries removed.
func (s *Store) Cleanup(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read template store dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(s.baseDir, e.Name())
		if e.IsDir() {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		if err != nil {
			s.log(fmt.Sprintf("Cleanup failed for %s: %v", e.Name(), err))
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log(fmt.Sprintf("Cleanup removed %d stale entries", removed))
	}
	return removed, nil
}
