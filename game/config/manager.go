package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrInvalidContent  = errors.New("invalid content")
)

// Manager handles content bundle loading and caching
type Manager struct {
	contentDir     string
	defaultContent *Content
	contents       map[string]*Content
	mu             sync.RWMutex
}

// NewManager creates a content manager over a directory of JSON bundles.
// An empty directory path serves the built-in bundle only.
func NewManager(contentDir string) (*Manager, error) {
	if contentDir != "" {
		if _, err := os.Stat(contentDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("content directory does not exist: %s", contentDir)
		}
	}

	m := &Manager{
		contentDir: contentDir,
		contents:   make(map[string]*Content),
	}
	m.loadDefaultContent()
	return m, nil
}

// LoadContent loads a bundle by name. The built-in bundle is served for
// DefaultContentID unless the directory overrides it.
func (m *Manager) LoadContent(name string) (*Content, error) {
	name = strings.TrimSuffix(name, ".json")
	if name == "" {
		return m.GetDefault(), nil
	}

	m.mu.RLock()
	if content, exists := m.contents[name]; exists {
		m.mu.RUnlock()
		return content, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if content, exists := m.contents[name]; exists {
		return content, nil
	}

	content, err := m.readFile(name)
	if errors.Is(err, ErrContentNotFound) && name == DefaultContentID {
		content, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}

	m.contents[name] = content
	return content, nil
}

// readFile loads and validates one bundle from disk
func (m *Manager) readFile(name string) (*Content, error) {
	if m.contentDir == "" || strings.ContainsAny(name, `/\`) {
		return nil, ErrContentNotFound
	}

	data, err := os.ReadFile(filepath.Join(m.contentDir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}

	var content Content
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidContent, name, err)
	}
	if err := ValidateContent(&content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return &content, nil
}

// ListContent returns every available bundle, the built-in one first unless
// a file shadows it. Invalid files are skipped.
func (m *Manager) ListContent() ([]*ContentInfo, error) {
	var infos []*ContentInfo
	seen := make(map[string]bool)

	if m.contentDir != "" {
		entries, err := os.ReadDir(m.contentDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read content directory: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			name := strings.TrimSuffix(entry.Name(), ".json")

			content, err := m.LoadContent(name)
			if err != nil {
				log.Warn().Err(err).Str("content", name).Msg("skipping invalid content bundle")
				continue
			}
			infos = append(infos, content.Info(name, entry.Name()))
			seen[name] = true
		}
	}

	if !seen[DefaultContentID] {
		infos = append(infos, Default().Info(DefaultContentID, ""))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ContentID < infos[j].ContentID })
	return infos, nil
}

// GetDefault returns the default bundle
func (m *Manager) GetDefault() *Content {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultContent
}

// SetDefault sets the default bundle by name
func (m *Manager) SetDefault(name string) error {
	content, err := m.LoadContent(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultContent = content
	return nil
}

// RefreshCache drops every cached bundle and reloads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.contents = make(map[string]*Content)
	m.mu.Unlock()

	m.loadDefaultContent()
}

// loadDefaultContent prefers default.json from the directory, falling back to
// the built-in bundle
func (m *Manager) loadDefaultContent() {
	content, err := m.LoadContent(DefaultContentID)
	if err != nil {
		log.Warn().Err(err).Msg("falling back to built-in content")
		content = Default()
	}

	m.mu.Lock()
	m.defaultContent = content
	m.mu.Unlock()
}

// SaveContent validates a bundle and writes it to disk
func (m *Manager) SaveContent(name string, content *Content) error {
	if err := ValidateContent(content); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if m.contentDir == "" {
		return fmt.Errorf("no content directory configured")
	}

	name = strings.TrimSuffix(name, ".json")
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: invalid content name %q", ErrInvalidContent, name)
	}

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.contentDir, name+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write content file: %w", err)
	}

	m.mu.Lock()
	m.contents[name] = content
	m.mu.Unlock()

	log.Info().Str("content", name).Msg("content bundle saved")
	return nil
}
