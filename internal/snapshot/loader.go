// Package snapshot reads the testbed log and submission queue files written
// by the external submission pipeline.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	yamlv3 "gopkg.in/yaml.v3"
)

// Loader decodes the snapshot stored at path into v. A snapshot that does not
// exist yet decodes as an empty mapping.
type Loader interface {
	Load(path string, v any) error
}

var emptySnapshot = []byte("{}")

// FileLoader reads snapshots from disk. Every call re-reads the file;
// concurrent calls for the same path share one read.
type FileLoader struct {
	group singleflight.Group
}

func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

func (l *FileLoader) Load(path string, v any) error {
	res, err, _ := l.group.Do(path, func() (any, error) {
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return emptySnapshot, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read snapshot %s: %w", path, err)
		}
		return data, nil
	})
	if err != nil {
		return err
	}
	return Decode(path, res.([]byte), v)
}

// Decode parses data as YAML when path has a .yaml/.yml extension and as
// JSON otherwise. Blank content is treated as an empty mapping.
func Decode(path string, data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		data = emptySnapshot
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yamlv3.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse snapshot %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse snapshot %s: %w", path, err)
		}
	}
	return nil
}

// MemLoader serves snapshots from memory.
type MemLoader struct {
	mu    sync.Mutex
	files map[string][]byte
	loads map[string]int
}

func NewMemLoader() *MemLoader {
	return &MemLoader{
		files: make(map[string][]byte),
		loads: make(map[string]int),
	}
}

// Put stores content for path, replacing any previous content.
func (m *MemLoader) Put(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = []byte(content)
}

func (m *MemLoader) Load(path string, v any) error {
	m.mu.Lock()
	data, ok := m.files[path]
	m.loads[path]++
	m.mu.Unlock()

	if !ok {
		data = emptySnapshot
	}
	return Decode(path, data, v)
}

// Loads reports how many times path has been loaded.
func (m *MemLoader) Loads(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads[path]
}
