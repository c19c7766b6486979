// Package config reads and updates the testbed workspace: config.yaml (tool
// registries, workflow services, logging, snapshot paths) and queues.yaml
// (the queue registry).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/msageha/wfinterop/internal/lock"
	"github.com/msageha/wfinterop/internal/model"
	atomicyaml "github.com/msageha/wfinterop/internal/yaml"
)

const (
	WorkspaceDirName = ".wfinterop"
	ConfigFile       = "config.yaml"
	QueuesFile       = "queues.yaml"
	lockFile         = "config.lock"
	lockKey          = "config"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrCorrupt           = errors.New("corrupt config file")
	ErrUnknownQueue      = errors.New("queue not registered")
	ErrInvalidQueue      = errors.New("invalid queue")
)

// FindWorkspace walks up from start looking for a .wfinterop directory.
func FindWorkspace(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}
	for {
		candidate := filepath.Join(dir, WorkspaceDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %s in %s or any parent (run 'wfinterop setup')",
				ErrWorkspaceNotFound, WorkspaceDirName, start)
		}
		dir = parent
	}
}

// Store gives access to one workspace directory. Reads always go to disk;
// writes are serialized by an in-process mutex plus a flock on
// locks/config.lock and land atomically.
type Store struct {
	dir   string
	locks *lock.MutexMap
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, locks: lock.NewMutexMap()}
}

func (s *Store) Dir() string        { return s.dir }
func (s *Store) ConfigPath() string { return filepath.Join(s.dir, ConfigFile) }
func (s *Store) QueuesPath() string { return filepath.Join(s.dir, QueuesFile) }
func (s *Store) LockPath() string   { return filepath.Join(s.dir, "locks", lockFile) }

// Load reads config.yaml.
func (s *Store) Load() (model.Config, error) {
	var cfg model.Config
	if err := readYAML(s.ConfigPath(), &cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

// Queues reads queues.yaml in document order.
func (s *Store) Queues() (model.QueueSet, error) {
	var qs model.QueueSet
	if err := readYAML(s.QueuesPath(), &qs); err != nil {
		return model.QueueSet{}, err
	}
	return qs, nil
}

func (s *Store) WorkflowServices() (model.Ordered[model.Service], error) {
	cfg, err := s.Load()
	if err != nil {
		return model.Ordered[model.Service]{}, err
	}
	return cfg.WorkflowServices, nil
}

func (s *Store) ToolRegistries() (model.Ordered[model.Service], error) {
	cfg, err := s.Load()
	if err != nil {
		return model.Ordered[model.Service]{}, err
	}
	return cfg.ToolRegistries, nil
}

// SnapshotPaths returns the testbed log and submission queue paths from cfg,
// resolved against the workspace directory.
func (s *Store) SnapshotPaths(cfg model.Config) (testbedLog, submissionQueue string) {
	return s.resolve(cfg.Paths.TestbedLog, model.DefaultTestbedLogFile),
		s.resolve(cfg.Paths.SubmissionQueue, model.DefaultSubmissionQueueFile)
}

func (s *Store) resolve(p, def string) string {
	if p == "" {
		p = def
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.dir, p)
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := yamlv3.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v (try 'wfinterop config recover %s')",
			ErrCorrupt, path, err, filepath.Base(path))
	}
	return nil
}

// update runs fn under the workspace write lock.
func (s *Store) update(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.LockPath()), 0755); err != nil {
		return fmt.Errorf("create locks dir: %w", err)
	}
	return lock.With(s.locks, lockKey, s.LockPath(), fn)
}

func (s *Store) updateConfig(fn func(cfg *model.Config) error) error {
	return s.update(func() error {
		cfg, err := s.Load()
		if err != nil {
			return err
		}
		if err := fn(&cfg); err != nil {
			return err
		}
		if err := atomicyaml.AtomicWrite(s.ConfigPath(), cfg); err != nil {
			return fmt.Errorf("write %s: %w", ConfigFile, err)
		}
		return nil
	})
}

func (s *Store) updateQueues(fn func(qs *model.QueueSet) error) error {
	return s.update(func() error {
		qs, err := s.Queues()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := fn(&qs); err != nil {
			return err
		}
		if err := atomicyaml.AtomicWrite(s.QueuesPath(), qs); err != nil {
			return fmt.Errorf("write %s: %w", QueuesFile, err)
		}
		return nil
	})
}

// Recover quarantines a corrupted config.yaml or queues.yaml and restores it
// from its .bak, falling back to an empty skeleton.
func (s *Store) Recover(name string) error {
	var path, fileType string
	switch name {
	case ConfigFile, "config":
		path, fileType = s.ConfigPath(), atomicyaml.FileTypeConfig
	case QueuesFile, "queues":
		path, fileType = s.QueuesPath(), atomicyaml.FileTypeQueues
	default:
		return fmt.Errorf("cannot recover %q: want %s or %s", name, ConfigFile, QueuesFile)
	}
	return s.update(func() error {
		return atomicyaml.RecoverCorruptedFile(s.dir, path, fileType)
	})
}
