// Package setup creates a testbed workspace.
package setup

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/msageha/wfinterop/internal/config"
	"github.com/msageha/wfinterop/internal/model"
	atomicyaml "github.com/msageha/wfinterop/internal/yaml"
	"github.com/msageha/wfinterop/templates"
)

// Run initializes the .wfinterop/ directory in projectDir with the default
// config, the example queues and empty snapshots. It returns the workspace
// path.
func Run(projectDir string) (string, error) {
	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return "", fmt.Errorf("resolve project dir: %w", err)
	}

	base := filepath.Join(absDir, config.WorkspaceDirName)
	if _, err := os.Stat(base); err == nil {
		return "", fmt.Errorf("%s already exists", base)
	}

	dirs := []string{
		"locks",
		"logs",
		"quarantine",
		"reports",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(base, d), 0755); err != nil {
			return "", fmt.Errorf("create directory %s: %w", d, err)
		}
	}

	cfg, err := defaultConfig()
	if err != nil {
		return "", fmt.Errorf("generate config: %w", err)
	}
	if err := atomicyaml.AtomicWrite(filepath.Join(base, config.ConfigFile), cfg); err != nil {
		return "", fmt.Errorf("write %s: %w", config.ConfigFile, err)
	}

	queues, err := fs.ReadFile(templates.FS, config.QueuesFile)
	if err != nil {
		return "", fmt.Errorf("read queues template: %w", err)
	}
	if err := atomicyaml.AtomicWriteRaw(filepath.Join(base, config.QueuesFile), queues); err != nil {
		return "", fmt.Errorf("write %s: %w", config.QueuesFile, err)
	}

	testbed, store := config.NewStore(base).SnapshotPaths(cfg)
	for _, p := range []string{testbed, store} {
		if err := writeEmptySnapshot(p); err != nil {
			return "", err
		}
	}

	return base, nil
}

func defaultConfig() (model.Config, error) {
	data, err := fs.ReadFile(templates.FS, config.ConfigFile)
	if err != nil {
		return model.Config{}, fmt.Errorf("read config template: %w", err)
	}
	var cfg model.Config
	if err := yamlv3.Unmarshal(data, &cfg); err != nil {
		return model.Config{}, fmt.Errorf("parse config template: %w", err)
	}
	return cfg, nil
}

func writeEmptySnapshot(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := atomicyaml.AtomicWriteJSON(path, map[string]any{}); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
