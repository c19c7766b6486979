package yaml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	yamlv3 "gopkg.in/yaml.v3"
)

func TestQuarantine(t *testing.T) {
	workspaceDir := t.TempDir()
	filePath := filepath.Join(workspaceDir, "queues.yaml")

	os.WriteFile(filePath, []byte("corrupted: [\n"), 0644)

	if err := Quarantine(workspaceDir, filePath); err != nil {
		t.Fatalf("Quarantine failed: %v", err)
	}

	if _, err := os.Stat(filePath); !os.IsNotExist(err) {
		t.Error("original file should be removed after quarantine")
	}

	quarantineDir := filepath.Join(workspaceDir, "quarantine")
	entries, err := os.ReadDir(quarantineDir)
	if err != nil {
		t.Fatalf("ReadDir quarantine failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 quarantined file, got %d", len(entries))
	}
	if !strings.HasPrefix(entries[0].Name(), "queues.yaml.") || !strings.HasSuffix(entries[0].Name(), ".corrupt") {
		t.Errorf("unexpected quarantine filename: %s", entries[0].Name())
	}
}

func TestRestoreFromBackup(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "queues.yaml")

	os.WriteFile(filePath+".bak", []byte("cwl_queue:\n  workflow_type: CWL\n"), 0644)

	if err := RestoreFromBackup(filePath); err != nil {
		t.Fatalf("RestoreFromBackup failed: %v", err)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	var data map[string]map[string]string
	if err := yamlv3.Unmarshal(content, &data); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if data["cwl_queue"]["workflow_type"] != "CWL" {
		t.Errorf("workflow_type: got %q", data["cwl_queue"]["workflow_type"])
	}
}

func TestRestoreFromBackup_NoBackup(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "test.yaml")

	if err := RestoreFromBackup(filePath); err == nil {
		t.Error("expected error when no backup exists")
	}
}

func TestRestoreFromBackup_CorruptBackup(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "test.yaml")

	os.WriteFile(filePath+".bak", []byte(":\n  broken: [\n"), 0644)

	if err := RestoreFromBackup(filePath); err == nil {
		t.Error("expected error when backup is also corrupted")
	}
}

func TestGenerateSkeleton(t *testing.T) {
	tests := []struct {
		fileType     string
		expectFields []string
	}{
		{FileTypeConfig, []string{"toolregistries", "workflowservices", "logging"}},
		{FileTypeQueues, nil},
	}

	for _, tt := range tests {
		t.Run(tt.fileType, func(t *testing.T) {
			dir := t.TempDir()
			filePath := filepath.Join(dir, "test.yaml")

			if err := GenerateSkeleton(filePath, tt.fileType); err != nil {
				t.Fatalf("GenerateSkeleton failed: %v", err)
			}

			content, err := os.ReadFile(filePath)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}

			var data map[string]any
			if err := yamlv3.Unmarshal(content, &data); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if len(data) != len(tt.expectFields) {
				t.Errorf("expected %d top-level fields, got %d", len(tt.expectFields), len(data))
			}
			for _, f := range tt.expectFields {
				if _, ok := data[f]; !ok {
					t.Errorf("missing expected field: %s", f)
				}
			}
		})
	}
}

func TestRecoverCorruptedFile_WithBackup(t *testing.T) {
	workspaceDir := t.TempDir()
	filePath := filepath.Join(workspaceDir, "queues.yaml")

	os.WriteFile(filePath, []byte("corrupted: [\n"), 0644)
	os.WriteFile(filePath+".bak", []byte("wdl_queue:\n  workflow_type: WDL\n"), 0644)

	if err := RecoverCorruptedFile(workspaceDir, filePath, FileTypeQueues); err != nil {
		t.Fatalf("RecoverCorruptedFile failed: %v", err)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(content), "wdl_queue") {
		t.Errorf("expected restored queues, got %q", content)
	}

	entries, _ := os.ReadDir(filepath.Join(workspaceDir, "quarantine"))
	if len(entries) != 1 {
		t.Errorf("expected 1 quarantined file, got %d", len(entries))
	}
}

func TestRecoverCorruptedFile_WithoutBackup(t *testing.T) {
	workspaceDir := t.TempDir()
	filePath := filepath.Join(workspaceDir, "config.yaml")

	os.WriteFile(filePath, []byte("corrupted: [\n"), 0644)

	if err := RecoverCorruptedFile(workspaceDir, filePath, FileTypeConfig); err != nil {
		t.Fatalf("RecoverCorruptedFile failed: %v", err)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	var data map[string]any
	yamlv3.Unmarshal(content, &data)
	if _, ok := data["workflowservices"]; !ok {
		t.Error("expected workflowservices section in skeleton")
	}
}
