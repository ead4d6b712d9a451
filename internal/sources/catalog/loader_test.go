package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "categories.yaml")

	yamlContent := `---
fallback: 未分类
categories:
  - id: tools
    label: 工具
  - id: games
    label: 游戏
`

	err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644)
	if err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	c, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if c.FallbackLabel() != "未分类" {
		t.Errorf("FallbackLabel() = %q, want 未分类", c.FallbackLabel())
	}
	if !c.Known("工具") || !c.Known("游戏") {
		t.Error("Known() should recognize configured labels")
	}
	if c.Known("工作") {
		t.Error("Known() should reject unconfigured labels")
	}
}

func TestLoadEmptyPathUsesBuiltins(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if c.FallbackLabel() != DefaultFallback {
		t.Errorf("FallbackLabel() = %q, want %q", c.FallbackLabel(), DefaultFallback)
	}
	if c.Count() == 0 {
		t.Error("built-in catalog should not be empty")
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/categories.yaml")
	if err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestLoadPartialFileGetsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "categories.yaml")

	// No fallback key: built-in fallback applies.
	yamlContent := `---
categories:
  - id: tools
    label: 工具
`
	if err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	c, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.FallbackLabel() != DefaultFallback {
		t.Errorf("FallbackLabel() = %q, want %q", c.FallbackLabel(), DefaultFallback)
	}
}
