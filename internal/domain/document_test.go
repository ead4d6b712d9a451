package domain

import (
	"encoding/json"
	"testing"
)

func TestBuildConfigDocumentDefaults(t *testing.T) {
	req := SubmissionRequest{
		ID:          "newplug",
		CNName:      "测试",
		Author:      "someone",
		Description: "a test plugin",
		Code:        "print('hi')",
	}

	doc := BuildConfigDocument(&req, "其他")

	if doc.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", doc.Version)
	}
	if doc.Category != "其他" {
		t.Errorf("Category = %q, want fallback 其他", doc.Category)
	}
	if doc.Changelog != DefaultChangelog {
		t.Errorf("Changelog = %q, want %q", doc.Changelog, DefaultChangelog)
	}
	if doc.Featured {
		t.Error("Featured must be false for new submissions")
	}
	if doc.Commands == nil || doc.Features == nil {
		t.Error("Commands/Features must serialize as arrays, not null")
	}
}

func TestBuildConfigDocumentKeepsProvidedValues(t *testing.T) {
	req := SubmissionRequest{
		ID:          "newplug",
		CNName:      "测试",
		Author:      "someone",
		Description: "a test plugin",
		Code:        "print('hi')",
		Version:     "2.3.1",
		Category:    "工具",
		Changelog:   "v2.3.1 修复若干问题",
		Commands:    []string{"/run"},
	}

	doc := BuildConfigDocument(&req, "其他")

	if doc.Version != "2.3.1" {
		t.Errorf("Version = %q, want 2.3.1", doc.Version)
	}
	if doc.Category != "工具" {
		t.Errorf("Category = %q, want 工具", doc.Category)
	}
	if doc.Changelog != "v2.3.1 修复若干问题" {
		t.Errorf("Changelog = %q", doc.Changelog)
	}
	if len(doc.Commands) != 1 || doc.Commands[0] != "/run" {
		t.Errorf("Commands = %v", doc.Commands)
	}
}

func TestBuildIndexEntry(t *testing.T) {
	req := SubmissionRequest{
		ID: "newplug", CNName: "测试", Author: "a", Description: "d", Code: "c",
	}
	doc := BuildConfigDocument(&req, "其他")
	entry := BuildIndexEntry(doc, "https://raw.githubusercontent.com", "plugmarket/plugin-repo", "main")

	if entry.Downloads != 0 {
		t.Errorf("Downloads = %v, want 0", entry.Downloads)
	}
	if entry.Rating != 5.0 {
		t.Errorf("Rating = %v, want 5.0", entry.Rating)
	}
	want := "https://raw.githubusercontent.com/plugmarket/plugin-repo/main/plugins/newplug/plugin.py"
	if entry.DownloadURL != want {
		t.Errorf("DownloadURL = %q, want %q", entry.DownloadURL, want)
	}
}

func TestIndexEntryJSONShape(t *testing.T) {
	// The index entry must serialize flat: config fields plus
	// downloads/rating/download_url at the same level.
	doc := BuildConfigDocument(&SubmissionRequest{
		ID: "p", CNName: "n", Author: "a", Description: "d", Code: "c",
	}, "其他")
	entry := BuildIndexEntry(doc, "https://base", "o/r", "main")

	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"id", "cn_name", "downloads", "rating", "download_url", "featured"} {
		if _, ok := m[key]; !ok {
			t.Errorf("serialized entry missing key %q", key)
		}
	}
}

func TestNewIndexDocument(t *testing.T) {
	doc := NewIndexDocument()
	if doc.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", doc.Version)
	}
	if doc.LastUpdated != "" {
		t.Errorf("LastUpdated = %q, want empty", doc.LastUpdated)
	}
	if doc.Plugins == nil || len(doc.Plugins) != 0 {
		t.Errorf("Plugins = %v, want empty slice", doc.Plugins)
	}
}

func TestIndexDocumentHas(t *testing.T) {
	doc := NewIndexDocument()
	doc.Plugins = append(doc.Plugins, PluginIndexEntry{
		PluginConfigDocument: PluginConfigDocument{ID: "existing"},
	})

	if !doc.Has("existing") {
		t.Error("Has(existing) = false, want true")
	}
	if doc.Has("missing") {
		t.Error("Has(missing) = true, want false")
	}
}

func TestPaths(t *testing.T) {
	if got := SourcePath("abc"); got != "plugins/abc/plugin.py" {
		t.Errorf("SourcePath() = %q", got)
	}
	if got := ConfigPath("abc"); got != "plugins/abc/config.json" {
		t.Errorf("ConfigPath() = %q", got)
	}
}
