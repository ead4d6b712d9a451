package domain

import "fmt"

const (
	// DefaultVersion is applied when a submission omits its version.
	DefaultVersion = "1.0.0"

	// DefaultChangelog is the initial-version changelog entry.
	DefaultChangelog = "初始版本"

	// InitialRating is the rating every new plugin starts with.
	InitialRating = 5.0

	// IndexVersion is the schema version of the shared index document.
	IndexVersion = "1.0.0"
)

// PluginConfigDocument is the normalized record published as the plugin's
// config.json. Built once per submission, immutable afterwards.
type PluginConfigDocument struct {
	ID              string   `json:"id"`
	CNName          string   `json:"cn_name"`
	Author          string   `json:"author"`
	Description     string   `json:"description"`
	Version         string   `json:"version"`
	FullDescription string   `json:"full_description"`
	Category        string   `json:"category"`
	Commands        []string `json:"commands"`
	Features        []string `json:"features"`
	Usage           string   `json:"usage"`
	Changelog       string   `json:"changelog"`
	Notes           string   `json:"notes"`
	Featured        bool     `json:"featured"`
}

// PluginIndexEntry is a config document plus the catalog-only fields
// appended to the shared index.
type PluginIndexEntry struct {
	PluginConfigDocument
	Downloads   int64   `json:"downloads"`
	Rating      float64 `json:"rating"`
	DownloadURL string  `json:"download_url"`
}

// PluginIndexDocument is the shared catalog of all published plugins.
// It lives as a single file in the target repository and is the only
// shared mutable remote state: updates go through a read-modify-write
// conditioned on the file's sha token.
type PluginIndexDocument struct {
	Version     string             `json:"version"`
	LastUpdated string             `json:"last_updated"` // YYYY-MM-DD
	Plugins     []PluginIndexEntry `json:"plugins"`
}

// NewIndexDocument returns the empty index written on first publish.
func NewIndexDocument() *PluginIndexDocument {
	return &PluginIndexDocument{
		Version:     IndexVersion,
		LastUpdated: "",
		Plugins:     []PluginIndexEntry{},
	}
}

// Has reports whether an entry with the given id is already indexed.
func (d *PluginIndexDocument) Has(id string) bool {
	for _, p := range d.Plugins {
		if p.ID == id {
			return true
		}
	}
	return false
}

// BuildConfigDocument derives the config document from a validated
// submission, applying defaults for every optional field.
func BuildConfigDocument(req *SubmissionRequest, fallbackCategory string) PluginConfigDocument {
	doc := PluginConfigDocument{
		ID:              req.ID,
		CNName:          req.CNName,
		Author:          req.Author,
		Description:     req.Description,
		Version:         req.Version,
		FullDescription: req.FullDescription,
		Category:        req.Category,
		Commands:        req.Commands,
		Features:        req.Features,
		Usage:           req.Usage,
		Changelog:       req.Changelog,
		Notes:           req.Notes,
		Featured:        false,
	}

	if doc.Version == "" {
		doc.Version = DefaultVersion
	}
	if doc.Category == "" {
		doc.Category = fallbackCategory
	}
	if doc.Changelog == "" {
		doc.Changelog = DefaultChangelog
	}
	// Keep JSON arrays, not nulls, in the published files.
	if doc.Commands == nil {
		doc.Commands = []string{}
	}
	if doc.Features == nil {
		doc.Features = []string{}
	}

	return doc
}

// BuildIndexEntry derives the index entry for a new plugin: the config
// document plus counters at their initial values and the download URL.
func BuildIndexEntry(doc PluginConfigDocument, downloadBase, repo, branch string) PluginIndexEntry {
	return PluginIndexEntry{
		PluginConfigDocument: doc,
		Downloads:            0,
		Rating:               InitialRating,
		DownloadURL:          fmt.Sprintf("%s/%s/%s/%s", downloadBase, repo, branch, SourcePath(doc.ID)),
	}
}

// SourcePath returns the repository path of a plugin's source file.
func SourcePath(id string) string {
	return fmt.Sprintf("plugins/%s/plugin.py", id)
}

// ConfigPath returns the repository path of a plugin's config file.
func ConfigPath(id string) string {
	return fmt.Sprintf("plugins/%s/config.json", id)
}
