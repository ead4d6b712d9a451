package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFallback is the built-in category label for uncategorized plugins.
const DefaultFallback = "其他"

// defaultCategories is used when no categories.yaml is configured.
var defaultCategories = []Category{
	{ID: "tools", Label: "工具"},
	{ID: "entertainment", Label: "娱乐"},
	{ID: "media", Label: "媒体"},
	{ID: "chat", Label: "对话"},
	{ID: "other", Label: DefaultFallback},
}

// Catalog resolves category labels for submissions.
type Catalog struct {
	fallback string
	labels   map[string]bool
}

// Load reads categories.yaml from filePath. An empty path yields the
// built-in catalog.
func Load(filePath string) (*Catalog, error) {
	if filePath == "" {
		return build(Config{Fallback: DefaultFallback, Categories: defaultCategories}), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse categories yaml: %w", err)
	}

	if cfg.Fallback == "" {
		cfg.Fallback = DefaultFallback
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = defaultCategories
	}

	return build(cfg), nil
}

func build(cfg Config) *Catalog {
	labels := make(map[string]bool, len(cfg.Categories))
	for _, c := range cfg.Categories {
		if c.Label != "" {
			labels[c.Label] = true
		}
	}
	return &Catalog{fallback: cfg.Fallback, labels: labels}
}

// FallbackLabel returns the label applied when a submission omits its category.
func (c *Catalog) FallbackLabel() string {
	return c.fallback
}

// Known reports whether label is a recognized category.
func (c *Catalog) Known(label string) bool {
	return c.labels[label]
}

// Count returns the number of known categories.
func (c *Catalog) Count() int {
	return len(c.labels)
}
