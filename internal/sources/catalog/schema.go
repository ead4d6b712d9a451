package catalog

// Config represents the top-level structure of categories.yaml
type Config struct {
	// Fallback is the label applied when a submission has no category.
	Fallback string `yaml:"fallback"`

	// Categories lists the known category labels shown in the marketplace.
	Categories []Category `yaml:"categories"`
}

// Category is one selectable marketplace category
type Category struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}
