package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Taxonomy is the category list managed in YAML rather than env vars.
type Taxonomy struct {
	Categories []CategoryConfig `yaml:"categories"`
}

// CategoryConfig defines one category in the taxonomy file.
type CategoryConfig struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Icon        string `yaml:"icon,omitempty"` // Semantic symbol name, e.g. "zap"
}

// DefaultTaxonomy is seeded when no taxonomy file exists.
var DefaultTaxonomy = Taxonomy{
	Categories: []CategoryConfig{
		{Slug: "productivity", Name: "Productivity", Description: "Tools and apps to enhance your workflow", Icon: "zap"},
		{Slug: "media", Name: "Media & Content", Description: "Create, manage, and distribute content", Icon: "image"},
		{Slug: "trading", Name: "Trading & Finance", Description: "DeFi, trading bots, and financial tools", Icon: "trending-up"},
		{Slug: "devtools", Name: "Developer Tools", Description: "Build faster with AI-powered dev tools", Icon: "code"},
		{Slug: "social", Name: "Social & Community", Description: "Community management and social tools", Icon: "users"},
		{Slug: "data", Name: "Data & Analytics", Description: "Extract insights from your data", Icon: "bar-chart"},
	},
}

// LoadTaxonomy loads the taxonomy file at path.
// Returns the default taxonomy if the file doesn't exist.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t := DefaultTaxonomy
			return &t, nil
		}
		return nil, err
	}

	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetCategoryBySlug finds a category by its slug.
func (t *Taxonomy) GetCategoryBySlug(slug string) *CategoryConfig {
	if t == nil {
		return nil
	}
	for i := range t.Categories {
		if t.Categories[i].Slug == slug {
			return &t.Categories[i]
		}
	}
	return nil
}
