package model

// Source is one configured feed endpoint.
type Source struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	URL      string `yaml:"url" json:"url"`
	Category string `yaml:"category" json:"category"`
	Language string `yaml:"language" json:"language,omitempty"`
	Enabled  *bool  `yaml:"enabled" json:"enabled,omitempty"`
	MaxItems int    `yaml:"max_items" json:"max_items,omitempty"`
}

// IsEnabled treats a missing flag as enabled.
func (s Source) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// Key identifies the source in logs and metrics.
func (s Source) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.Name
}
