package config

// UIConfig holds user interface configuration.
type UIConfig struct {
	// Theme is "light", "dark" or "" to detect from the terminal.
	Theme string `yaml:"theme" env:"ASKCHAT_THEME"`

	// RenderMarkdown renders answers as markdown instead of plain text.
	RenderMarkdown bool `yaml:"render_markdown"`

	// StripMarkup removes HTML markup from answers and source titles.
	StripMarkup bool `yaml:"strip_markup"`

	// AltScreen runs the chat in the terminal's alternate screen.
	AltScreen bool `yaml:"alt_screen"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Theme:          "",
		RenderMarkdown: false,
		StripMarkup:    false,
		AltScreen:      true,
	}
}
