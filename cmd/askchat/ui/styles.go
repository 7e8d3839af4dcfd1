// Package ui provides the visual styling for the askchat terminal client.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f4f5f6")
	LightForeground = lipgloss.Color("#1b2430")
	LightPrimary    = lipgloss.Color("#1f4e79") // Navy
	LightAccent     = lipgloss.Color("#2e7d32") // Green
	LightMuted      = lipgloss.Color("#8a94a3")
	LightBorder     = lipgloss.Color("#cfd6de")
	LightUserBubble = lipgloss.Color("#dcebfb")
	LightBotBubble  = lipgloss.Color("#eef1f4")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#141d2b")
	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkPrimary    = lipgloss.Color("#6fa8dc")
	DarkAccent     = lipgloss.Color("#8bc34a")
	DarkMuted      = lipgloss.Color("#6b7788")
	DarkBorder     = lipgloss.Color("#2a3850")
	DarkUserBubble = lipgloss.Color("#1f3b5c")
	DarkBotBubble  = lipgloss.Color("#1e2a3d")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e53935") // Red
	Link        = lipgloss.Color("#2196F3") // Blue
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	UserBubble lipgloss.Color
	BotBubble  lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		UserBubble: LightUserBubble,
		BotBubble:  LightBotBubble,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		UserBubble: DarkUserBubble,
		BotBubble:  DarkBotBubble,
		IsDark:     true,
	}
}

// DetectTheme picks a theme from the terminal environment, defaulting to light.
func DetectTheme() Theme {
	// COLORFGBG is "foreground;background"; background 0-6 or 8 is dark.
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return DarkTheme()
				}
			}
		}
	}

	if os.Getenv("ASKCHAT_DARK_MODE") == "1" {
		return DarkTheme()
	}

	return LightTheme()
}

// ThemeFor resolves a configured theme name ("light", "dark" or "auto").
// Unknown names fall back to detection.
func ThemeFor(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		return DetectTheme()
	}
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	// Layout
	Header  lipgloss.Style
	Footer  lipgloss.Style
	Content lipgloss.Style

	// Text
	Title lipgloss.Style
	Body  lipgloss.Style
	Muted lipgloss.Style
	Bold  lipgloss.Style

	// Transcript
	UserBubble   lipgloss.Style
	BotBubble    lipgloss.Style
	BubbleHeader lipgloss.Style
	Placeholder  lipgloss.Style
	SourceLink   lipgloss.Style
	Error        lipgloss.Style

	// Controls
	Input          lipgloss.Style
	InputFocused   lipgloss.Style
	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style
	Mode           lipgloss.Style
	ModeFocused    lipgloss.Style

	Spinner lipgloss.Style
	Divider lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	bubble := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	control := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)

	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Content: lipgloss.NewStyle().
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Bold: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		UserBubble: bubble.
			Foreground(theme.Foreground).
			Background(theme.UserBubble).
			BorderForeground(theme.Primary),

		BotBubble: bubble.
			Foreground(theme.Foreground).
			Background(theme.BotBubble).
			BorderForeground(theme.Border),

		BubbleHeader: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Placeholder: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		SourceLink: lipgloss.NewStyle().
			Foreground(Link).
			Underline(true),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Input: control,

		InputFocused: control.
			BorderForeground(theme.Accent),

		Button: control.
			Foreground(theme.Primary).
			Bold(true),

		ButtonFocused: control.
			Foreground(lipgloss.Color("#ffffff")).
			Background(theme.Accent).
			BorderForeground(theme.Accent).
			Bold(true),

		ButtonDisabled: control.
			Foreground(theme.Muted).
			Faint(true),

		Mode: control.
			Foreground(theme.Foreground),

		ModeFocused: control.
			Foreground(theme.Accent).
			BorderForeground(theme.Accent),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

// RenderDivider returns a horizontal divider
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return s.Divider.Render(strings.Repeat("─", width))
}
