package ui

// Layout constants for the chat screen
const (
	HeaderHeight   = 1
	ControlsHeight = 3 // bordered input, button and mode selector
	FooterHeight   = 1
	DividerHeight  = 1

	ContentPaddingH = 2

	// Bubbles take at most this share of the transcript width.
	BubbleWidthRatio = 0.8
	MinBubbleWidth   = 20

	ButtonWidth = 14 // fits "Loading..." plus padding and border

	MinimumTerminalWidth  = 40
	MinimumTerminalHeight = 10
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	if width < MinimumTerminalWidth {
		width = MinimumTerminalWidth
	}
	if height < MinimumTerminalHeight {
		height = MinimumTerminalHeight
	}
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
	}
}

// TranscriptWidth returns the viewport width.
func (l LayoutConfig) TranscriptWidth() int {
	return l.TerminalWidth - ContentPaddingH
}

// TranscriptHeight returns the viewport height.
func (l LayoutConfig) TranscriptHeight() int {
	return l.TerminalHeight - HeaderHeight - ControlsHeight - FooterHeight - DividerHeight
}

// BubbleWidth returns the outer width of a chat bubble.
func (l LayoutConfig) BubbleWidth() int {
	w := int(float64(l.TranscriptWidth()) * BubbleWidthRatio)
	if w < MinBubbleWidth {
		w = MinBubbleWidth
	}
	return w
}

// BubbleTextWidth returns the wrap width inside a bubble (border plus padding).
func (l LayoutConfig) BubbleTextWidth() int {
	return l.BubbleWidth() - 4
}

// InputWidth returns the text input width, leaving room for the button
// and a mode selector modeWidth cells wide. The input box adds a border,
// padding, the prompt and one cell for the cursor.
func (l LayoutConfig) InputWidth(modeWidth int) int {
	w := l.TerminalWidth - ButtonWidth - modeWidth - 4 - 2 - 1
	if w < 10 {
		w = 10
	}
	return w
}
