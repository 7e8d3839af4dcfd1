package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"askchat/cmd/askchat/ui"
	"askchat/internal/logging"
	"askchat/internal/sanitize"
	"askchat/internal/transcript"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.styles.Content.Render(m.viewport.View()),
		m.styles.RenderDivider(m.layout.TerminalWidth),
		m.renderControls(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("askchat")
	if m.endpoint != "" {
		title += "  " + m.endpoint
	}
	return m.styles.Header.Width(m.layout.TerminalWidth).Render(title)
}

func (m Model) renderFooter() string {
	return m.styles.Footer.Render(m.help.ShortHelpView(m.keys.ShortHelp(m.state == StateBusy)))
}

func (m Model) renderControls() string {
	inputStyle := m.styles.Input
	if m.focus == FocusInput && m.state == StateIdle {
		inputStyle = m.styles.InputFocused
	}

	var buttonStyle lipgloss.Style
	switch {
	case m.state == StateBusy:
		buttonStyle = m.styles.ButtonDisabled
	case m.focus == FocusButton:
		buttonStyle = m.styles.ButtonFocused
	default:
		buttonStyle = m.styles.Button
	}
	button := buttonStyle.
		Width(ui.ButtonWidth - 2).
		Align(lipgloss.Center).
		Render(m.ButtonLabel())

	modeStyle := m.styles.Mode
	if m.focus == FocusMode {
		modeStyle = m.styles.ModeFocused
	}
	mode := modeStyle.
		Width(m.modeWidth() - 2).
		Align(lipgloss.Center).
		Render("< " + sanitize.Text(m.Mode()) + " >")

	return lipgloss.JoinHorizontal(lipgloss.Top,
		inputStyle.Render(m.input.View()),
		button,
		mode,
	)
}

// modeWidth is the outer width of the mode selector, sized for the
// longest mode so the controls do not jump while cycling.
func (m Model) modeWidth() int {
	longest := 0
	for _, mode := range m.modes {
		if w := ansi.StringWidth(sanitize.Text(mode)); w > longest {
			longest = w
		}
	}
	// arrows, spaces, padding and border
	return longest + 4 + 2 + 2
}

func (m Model) renderTranscript() string {
	entries := m.transcript.Entries()
	if len(entries) == 0 {
		return m.styles.Muted.Render("Ask a question to get started.")
	}

	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, m.renderEntry(e))
	}
	return strings.Join(blocks, "\n")
}

func (m Model) renderEntry(e transcript.Entry) string {
	if e.Role == transcript.RoleUser {
		body := sanitize.Text(e.Text)
		bubble := m.bubble(m.styles.UserBubble, body)
		return lipgloss.PlaceHorizontal(m.layout.TranscriptWidth(), lipgloss.Right, bubble)
	}

	var body string
	switch e.Status {
	case transcript.StatusPending:
		body = m.spinner.View() + " " + m.styles.Placeholder.Render(placeholderText)
	case transcript.StatusFailed:
		body = m.renderError(e.Text)
	default:
		key := ui.ComputeKey(e.ID, m.layout.BubbleTextWidth(), m.styles.Theme.IsDark, m.renderer != nil)
		body = m.cache.GetOrCompute(key, func() string {
			return m.renderAnswer(e)
		})
	}
	return m.bubble(m.styles.BotBubble, body)
}

// bubble wraps body in style, as narrow as the content allows.
func (m Model) bubble(style lipgloss.Style, body string) string {
	maxInner := m.layout.BubbleTextWidth()
	inner := lipgloss.Width(body)
	if inner > maxInner {
		inner = maxInner
	}
	// Width includes the horizontal padding.
	return style.Width(inner + 2).Render(body)
}

func (m Model) renderError(msg string) string {
	return m.styles.Error.Render("Error: " + sanitize.Text(msg))
}

// renderAnswer builds a settled bubble: mode header, answer and sources.
func (m Model) renderAnswer(e transcript.Entry) string {
	var sb strings.Builder
	sb.WriteString(m.styles.BubbleHeader.Render(fmt.Sprintf("Bot's Response (%s):", sanitize.Text(e.Mode))))
	sb.WriteString("\n")

	answer := m.clean(e.Text)
	if m.renderer != nil {
		answer = m.safeRenderMarkdown(answer)
	} else {
		answer = m.styles.Body.Render(answer)
	}
	sb.WriteString(answer)

	if len(e.Sources) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Bold.Render("Sources:"))
		for i, src := range e.Sources {
			sb.WriteString("\n")
			sb.WriteString(m.renderSource(i+1, src.Title, src.Link))
		}
	}
	return sb.String()
}

// renderSource renders "Source N: title" with "Source N" as a terminal
// hyperlink to link.
func (m Model) renderSource(n int, title, link string) string {
	label := m.styles.SourceLink.Render(fmt.Sprintf("Source %d", n))
	if target := sanitize.Link(link); target != "" {
		label = ansi.SetHyperlink(target) + label + ansi.ResetHyperlink()
	}
	return label + ": " + m.clean(title)
}

// clean makes backend text safe to print.
func (m Model) clean(s string) string {
	if m.stripMarkup {
		return sanitize.Markup(s)
	}
	return sanitize.Text(s)
}

// safeRenderMarkdown renders markdown with panic recovery
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			logging.UI("markdown render panicked: %v", r)
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return strings.Trim(rendered, "\n")
		}
	}
	return content
}
