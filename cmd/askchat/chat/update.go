package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"askchat/cmd/askchat/ui"
	"askchat/internal/askclient"
	"askchat/internal/logging"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case answerMsg:
		return m.settle(msg)

	case spinner.TickMsg:
		if m.state != StateBusy || m.transcript.Pending() == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh(m.viewport.AtBottom())
		return m, cmd
	}

	// Cursor blink and other input housekeeping.
	if m.state == StateIdle && m.focus == FocusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Shutdown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.state == StateBusy && m.call != nil {
			logging.UI("cancelling request seq=%d", m.seq)
			m.call.Cancel()
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus((m.focus + 1) % focusCount)

	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)

	case key.Matches(msg, m.keys.Press):
		return m.submit()
	}

	switch m.focus {
	case FocusButton:
		if key.Matches(msg, m.keys.Activate) {
			return m.submit()
		}
		return m, nil

	case FocusMode:
		switch {
		case key.Matches(msg, m.keys.ModeLeft):
			m.cycleMode(-1)
		case key.Matches(msg, m.keys.ModeRight):
			m.cycleMode(1)
		}
		return m, nil
	}

	// FocusInput
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case key.Matches(msg, m.keys.HistoryPrev):
		m.recall(-1)
		return m, nil
	case key.Matches(msg, m.keys.HistoryNext):
		m.recall(1)
		return m, nil
	}

	if m.state != StateIdle {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a request for the current input. Blank input and triggers
// while Busy do nothing.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.state == StateBusy {
		logging.UIDebug("submit ignored: request seq=%d still in flight", m.seq)
		return m, nil
	}
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return m, nil
	}
	if m.asker == nil {
		logging.UI("submit ignored: no backend configured")
		return m, nil
	}

	mode := m.Mode()
	m.transcript.AppendUser(query, mode)
	pending := m.transcript.AppendPending(mode)
	m.pushHistory(query)

	m.seq++
	m.pendingID = pending.ID
	m.call = m.asker.Go(m.ctx, askclient.Request{Query: query, Mode: mode})
	logging.UIDebug("submitted seq=%d mode=%q", m.seq, mode)

	m.setState(StateBusy)
	m.refresh(true)
	return m, tea.Batch(waitForAnswer(m.seq, pending.ID, m.call), m.spinner.Tick)
}

// waitForAnswer blocks on call off the update loop.
func waitForAnswer(seq int, entryID string, call *askclient.Call) tea.Cmd {
	return func() tea.Msg {
		resp, err := call.Result()
		return answerMsg{seq: seq, entryID: entryID, resp: resp, err: err}
	}
}

// settle finalizes the pending bubble and returns the widget to Idle.
func (m Model) settle(msg answerMsg) (tea.Model, tea.Cmd) {
	if m.state != StateBusy || msg.seq != m.seq {
		logging.UIDebug("dropping stale answer seq=%d (current %d)", msg.seq, m.seq)
		return m, nil
	}

	var err error
	switch {
	case msg.err != nil:
		if !errors.Is(msg.err, askclient.ErrCancelled) {
			logging.UI("request seq=%d failed: %v", msg.seq, msg.err)
		}
		err = m.transcript.Fail(msg.entryID, msg.err.Error())
	case msg.resp == nil:
		err = m.transcript.Fail(msg.entryID, "empty response")
	default:
		err = m.transcript.Resolve(msg.entryID, msg.resp.Answer, msg.resp.Sources)
	}
	if err != nil {
		logging.UIDebug("settle seq=%d: %v", msg.seq, err)
	} else if e, ok := m.transcript.Get(msg.entryID); ok {
		logging.UIDebug("settled seq=%d as %s", msg.seq, e.Status)
	}

	m.call = nil
	m.pendingID = ""
	cmd := m.setState(StateIdle)
	m.refresh(true)
	return m, cmd
}

// setState applies the state and projects it onto the controls.
func (m *Model) setState(s State) tea.Cmd {
	m.state = s
	if s == StateBusy {
		m.input.Blur()
		return nil
	}
	m.input.Reset()
	m.historyIdx = len(m.history)
	m.draft = ""
	m.focus = FocusInput
	return m.input.Focus()
}

func (m *Model) setFocus(f Focus) tea.Cmd {
	m.focus = f
	if f == FocusInput && m.state == StateIdle {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

// cycleMode moves the selection. The in-flight request keeps the mode it
// was submitted with.
func (m *Model) cycleMode(delta int) {
	n := len(m.modes)
	m.modeIdx = ((m.modeIdx+delta)%n + n) % n
}

func (m *Model) pushHistory(query string) {
	if n := len(m.history); n == 0 || m.history[n-1] != query {
		m.history = append(m.history, query)
	}
	m.historyIdx = len(m.history)
}

// recall walks the input history; moving past the newest entry restores
// the unsent draft.
func (m *Model) recall(delta int) {
	if m.state != StateIdle || len(m.history) == 0 {
		return
	}
	next := m.historyIdx + delta
	if next < 0 || next > len(m.history) {
		return
	}
	if m.historyIdx == len(m.history) {
		m.draft = m.input.Value()
	}
	m.historyIdx = next
	if next == len(m.history) {
		m.input.SetValue(m.draft)
	} else {
		m.input.SetValue(m.history[next])
	}
	m.input.CursorEnd()
}

func (m *Model) resize(width, height int) {
	layout := ui.NewLayoutConfig(width, height)
	if layout.TerminalWidth != m.layout.TerminalWidth && m.cache.Len() > 0 {
		hits, misses := m.cache.Stats()
		logging.UIDebug("render cache reset for width %d: hits=%d misses=%d", layout.TerminalWidth, hits, misses)
		m.cache.Clear()
	}
	m.layout = layout
	m.viewport.Width = m.layout.TranscriptWidth()
	m.viewport.Height = m.layout.TranscriptHeight()
	m.input.Width = m.layout.InputWidth(m.modeWidth())
	m.help.Width = width - 2

	if m.renderMarkdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(m.layout.BubbleTextWidth()),
		)
		if err != nil {
			logging.UI("markdown renderer unavailable: %v", err)
			r = nil
		}
		m.renderer = r
	}

	m.ready = true
	m.refresh(true)
}

// refresh re-renders the transcript into the viewport.
func (m *Model) refresh(gotoBottom bool) {
	m.viewport.SetContent(m.renderTranscript())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}
