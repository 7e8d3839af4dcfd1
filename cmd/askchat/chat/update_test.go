package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askchat/internal/askclient"
	"askchat/internal/transcript"
)

// =============================================================================
// SUBMIT
// =============================================================================

func TestSubmit_BlankInputIsNoop(t *testing.T) {
	t.Parallel()

	for _, blank := range []string{"", " ", "   ", "\t"} {
		fake := newFakeAsker(answerWith("unused"))
		m := NewTestModel(t, WithAsker(fake))
		m.input.SetValue(blank)

		result, cmd := press(t, m, keyOf(tea.KeyEnter))
		assert.Nil(t, cmd, "blank %q must not start a request", blank)
		assert.Zero(t, result.Transcript().Len())
		assert.Empty(t, fake.Requests())
		assert.Equal(t, StateIdle, result.State())
		assert.True(t, result.InputEnabled())
		assert.Equal(t, "Ask", result.ButtonLabel())
	}
}

func TestSubmit_EchoesQueryVerbatim(t *testing.T) {
	t.Parallel()

	fake := newFakeAsker(blockUntilCancelled())
	m := NewTestModel(t, WithAsker(fake))

	query := `<b>AAPL</b> & "MSFT" <script>x</script>`
	m, _ = ask(t, m, "  "+query+"  ")

	entries := m.Transcript().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, transcript.RoleUser, entries[0].Role)
	assert.Equal(t, query, entries[0].Text, "trimmed query is stored exactly")
	assert.Contains(t, plainTranscript(m), query, "markup in user input is shown literally")

	require.Len(t, fake.Requests(), 1)
	assert.Equal(t, query, fake.Requests()[0].Query)
}

func TestSubmit_EntersBusy(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t, WithAsker(newFakeAsker(blockUntilCancelled())))
	m, cmd := ask(t, m, "What happened to NVDA?")
	require.NotNil(t, cmd)

	assert.Equal(t, StateBusy, m.State())
	assert.False(t, m.InputEnabled())
	assert.False(t, m.input.Focused(), "input is disabled while busy")
	assert.Equal(t, "Loading...", m.ButtonLabel())

	entries := m.Transcript().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, transcript.RoleBot, entries[1].Role)
	assert.Equal(t, transcript.StatusPending, entries[1].Status)
	assert.Contains(t, plainTranscript(m), "Thinking...")
}

func TestSubmit_IgnoredWhileBusy(t *testing.T) {
	t.Parallel()

	fake := newFakeAsker(blockUntilCancelled())
	m := NewTestModel(t, WithAsker(fake))
	m, _ = ask(t, m, "first")

	// Every trigger path is a no-op while a request is in flight.
	m, cmd := press(t, m, keyOf(tea.KeyCtrlS))
	assert.Nil(t, cmd)
	m, cmd = press(t, m, keyOf(tea.KeyEnter))
	assert.Nil(t, cmd)
	m, _ = press(t, m, keyOf(tea.KeyTab))
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Nil(t, cmd)

	assert.Len(t, fake.Requests(), 1)
	assert.Equal(t, 2, m.Transcript().Len())
	assert.Equal(t, StateBusy, m.State())
}

func TestSubmit_TypingIgnoredWhileBusy(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t, WithAsker(newFakeAsker(blockUntilCancelled())))
	m, _ = ask(t, m, "query")
	m = typeText(t, m, "more")
	assert.Equal(t, "query", m.input.Value())
}

// =============================================================================
// SETTLE
// =============================================================================

func TestSettle_SuccessReenablesControls(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t, WithAsker(newFakeAsker(answerWith("It rose 3%."))))
	m, _ = ask(t, m, "What happened to NVDA?")
	m = awaitAnswer(t, m)

	assert.Equal(t, StateIdle, m.State())
	assert.True(t, m.InputEnabled())
	assert.True(t, m.input.Focused())
	assert.Equal(t, FocusInput, m.focus)
	assert.Equal(t, "Ask", m.ButtonLabel())
	assert.Empty(t, m.input.Value(), "input is cleared on completion")

	bot := m.Transcript().Entries()[1]
	assert.Equal(t, transcript.StatusAnswered, bot.Status)
	assert.Equal(t, "It rose 3%.", bot.Text)

	out := plainTranscript(m)
	assert.Contains(t, out, "Bot's Response (concise):")
	assert.Contains(t, out, "It rose 3%.")
	assert.NotContains(t, out, "Thinking...")
}

func TestSettle_FailureRendersError(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t, WithAsker(newFakeAsker(failWith("Network Error"))))
	m, _ = ask(t, m, "q")
	m = awaitAnswer(t, m)

	assert.Equal(t, StateIdle, m.State())
	assert.True(t, m.input.Focused())
	assert.Equal(t, "Ask", m.ButtonLabel())

	bot := m.Transcript().Entries()[1]
	assert.Equal(t, transcript.StatusFailed, bot.Status)
	assert.Equal(t, "Error: Network Error", ansi.Strip(m.renderError(bot.Text)))

	out := plainTranscript(m)
	assert.Contains(t, out, "Error: Network Error")
	assert.NotContains(t, out, "Bot's Response")
}

func TestSettle_StaleAnswerDropped(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t, WithAsker(newFakeAsker(blockUntilCancelled())))
	m, _ = ask(t, m, "q")

	newModel, cmd := m.Update(answerMsg{seq: m.seq + 1, entryID: m.pendingID, resp: &askclient.Response{Answer: "stale"}})
	result := newModel.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, StateBusy, result.State())
	assert.Equal(t, transcript.StatusPending, result.Transcript().Entries()[1].Status)
}

func TestSettle_NilResponseFails(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t, WithAsker(newFakeAsker(func(ctx context.Context, req askclient.Request) (*askclient.Response, error) {
		return nil, nil
	})))
	m, _ = ask(t, m, "q")
	m = awaitAnswer(t, m)

	assert.Equal(t, transcript.StatusFailed, m.Transcript().Entries()[1].Status)
	assert.Equal(t, StateIdle, m.State())
}

func TestSettle_CancelWithCtrlX(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t, WithAsker(newFakeAsker(blockUntilCancelled())))
	m, _ = ask(t, m, "slow question")

	m, cmd := press(t, m, keyOf(tea.KeyCtrlX))
	assert.Nil(t, cmd)
	m = awaitAnswer(t, m)

	assert.Equal(t, StateIdle, m.State())
	bot := m.Transcript().Entries()[1]
	assert.Equal(t, transcript.StatusFailed, bot.Status)
	assert.Contains(t, plainTranscript(m), "Error: request cancelled")
}

func TestCancel_WhenIdleDoesNothing(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t)
	result, cmd := press(t, m, keyOf(tea.KeyCtrlX))
	assert.Nil(t, cmd)
	assert.Equal(t, StateIdle, result.State())
}

// =============================================================================
// SOURCES
// =============================================================================

func TestSettle_RendersSourcesInOrder(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t, WithAsker(newFakeAsker(answerWith("X",
		askclient.Source{Title: "A", Link: "http://a"},
		askclient.Source{Title: "B", Link: "http://b"},
	))))
	m, _ = ask(t, m, "q")
	m = awaitAnswer(t, m)

	raw := m.renderTranscript()
	out := ansi.Strip(raw)
	require.Contains(t, out, "Sources:")
	first := strings.Index(out, "Source 1: A")
	second := strings.Index(out, "Source 2: B")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)

	assert.Contains(t, raw, ansi.SetHyperlink("http://a"))
	assert.Contains(t, raw, ansi.SetHyperlink("http://b"))
}

func TestSettle_NoSourcesBlock(t *testing.T) {
	t.Parallel()

	for name, fn := range map[string]askclient.AskFunc{
		"absent": answerWith("X"),
		"empty": func(ctx context.Context, req askclient.Request) (*askclient.Response, error) {
			return &askclient.Response{Answer: "X", Sources: []askclient.Source{}}, nil
		},
	} {
		m := NewTestModel(t, WithAsker(newFakeAsker(fn)))
		m, _ = ask(t, m, "q")
		m = awaitAnswer(t, m)

		out := plainTranscript(m)
		assert.Contains(t, out, "X", name)
		assert.NotContains(t, out, "Sources:", name)
		assert.NotContains(t, out, "Source 1", name)
	}
}

func TestRenderSource_UnsafeLinkIsNotLinked(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t)
	out := m.renderSource(1, "Title", "http://a\x1b]8;;http://evil\x07")
	assert.NotContains(t, out, "\x1b]8;;")
	assert.Equal(t, "Source 1: Title", ansi.Strip(out))
}

// =============================================================================
// MODE
// =============================================================================

func TestMode_PassedThroughAndEchoed(t *testing.T) {
	t.Parallel()

	fake := newFakeAsker(answerWith("Long answer."))
	m := NewTestModel(t, WithAsker(fake))

	m = typeText(t, m, "Explain the Fed decision")
	m, _ = press(t, m, keyOf(tea.KeyTab))
	m, _ = press(t, m, keyOf(tea.KeyTab))
	require.Equal(t, FocusMode, m.focus)
	m, _ = press(t, m, keyOf(tea.KeyRight))
	require.Equal(t, "detailed", m.Mode())

	m, _ = press(t, m, keyOf(tea.KeyCtrlS))
	require.Len(t, fake.Requests(), 1)
	assert.Equal(t, askclient.Request{Query: "Explain the Fed decision", Mode: "detailed"}, fake.Requests()[0])

	// Changing the selector mid-flight does not relabel the pending answer.
	m, _ = press(t, m, keyOf(tea.KeyLeft))
	assert.Equal(t, "concise", m.Mode())

	m = awaitAnswer(t, m)
	assert.Contains(t, plainTranscript(m), "Bot's Response (detailed):")
}

func TestMode_Wraps(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t, WithModes("a", "b", "c"))
	m.focus = FocusMode

	m, _ = press(t, m, keyOf(tea.KeyLeft))
	assert.Equal(t, "c", m.Mode())
	m, _ = press(t, m, keyOf(tea.KeyRight))
	m, _ = press(t, m, keyOf(tea.KeyRight))
	assert.Equal(t, "b", m.Mode())
}

func TestMode_OpaqueValue(t *testing.T) {
	t.Parallel()

	fake := newFakeAsker(answerWith("ok"))
	m := NewTestModel(t, WithAsker(fake), WithModes("bullet-points"))
	m, _ = ask(t, m, "q")
	m = awaitAnswer(t, m)

	assert.Equal(t, "bullet-points", fake.Requests()[0].Mode)
	assert.Contains(t, plainTranscript(m), "Bot's Response (bullet-points):")
}

// =============================================================================
// FOCUS & KEYS
// =============================================================================

func TestFocus_TabCycles(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t)
	require.Equal(t, FocusInput, m.focus)

	m, _ = press(t, m, keyOf(tea.KeyTab))
	assert.Equal(t, FocusButton, m.focus)
	assert.False(t, m.input.Focused())

	m, _ = press(t, m, keyOf(tea.KeyTab))
	assert.Equal(t, FocusMode, m.focus)

	m, _ = press(t, m, keyOf(tea.KeyTab))
	assert.Equal(t, FocusInput, m.focus)
	assert.True(t, m.input.Focused())

	m, _ = press(t, m, keyOf(tea.KeyShiftTab))
	assert.Equal(t, FocusMode, m.focus)
}

func TestButton_SpaceSubmits(t *testing.T) {
	t.Parallel()

	fake := newFakeAsker(answerWith("ok"))
	m := NewTestModel(t, WithAsker(fake))
	m = typeText(t, m, "via button")
	m, _ = press(t, m, keyOf(tea.KeyTab))

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	require.NotNil(t, cmd)
	assert.Equal(t, StateBusy, m.State())
	assert.Equal(t, "via button", fake.Requests()[0].Query)

	m = awaitAnswer(t, m)
	assert.Equal(t, FocusInput, m.focus, "completion refocuses the input")
}

func TestQuit_CancelsInFlight(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t, WithAsker(newFakeAsker(blockUntilCancelled())))
	m, _ = ask(t, m, "q")
	call := m.call

	_, cmd := press(t, m, keyOf(tea.KeyEsc))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, err := call.Result()
	assert.ErrorIs(t, err, askclient.ErrCancelled)
}

func TestShutdown_WaitsForCancelledCall(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t, WithAsker(newFakeAsker(blockUntilCancelled())))
	m, _ = ask(t, m, "q")
	require.False(t, m.call.Settled())

	select {
	case <-m.Shutdown():
	case <-time.After(time.Second):
		t.Fatal("in-flight call did not settle after shutdown")
	}
	assert.True(t, m.call.Settled())
	_, err := m.call.Result()
	assert.ErrorIs(t, err, askclient.ErrCancelled)
}

func TestShutdown_IdleDoesNotBlock(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t)
	select {
	case <-m.Shutdown():
	default:
		t.Fatal("shutdown with nothing in flight should be done immediately")
	}
}

func TestHistory_Recall(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t)
	for _, q := range []string{"first", "second"} {
		m, _ = ask(t, m, q)
		m = awaitAnswer(t, m)
	}

	m = typeText(t, m, "draft")
	m, _ = press(t, m, keyOf(tea.KeyUp))
	assert.Equal(t, "second", m.input.Value())
	m, _ = press(t, m, keyOf(tea.KeyUp))
	assert.Equal(t, "first", m.input.Value())
	m, _ = press(t, m, keyOf(tea.KeyUp))
	assert.Equal(t, "first", m.input.Value(), "stops at the oldest entry")

	m, _ = press(t, m, keyOf(tea.KeyDown))
	assert.Equal(t, "second", m.input.Value())
	m, _ = press(t, m, keyOf(tea.KeyDown))
	assert.Equal(t, "draft", m.input.Value(), "walking past the newest restores the draft")
}

// =============================================================================
// SAFETY
// =============================================================================

func TestRender_StripsTerminalEscapes(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t, WithStripMarkup(true), WithAsker(newFakeAsker(answerWith("\x1b[2J\x1b[Hpwned\x07 <b>bold</b>"))))
	m, _ = ask(t, m, "hi\x1b[31m there")
	m = awaitAnswer(t, m)

	raw := m.renderTranscript()
	assert.NotContains(t, raw, "\x1b[2J")
	assert.NotContains(t, raw, "\x1b[31m")
	assert.NotContains(t, raw, "\x07")
	assert.Contains(t, raw, "pwned bold", "markup stripped from backend text")
}

func TestRender_MarkupShownLiterallyByDefault(t *testing.T) {
	t.Parallel()

	m := NewTestModel(t, WithAsker(newFakeAsker(answerWith("<b>bold</b>"))))
	m, _ = ask(t, m, "q")
	m = awaitAnswer(t, m)

	assert.Contains(t, plainTranscript(m), "<b>bold</b>")
}

func TestRender_AnswerWithComparisonsIsVerbatim(t *testing.T) {
	t.Parallel()

	answers := []string{
		"if a<b then c>d",
		"Use <ticker> symbol",
		"P/E < 15 && yield > 3%",
	}
	for _, answer := range answers {
		m := NewTestModel(t, WithAsker(newFakeAsker(answerWith(answer))))
		m, _ = ask(t, m, "q")
		m = awaitAnswer(t, m)

		assert.Contains(t, plainTranscript(m), answer)
	}
}

// =============================================================================
// END TO END
// =============================================================================

func TestAskClient_Non2xxRendersError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model offline"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := NewTestModel(t, WithAsker(askclient.New(srv.URL+askclient.DefaultPath)))
	m, _ = ask(t, m, "q")
	m = awaitAnswer(t, m)

	assert.Equal(t, StateIdle, m.State())
	assert.Contains(t, plainTranscript(m), "Error: server returned 500 Internal Server Error: model offline")
}

func TestAskClient_SuccessEndToEnd(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"Markets closed higher.","sources":[{"title":"Reuters","link":"https://reuters.example/1"}]}`))
	}))
	defer srv.Close()

	m := NewTestModel(t, WithAsker(askclient.New(srv.URL)))
	m, _ = ask(t, m, "How did markets close?")
	m = awaitAnswer(t, m)

	out := plainTranscript(m)
	assert.Contains(t, out, "Markets closed higher.")
	assert.Contains(t, out, "Source 1: Reuters")
}
