// Package chat provides test utilities for TUI testing.
// This file contains fakes, fixtures, and helpers for testing the chat package.
package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"askchat/cmd/askchat/ui"
	"askchat/internal/askclient"
)

// =============================================================================
// FAKE ASKER
// =============================================================================

// fakeAsker records requests and answers them with respond.
type fakeAsker struct {
	mu       sync.Mutex
	requests []askclient.Request
	respond  askclient.AskFunc
}

func newFakeAsker(respond askclient.AskFunc) *fakeAsker {
	return &fakeAsker{respond: respond}
}

func (f *fakeAsker) Go(ctx context.Context, req askclient.Request) *askclient.Call {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return askclient.Start(ctx, req, f.respond)
}

func (f *fakeAsker) Requests() []askclient.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]askclient.Request(nil), f.requests...)
}

// answerWith resolves every request with text and sources.
func answerWith(text string, sources ...askclient.Source) askclient.AskFunc {
	return func(ctx context.Context, req askclient.Request) (*askclient.Response, error) {
		return &askclient.Response{Answer: text, Sources: sources}, nil
	}
}

// failWith rejects every request with msg.
func failWith(msg string) askclient.AskFunc {
	return func(ctx context.Context, req askclient.Request) (*askclient.Response, error) {
		return nil, errors.New(msg)
	}
}

// blockUntilCancelled never answers on its own.
func blockUntilCancelled() askclient.AskFunc {
	return func(ctx context.Context, req askclient.Request) (*askclient.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

// =============================================================================
// TEST MODEL
// =============================================================================

// TestModelOption configures a test model.
type TestModelOption func(*Options)

// WithAsker sets the backend.
func WithAsker(a Asker) TestModelOption {
	return func(o *Options) { o.Asker = a }
}

// WithModes sets the selectable modes.
func WithModes(modes ...string) TestModelOption {
	return func(o *Options) { o.Modes = modes }
}

// WithStripMarkup toggles HTML stripping of backend text.
func WithStripMarkup(v bool) TestModelOption {
	return func(o *Options) { o.StripMarkup = v }
}

// NewTestModel returns a sized, ready model answering "ok" by default.
func NewTestModel(t *testing.T, opts ...TestModelOption) Model {
	t.Helper()

	o := Options{
		Asker:  newFakeAsker(answerWith("ok")),
		Modes:  []string{"concise", "detailed"},
		Styles: ui.NewStyles(ui.LightTheme()),
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := New(o)
	t.Cleanup(func() { m.Shutdown() })

	newModel, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return newModel.(Model)
}

// =============================================================================
// HELPERS
// =============================================================================

func press(t *testing.T, m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	newModel, cmd := m.Update(k)
	return newModel.(Model), cmd
}

func keyOf(kt tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: kt}
}

// typeText types s into the focused input.
func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

// ask types query and presses enter.
func ask(t *testing.T, m Model, query string) (Model, tea.Cmd) {
	t.Helper()
	m = typeText(t, m, query)
	return press(t, m, keyOf(tea.KeyEnter))
}

// awaitAnswer runs the pending wait command and feeds its result back.
func awaitAnswer(t *testing.T, m Model) Model {
	t.Helper()
	require.NotNil(t, m.call, "no request in flight")
	msg := waitForAnswer(m.seq, m.pendingID, m.call)()
	newModel, _ := m.Update(msg)
	return newModel.(Model)
}

// plainTranscript is the transcript as it would read on screen.
func plainTranscript(m Model) string {
	return ansi.Strip(m.renderTranscript())
}
