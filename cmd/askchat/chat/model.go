// Package chat implements the interactive ask widget: a text input, an Ask
// button, a mode selector and the scrolling transcript they feed.
package chat

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"askchat/cmd/askchat/ui"
	"askchat/internal/askclient"
	"askchat/internal/logging"
	"askchat/internal/transcript"
)

// State is the request lifecycle of the widget. Control enablement is
// derived from it.
type State int

const (
	StateIdle State = iota
	StateBusy
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBusy:
		return "busy"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Focus identifies which control receives keys, in tab order.
type Focus int

const (
	FocusInput Focus = iota
	FocusButton
	FocusMode
	focusCount
)

const (
	buttonIdleLabel = "Ask"
	buttonBusyLabel = "Loading..."
	placeholderText = "Thinking..."
	inputPrompt     = "> "
	inputHint       = "Ask about market news..."
	inputCharLimit  = 2000
	renderCacheSize = 256
)

// Asker starts a request and returns its pending call.
// *askclient.Client satisfies it.
type Asker interface {
	Go(ctx context.Context, req askclient.Request) *askclient.Call
}

// Options configures a Model.
type Options struct {
	Asker Asker
	// Modes offered by the selector; ModeIndex is the initial selection.
	Modes     []string
	ModeIndex int
	Styles    ui.Styles
	// Endpoint is shown in the header only.
	Endpoint string
	// RenderMarkdown renders answers through glamour.
	RenderMarkdown bool
	// StripMarkup removes HTML from backend text before display.
	StripMarkup bool
	// Context bounds every request; quitting cancels it.
	Context context.Context
}

// Model is the Bubble Tea model for the chat widget.
type Model struct {
	asker      Asker
	transcript *transcript.Transcript
	state      State
	focus      Focus

	modes   []string
	modeIdx int

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap

	styles         ui.Styles
	layout         ui.LayoutConfig
	cache          *ui.RenderCache
	renderer       *glamour.TermRenderer
	renderMarkdown bool
	stripMarkup    bool
	endpoint       string
	ready          bool

	// In-flight request. seq increments per submit so a stale settle
	// can be recognised and dropped.
	seq       int
	call      *askclient.Call
	pendingID string

	history    []string
	historyIdx int
	draft      string

	ctx    context.Context
	cancel context.CancelFunc
}

// answerMsg carries a settled call back into the update loop.
type answerMsg struct {
	seq     int
	entryID string
	resp    *askclient.Response
	err     error
}

// New creates a chat model in the Idle state with the input focused.
func New(opts Options) Model {
	modes := opts.Modes
	if len(modes) == 0 {
		modes = []string{"concise", "detailed"}
	}
	modeIdx := opts.ModeIndex
	if modeIdx < 0 || modeIdx >= len(modes) {
		modeIdx = 0
	}

	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	ti := textinput.New()
	ti.Prompt = inputPrompt
	ti.Placeholder = inputHint
	ti.CharLimit = inputCharLimit
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = opts.Styles.Spinner

	layout := ui.NewLayoutConfig(80, 24)
	vp := viewport.New(layout.TranscriptWidth(), layout.TranscriptHeight())

	return Model{
		asker:          opts.Asker,
		transcript:     transcript.New(),
		state:          StateIdle,
		focus:          FocusInput,
		modes:          append([]string(nil), modes...),
		modeIdx:        modeIdx,
		input:          ti,
		viewport:       vp,
		spinner:        sp,
		help:           help.New(),
		keys:           defaultKeyMap(),
		styles:         opts.Styles,
		layout:         layout,
		cache:          ui.NewRenderCache(renderCacheSize),
		renderMarkdown: opts.RenderMarkdown,
		stripMarkup:    opts.StripMarkup,
		endpoint:       opts.Endpoint,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// State returns the current request state.
func (m Model) State() State {
	return m.state
}

// Mode returns the selected mode.
func (m Model) Mode() string {
	return m.modes[m.modeIdx]
}

// Transcript returns the widget's transcript.
func (m Model) Transcript() *transcript.Transcript {
	return m.transcript
}

// InputEnabled reports whether the text input accepts edits.
func (m Model) InputEnabled() bool {
	return m.state == StateIdle
}

// ButtonLabel is the Ask button's current text.
func (m Model) ButtonLabel() string {
	if m.state == StateBusy {
		return buttonBusyLabel
	}
	return buttonIdleLabel
}

// Shutdown cancels any in-flight request. The returned channel is closed
// once that request has settled.
func (m Model) Shutdown() <-chan struct{} {
	if m.cancel != nil {
		m.cancel()
	}
	if m.call == nil {
		return settled
	}
	if !m.call.Settled() {
		logging.UI("cancelling in-flight request seq=%d", m.seq)
	}
	m.call.Cancel()
	return m.call.Done()
}

var settled = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()
