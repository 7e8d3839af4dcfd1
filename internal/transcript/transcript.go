// Package transcript holds the append-only log of a chat session.
//
// Every submission adds two entries: the user's query, and a pending bot
// entry that is later settled in place with an answer or an error. Entries
// are never removed or reordered.
package transcript

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"askchat/internal/askclient"
)

// Role identifies who produced an entry.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Status tracks a bot entry through its lifetime. User entries are always
// StatusAnswered.
type Status int

const (
	StatusPending Status = iota
	StatusAnswered
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAnswered:
		return "answered"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ErrNotPending is returned when settling an entry that is unknown or
// already settled.
var ErrNotPending = errors.New("entry is not pending")

// Entry is one bubble in the transcript.
type Entry struct {
	ID     string
	Role   Role
	Status Status
	Mode   string
	// Text is the query for user entries, the answer for answered bot
	// entries and the failure message for failed ones.
	Text    string
	Sources []askclient.Source
	Time    time.Time
}

// Transcript is safe for concurrent use, although the chat widget only
// touches it from its update loop.
type Transcript struct {
	mu      sync.RWMutex
	entries []Entry
	index   map[string]int
	now     func() time.Time
}

// New returns an empty transcript.
func New() *Transcript {
	return &Transcript{
		index: make(map[string]int),
		now:   time.Now,
	}
}

// AppendUser records a submitted query.
func (t *Transcript) AppendUser(text, mode string) Entry {
	return t.append(Entry{Role: RoleUser, Status: StatusAnswered, Mode: mode, Text: text})
}

// AppendPending records the placeholder bot entry for an in-flight request.
func (t *Transcript) AppendPending(mode string) Entry {
	return t.append(Entry{Role: RoleBot, Status: StatusPending, Mode: mode})
}

func (t *Transcript) append(e Entry) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	e.ID = uuid.NewString()
	e.Time = t.now()
	t.index[e.ID] = len(t.entries)
	t.entries = append(t.entries, e)
	return e
}

// Resolve settles a pending entry with the service's answer.
func (t *Transcript) Resolve(id, answer string, sources []askclient.Source) error {
	return t.settle(id, func(e *Entry) {
		e.Status = StatusAnswered
		e.Text = answer
		if len(sources) > 0 {
			e.Sources = append([]askclient.Source(nil), sources...)
		}
	})
}

// Fail settles a pending entry with a failure message.
func (t *Transcript) Fail(id, message string) error {
	return t.settle(id, func(e *Entry) {
		e.Status = StatusFailed
		e.Text = message
	})
}

func (t *Transcript) settle(id string, apply func(*Entry)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.index[id]
	if !ok || t.entries[i].Status != StatusPending {
		return fmt.Errorf("settle %s: %w", id, ErrNotPending)
	}
	apply(&t.entries[i])
	return nil
}

// Entries returns a copy of all entries in insertion order.
func (t *Transcript) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Get returns the entry with the given id.
func (t *Transcript) Get(id string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, ok := t.index[id]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Pending returns the number of unsettled bot entries.
func (t *Transcript) Pending() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := 0
	for _, e := range t.entries {
		if e.Status == StatusPending {
			n++
		}
	}
	return n
}
