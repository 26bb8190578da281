// Package testutil holds deterministic helpers shared by tests and the
// conformance harness.
package testutil

import (
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/glimpse/internal/collection"
)

// RecordingNotifier keeps every event it receives, in order.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type RecordingNotifier struct {
	mu     sync.Mutex
	events []collection.Event
}

// NewRecordingNotifier creates an empty recorder.
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{}
}

// Notify implements collection.Notifier.
func (n *RecordingNotifier) Notify(ev collection.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

// Events returns a copy of the recorded events.
func (n *RecordingNotifier) Events() []collection.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]collection.Event, len(n.events))
	copy(out, n.events)
	return out
}

// Topics returns the topic of every recorded event, in order.
func (n *RecordingNotifier) Topics() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Topic
	}
	return out
}

// Reset drops all recorded events.
func (n *RecordingNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = nil
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
