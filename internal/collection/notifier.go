package collection

// EventKind names a notification emitted by a Collection.
type EventKind string

const (
	// EventDuplicateID is emitted when Add meets an id already in use.
	EventDuplicateID EventKind = "duplicate-id"

	// EventTagToggle is emitted by ToggleTags after derivations are refreshed.
	EventTagToggle EventKind = "data-toggle"
)

// Event is a notification delivered to a Notifier.
type Event struct {
	Kind EventKind
	ID   string

	// Topic is the channel name subscribers filter on. For EventTagToggle
	// it is qualified by Scope.
	Scope string
	Topic string
}

// Notifier receives events from a Collection. Notify is called
// synchronously and should return promptly; the Collection never waits
// on a result.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

// Notify calls f(ev).
func (f NotifierFunc) Notify(ev Event) { f(ev) }

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

// ScopedTopic qualifies topic with scope. An empty scope leaves the topic
// unqualified.
func ScopedTopic(scope string, topic string) string {
	if scope == "" {
		return topic
	}
	return scope + ":" + topic
}
