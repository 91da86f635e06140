package engine

// Notifier wakes up a worker when new work is available. Notifications are
// not counted: any number of Notify calls before the worker reads the channel
// result in a single wake-up, so the worker must drain all pending work each
// time. Notifier is safe to pass by value.
type Notifier struct {
	notifier chan struct{}
}

func NewNotifier() Notifier {
	// one buffered slot keeps a notification sent while the worker is between
	// draining its queue and reading the channel again
	return Notifier{make(chan struct{}, 1)}
}

// Notify never blocks.
func (n Notifier) Notify() {
	select {
	case n.notifier <- struct{}{}:
	default:
	}
}

func (n Notifier) Channel() <-chan struct{} {
	return n.notifier
}
