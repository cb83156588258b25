package client

import "sync"

// Notification levels
const (
	LevelSuccess = "success"
	LevelError   = "error"
)

// Notification is one toast message awaiting display
type Notification struct {
	Level   string
	Message string
}

// Notifier is an injected notification bus with a bounded queue. When the
// queue is full the oldest notification is dropped to make room.
type Notifier struct {
	mu    sync.Mutex
	queue []Notification
	max   int
}

// NewNotifier creates a notifier that holds at most max pending notifications
func NewNotifier(max int) *Notifier {
	if max < 1 {
		max = 1
	}
	return &Notifier{max: max}
}

// Publish enqueues one notification
func (n *Notifier) Publish(level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.queue) >= n.max {
		n.queue = n.queue[1:]
	}
	n.queue = append(n.queue, Notification{Level: level, Message: message})
}

// Dismiss pops the oldest pending notification
func (n *Notifier) Dismiss() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.queue) == 0 {
		return Notification{}, false
	}
	head := n.queue[0]
	n.queue = n.queue[1:]
	return head, true
}

// Pending returns a copy of the queued notifications in display order
func (n *Notifier) Pending() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Notification, len(n.queue))
	copy(out, n.queue)
	return out
}
