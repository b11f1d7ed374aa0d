package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity classifies a feedback event for rendering.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Event is a single transient feedback message.
type Event struct {
	ID        string
	Message   string
	Severity  Severity
	CreatedAt time.Time
}

// DefaultTTL is how long an event stays visible unless dismissed first.
const DefaultTTL = 4 * time.Second

// Queue holds the currently-active feedback events. Events expire on their
// own after the TTL or are removed early by Dismiss; either way removal is
// keyed by id while rendering order stays insertion order.
//
// The queue owns its expiry timers: Close stops them all, so no timer can
// fire after the view that created the queue is gone.
type Queue struct {
	mu     sync.Mutex
	ttl    time.Duration
	events []Event
	timers map[string]*time.Timer
	closed bool
}

// New creates a queue whose events expire after ttl. A non-positive ttl
// falls back to DefaultTTL.
func New(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Queue{
		ttl:    ttl,
		timers: make(map[string]*time.Timer),
	}
}

// Post appends a new event and schedules its expiry. It returns the event
// id, which can be handed to Dismiss. Posting to a closed queue is a no-op
// that still returns a fresh id.
func (q *Queue) Post(message string, severity Severity) string {
	id := uuid.NewString()

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return id
	}

	q.events = append(q.events, Event{
		ID:        id,
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	})

	q.timers[id] = time.AfterFunc(q.ttl, func() {
		q.Dismiss(id)
	})

	return id
}

// Dismiss removes the event with the given id. Unknown or already-removed
// ids are ignored, so expiry and manual dismissal race safely.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.remove(id)
}

// Active returns a snapshot of the live events in insertion order.
func (q *Queue) Active() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Event, len(q.events))
	copy(out, q.events)

	return out
}

// Close dismisses everything and stops all pending timers. The queue
// accepts no further events afterwards.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id := range q.timers {
		q.timers[id].Stop()
		delete(q.timers, id)
	}

	q.events = nil
	q.closed = true
}

// remove must be called with q.mu held.
func (q *Queue) remove(id string) {
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}

	for i, e := range q.events {
		if e.ID == id {
			q.events = append(q.events[:i], q.events[i+1:]...)
			return
		}
	}
}
