package feed

import (
	"sort"
	"sync"
	"time"
)

// Action names used by the controllers.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// subscriberBuffer is the channel capacity handed to each subscriber.
const subscriberBuffer = 100

// Change describes a single mutation (or sweep result) published on the feed.
type Change struct {
	// Resource is the collection name, e.g. "orders" or "reminders".
	Resource string `json:"resource"`

	// Action is what happened, e.g. "created".
	Action string `json:"action"`

	// ID is the affected record id, empty for collection-level changes.
	ID string `json:"id,omitempty"`

	// Data carries an optional payload (the stored record or sweep counts).
	Data any `json:"data,omitempty"`

	// At is when the change was published.
	At time.Time `json:"at"`
}

// Publisher is the write side of the feed.
type Publisher interface {
	Publish(c Change)
}

// Feed defines publishing and subscribing to changes.
//
// Implementations must be safe for concurrent access.
type Feed interface {
	Publisher

	// Subscribe returns a channel that receives changes.
	// Caller must call Unsubscribe when done.
	Subscribe() <-chan Change

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Change)

	// Latest returns the most recent change per resource.
	Latest() []Change
}

// Broker is the in-memory [Feed] implementation.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[chan Change]struct{}
	last        map[string]Change
	now         func() time.Time
}

// NewBroker creates an empty [Broker]. No cleanup is required when done.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[chan Change]struct{}),
		last:        make(map[string]Change),
		now:         time.Now,
	}
}

// Publish stamps the change and fans it out to all subscribers.
func (b *Broker) Publish(c Change) {
	if c.At.IsZero() {
		c.At = b.now().UTC()
	}

	b.mu.Lock()
	b.last[c.Resource] = c
	b.mu.Unlock()

	b.notifySubscribers(c)
}

// Latest returns the most recent change per resource, oldest first.
//
// The returned slice is a copy.
func (b *Broker) Latest() []Change {
	b.mu.RLock()
	out := make([]Change, 0, len(b.last))
	for _, c := range b.last {
		out = append(out, c)
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].At.Equal(out[j].At) {
			return out[i].Resource < out[j].Resource
		}
		return out[i].At.Before(out[j].At)
	})
	return out
}

// Subscribe creates a new subscription with a buffer of 100 changes.
func (b *Broker) Subscribe() <-chan Change {
	ch := make(chan Change, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broker) Unsubscribe(ch <-chan Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for subCh := range b.subscribers {
		if subCh == ch {
			delete(b.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// Close unsubscribes everyone. Used when the server stops so open SSE
// streams terminate.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subscribers {
		delete(b.subscribers, ch)
		close(ch)
	}
}

func (b *Broker) notifySubscribers(c Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers {
		select {
		case ch <- c:
		default:
			// subscriber is slow, drop the change
		}
	}
}

// Nop discards every change.
type Nop struct{}

// Publish implements [Publisher].
func (Nop) Publish(Change) {}
