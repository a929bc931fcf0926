package agent

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/agentry/pkg/domain"
)

// Message is a value that knows which handler of T it dispatches to.
type Message[T any] interface {
	Handle(ctx context.Context, unit T, c *Context[T]) error
}

// MessageFunc adapts a closure to Message.
type MessageFunc[T any] func(ctx context.Context, unit T, c *Context[T]) error

// Handle calls f.
func (f MessageFunc[T]) Handle(ctx context.Context, unit T, c *Context[T]) error {
	return f(ctx, unit, c)
}

// Envelope is a queued message.
type Envelope[T any] struct {
	Message  Message[T]
	Enqueued time.Time
}

// Mailbox is an unbounded FIFO queue with a close flag.
// Any goroutine may push; a single consumer pops.
type Mailbox[E any] struct {
	mu     sync.Mutex
	items  []E
	closed bool
	notify chan struct{}
}

// NewMailbox creates an open, empty mailbox.
func NewMailbox[E any]() *Mailbox[E] {
	return &Mailbox[E]{notify: make(chan struct{}, 1)}
}

// Push enqueues e. It fails with domain.ErrMailboxClosed once the mailbox is closed.
func (m *Mailbox[E]) Push(e E) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.ErrMailboxClosed
	}
	m.items = append(m.items, e)
	m.mu.Unlock()

	m.wake()
	return nil
}

// TryPop dequeues the oldest item without blocking.
func (m *Mailbox[E]) TryPop() (E, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero E
	if len(m.items) == 0 {
		return zero, false
	}
	e := m.items[0]
	m.items[0] = zero
	m.items = m.items[1:]
	return e, true
}

// Close stops accepting new items. Queued items stay poppable.
// It reports whether this call closed the mailbox.
func (m *Mailbox[E]) Close() bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.closed = true
	m.mu.Unlock()

	m.wake()
	return true
}

// Closed reports whether Close was called.
func (m *Mailbox[E]) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Drained reports whether the mailbox is closed and empty.
func (m *Mailbox[E]) Drained() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed && len(m.items) == 0
}

// Len returns the number of queued items.
func (m *Mailbox[E]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Ready receives a signal after a push or a close. Signals coalesce, so the
// consumer must drain with TryPop after each wake.
func (m *Mailbox[E]) Ready() <-chan struct{} {
	return m.notify
}

func (m *Mailbox[E]) wake() {
	select {
	case m.notify <- struct{}{}:
	default:
	}
}
