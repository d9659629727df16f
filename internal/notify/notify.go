// Package notify delivers editor change events to observers.
//
// The engine publishes a Change after every successful mutation, load and
// save. Observers run synchronously on the publishing goroutine by default,
// or on a dedicated goroutine with WithAsync.
package notify

import (
	"slices"
	"sync"
)

// Kind classifies a change.
type Kind int

const (
	// ChangeEdit indicates text was inserted or removed.
	ChangeEdit Kind = iota

	// ChangeFormat indicates character or paragraph attributes changed.
	ChangeFormat

	// ChangeLoad indicates the whole document was replaced.
	ChangeLoad

	// ChangeSave indicates the document was written to its file.
	ChangeSave

	// ChangeSelection indicates only the caret or selection moved.
	ChangeSelection
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case ChangeEdit:
		return "edit"
	case ChangeFormat:
		return "format"
	case ChangeLoad:
		return "load"
	case ChangeSave:
		return "save"
	case ChangeSelection:
		return "selection"
	default:
		return "unknown"
	}
}

// Change is one editor event.
type Change struct {
	Kind Kind

	// Revision is the document revision after the change.
	Revision uint64

	// Description names the operation, e.g. "insert text" or "toggle bold".
	Description string

	// Path is the file involved in load and save events.
	Path string
}

// Observer is called for every change it subscribed to.
type Observer func(change Change)

// Subscription represents an active observer.
type Subscription struct {
	id       uint64
	notifier *Notifier
}

// Unsubscribe removes the observer. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s != nil && s.notifier != nil {
		s.notifier.unsubscribe(s.id)
	}
}

type entry struct {
	id       uint64
	kinds    []Kind
	observer Observer
}

func (e entry) wants(k Kind) bool {
	return len(e.kinds) == 0 || slices.Contains(e.kinds, k)
}

// Notifier manages subscriptions and delivers changes in subscription order.
type Notifier struct {
	mu sync.RWMutex

	entries []entry
	nextID  uint64

	async  bool
	buffer chan Change
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithAsync delivers changes on a background goroutine through a buffer of
// the given size. Notify blocks when the buffer is full.
func WithAsync(bufferSize int) Option {
	return func(n *Notifier) {
		if bufferSize > 0 {
			n.async = true
			n.buffer = make(chan Change, bufferSize)
		}
	}
}

// New creates a Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{done: make(chan struct{})}
	for _, opt := range opts {
		opt(n)
	}
	if n.async {
		n.wg.Add(1)
		go n.processAsync()
	}
	return n
}

// Subscribe registers an observer for every change.
func (n *Notifier) Subscribe(observer Observer) *Subscription {
	return n.SubscribeKind(observer)
}

// SubscribeKind registers an observer for the listed kinds only. With no
// kinds it receives everything.
func (n *Notifier) SubscribeKind(observer Observer, kinds ...Kind) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	n.entries = append(n.entries, entry{id: id, kinds: kinds, observer: observer})
	return &Subscription{id: id, notifier: n}
}

// Len returns the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.entries)
}

// Notify publishes a change. It does nothing after Close.
func (n *Notifier) Notify(change Change) {
	n.mu.RLock()
	if n.closed {
		n.mu.RUnlock()
		return
	}
	n.mu.RUnlock()

	if n.async {
		select {
		case n.buffer <- change:
		case <-n.done:
		}
		return
	}
	n.deliver(change)
}

// Close stops delivery. Changes already buffered are delivered before Close
// returns. It is safe to call Close multiple times.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	n.mu.Unlock()

	close(n.done)
	n.wg.Wait()
}

func (n *Notifier) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.entries = slices.DeleteFunc(n.entries, func(e entry) bool {
		return e.id == id
	})
}

// deliver calls matching observers outside the lock so they may subscribe
// or unsubscribe.
func (n *Notifier) deliver(change Change) {
	n.mu.RLock()
	var observers []Observer
	for _, e := range n.entries {
		if e.wants(change.Kind) {
			observers = append(observers, e.observer)
		}
	}
	n.mu.RUnlock()

	for _, obs := range observers {
		obs(change)
	}
}

func (n *Notifier) processAsync() {
	defer n.wg.Done()

	for {
		select {
		case change := <-n.buffer:
			n.deliver(change)
		case <-n.done:
			for {
				select {
				case change := <-n.buffer:
					n.deliver(change)
				default:
					return
				}
			}
		}
	}
}
