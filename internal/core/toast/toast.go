// Package toast holds the single transient notification shown to the user.
package toast

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultTTL is how long a toast stays visible
const DefaultTTL = 4 * time.Second

// Kind selects the styling of a toast
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Toast is one notification instance. ID distinguishes instances with equal text.
type Toast struct {
	Message string
	Kind    Kind
	ID      uint64
}

// Notifier keeps at most one toast and dismisses it after its TTL.
// A newer toast replaces the current one; a dismissal scheduled for a
// replaced toast never clears its successor.
type Notifier struct {
	clock     clock.Clock
	timer     *clock.Timer
	current   *Toast
	listeners []func()
	ttl       time.Duration
	nextID    uint64
	mu        sync.Mutex
}

// NewNotifier creates a notifier. A nil clock means wall time; ttl <= 0 means DefaultTTL.
func NewNotifier(clk clock.Clock, ttl time.Duration) *Notifier {
	if clk == nil {
		clk = clock.New()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{clock: clk, ttl: ttl}
}

// OnChange registers fn to run after the visible toast changes.
// Listeners run without the notifier's lock held.
func (n *Notifier) OnChange(fn func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// Show replaces the current toast and returns the new instance
func (n *Notifier) Show(message string, kind Kind) Toast {
	if kind == "" {
		kind = KindInfo
	}

	n.mu.Lock()
	n.nextID++
	t := Toast{ID: n.nextID, Message: message, Kind: kind}
	n.current = &t

	if n.timer != nil {
		n.timer.Stop()
	}
	id := t.ID
	n.timer = n.clock.AfterFunc(n.ttl, func() {
		n.Dismiss(id)
	})
	listeners := n.snapshotListenersLocked()
	n.mu.Unlock()

	notify(listeners)
	return t
}

// Dismiss clears the toast with the given id. It is a no-op when that toast
// is no longer the visible one.
func (n *Notifier) Dismiss(id uint64) bool {
	n.mu.Lock()
	if n.current == nil || n.current.ID != id {
		n.mu.Unlock()
		return false
	}
	n.current = nil
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	listeners := n.snapshotListenersLocked()
	n.mu.Unlock()

	notify(listeners)
	return true
}

// Current returns the visible toast, if any
func (n *Notifier) Current() (Toast, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Toast{}, false
	}
	return *n.current, true
}

// TTL returns the display duration of each toast
func (n *Notifier) TTL() time.Duration {
	return n.ttl
}

func (n *Notifier) snapshotListenersLocked() []func() {
	out := make([]func(), len(n.listeners))
	copy(out, n.listeners)
	return out
}

func notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
