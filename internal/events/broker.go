// Package events implements a small fan-out channel for store mutations.
// It sits on top of the repositories as a convenience for reactive callers;
// nothing in the store contract depends on it.
package events

import "sync/atomic"

// Op describes what a mutation did.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event is published after a repository commits a mutation.
type Event struct {
	Entity string
	Op     Op
	ID     uint
}

// Broker fans mutation events out to subscribers.
//
// Concurrency model: a single internal goroutine owns the subscriber set.
// Public methods communicate with it through channels, so no mutexes are
// required. Delivery is best-effort: a subscriber with a full buffer is
// skipped rather than blocking the loop.
type Broker struct {
	subscribeCh   chan chan Event
	unsubscribeCh chan chan Event
	publishCh     chan Event

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker and starts its event loop.
func NewBroker() *Broker {
	b := &Broker{
		subscribeCh:   make(chan chan Event),
		unsubscribeCh: make(chan chan Event),
		publishCh:     make(chan Event, 256),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	subscribers := make(map[chan Event]struct{})

	for {
		select {
		case <-b.stopCh:
			for ch := range subscribers {
				close(ch)
			}
			return
		case ch := <-b.subscribeCh:
			subscribers[ch] = struct{}{}
		case ch := <-b.unsubscribeCh:
			if _, ok := subscribers[ch]; ok {
				delete(subscribers, ch)
				close(ch)
			}
		case ev := <-b.publishCh:
			for ch := range subscribers {
				select {
				case ch <- ev:
				default:
				}
			}
		}
	}
}

// Subscribe registers a new listener. The returned channel is closed on
// Unsubscribe or Stop.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, 16)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a listener and closes its channel.
func (b *Broker) Unsubscribe(ch chan Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// Publish queues an event for delivery. Safe to call from any goroutine;
// never blocks the caller.
func (b *Broker) Publish(ev Event) {
	if b == nil || b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- ev:
	case <-b.stopped:
	default:
	}
}

// Stop shuts the loop down and closes all subscriber channels.
func (b *Broker) Stop() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
		<-b.stopped
	}
}
