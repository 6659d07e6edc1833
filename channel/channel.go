// Package channel implements a single-slot, typed rendezvous channel:
// Send blocks while the slot is full, Receive blocks while it is empty.
// It is the cross-system hand-off primitive modules use through the
// Context vtable.
//
// Go's type system makes the original "elementSize" field moot — a
// generic Channel[T] holds one T value inline instead of a raw byte
// count plus an inline buffer, which also resolves spec.md's Open
// Question (b) about the inline buffer's placement: there is no pointer
// arithmetic here at all.
package channel

import "sync"

// Channel is a single-slot rendezvous channel carrying values of type T.
type Channel[T any] struct {
	mu     sync.Mutex
	sendC  *sync.Cond
	recvC  *sync.Cond
	stored bool
	value  T
	closed bool
}

// Open creates a new, empty Channel.
func Open[T any]() *Channel[T] {
	c := &Channel[T]{}
	c.sendC = sync.NewCond(&c.mu)
	c.recvC = sync.NewCond(&c.mu)
	return c
}

// Send blocks while the channel already holds a value, then stores v and
// wakes one waiting Receive.
func (c *Channel[T]) Send(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.stored && !c.closed {
		c.sendC.Wait()
	}
	if c.closed {
		return
	}
	c.value = v
	c.stored = true
	c.recvC.Signal()
}

// Receive blocks while the channel is empty, then returns the stored
// value and wakes one waiting Send. ok is false only when the channel
// was closed with nothing pending, mirroring Go's own v, ok := <-ch.
func (c *Channel[T]) Receive() (v T, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for !c.stored && !c.closed {
		c.recvC.Wait()
	}
	if !c.stored {
		return v, false
	}
	v = c.value
	var zero T
	c.value = zero
	c.stored = false
	c.sendC.Signal()
	return v, true
}

// Close releases the channel. Behavior for peers already blocked in Send
// or Receive is undefined by the specification; this implementation
// wakes them so they return a zero value rather than hang forever, but
// callers must still only Close after all senders/receivers for this
// channel have stopped using it (the host closes channels only after
// Scheduler.Wait at shutdown).
func (c *Channel[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.sendC.Broadcast()
	c.recvC.Broadcast()
}
