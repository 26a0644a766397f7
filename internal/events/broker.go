package events

import (
	"sync"

	"github.com/Mohsinsiddi/w3pool/internal/pool"
)

// Broker fans events out to live subscribers. Slow subscribers drop events
// rather than stall the pool; the journal is the complete record.
type Broker struct {
	mu   sync.Mutex
	subs map[int]chan pool.Event
	next int
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[int]chan pool.Event)}
}

// Record delivers the event to every subscriber.
func (b *Broker) Record(ev pool.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a live event feed. The returned cancel func must be
// called when the subscriber is done.
func (b *Broker) Subscribe() (<-chan pool.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan pool.Event, 16)
	b.subs[id] = ch
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// Subscribers returns the current subscriber count.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Multi tees events to several recorders in order.
func Multi(rs ...pool.Recorder) pool.Recorder {
	return pool.RecorderFunc(func(ev pool.Event) {
		for _, r := range rs {
			r.Record(ev)
		}
	})
}
