// Package events is a small typed in-process event bus.
//
// The generation session offers state snapshots here and UIs subscribe to
// them as render triggers. Offer never blocks; a full subscriber keeps only
// the newest event.
package events

import (
	"reflect"
	"sync"
	"sync/atomic"
)

// Bus delivers events to subscribers keyed by event type.
type Bus struct {
	mu        sync.RWMutex
	subs      map[reflect.Type]map[uint64]*subscriber
	nextID    atomic.Uint64
	isClosed  atomic.Bool
	closeOnce sync.Once
}

type subscriber struct {
	offer func(evt any)
	close func()
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[reflect.Type]map[uint64]*subscriber),
	}
}

// Subscribe registers a subscription for events of type T.
//
// If T is an interface, published events whose concrete type implements T are delivered.
// For concrete T, events are delivered only when the concrete type matches exactly.
// The returned function unsubscribes and closes the channel.
func Subscribe[T any](b *Bus, buffer int) (<-chan T, func()) {
	if buffer < 1 {
		buffer = 1
	}
	eventType := reflect.TypeOf((*T)(nil)).Elem()
	ch := make(chan T, buffer)

	if b.isClosed.Load() {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID.Add(1)

	// offerMu serializes Offer with close; Offer drains and refills the buffer.
	var offerMu sync.Mutex
	closed := false

	closeChannel := func() {
		offerMu.Lock()
		defer offerMu.Unlock()
		if !closed {
			closed = true
			close(ch)
		}
	}

	var unsubOnce sync.Once
	unsubscribe := func() {
		unsubOnce.Do(func() {
			b.mu.Lock()
			if typeSubs, ok := b.subs[eventType]; ok {
				delete(typeSubs, id)
				if len(typeSubs) == 0 {
					delete(b.subs, eventType)
				}
			}
			b.mu.Unlock()

			closeChannel()
		})
	}

	sub := &subscriber{
		offer: func(evt any) {
			v, ok := evt.(T)
			if !ok {
				return
			}
			offerMu.Lock()
			defer offerMu.Unlock()
			if closed {
				return
			}
			for {
				select {
				case ch <- v:
					return
				default:
				}
				// Drop the oldest pending event so the newest one always lands.
				select {
				case <-ch:
				default:
				}
			}
		},
		close: closeChannel,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isClosed.Load() {
		closeChannel()
		return ch, func() {}
	}

	if b.subs[eventType] == nil {
		b.subs[eventType] = make(map[uint64]*subscriber)
	}
	b.subs[eventType][id] = sub

	return ch, unsubscribe
}

func (b *Bus) targets(evt any) []*subscriber {
	evtType := reflect.TypeOf(evt)

	b.mu.RLock()
	defer b.mu.RUnlock()

	var targets []*subscriber
	for subType, typeSubs := range b.subs {
		match := subType == evtType
		if !match && subType.Kind() == reflect.Interface {
			match = evtType.Implements(subType)
		}
		if !match {
			continue
		}
		for _, s := range typeSubs {
			targets = append(targets, s)
		}
	}
	return targets
}

// Offer delivers an event without blocking. Subscribers whose buffer is full
// lose their oldest pending event. Offer on a nil or closed bus does nothing.
func (b *Bus) Offer(evt any) {
	if b == nil || evt == nil || b.isClosed.Load() {
		return
	}
	for _, s := range b.targets(evt) {
		s.offer(evt)
	}
}

// Close closes the bus and all subscription channels.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.isClosed.Store(true)

		b.mu.Lock()
		var toClose []*subscriber
		for _, typeSubs := range b.subs {
			for _, s := range typeSubs {
				toClose = append(toClose, s)
			}
		}
		b.subs = make(map[reflect.Type]map[uint64]*subscriber)
		b.mu.Unlock()

		for _, s := range toClose {
			s.close()
		}
	})
}
