package auth

import "sync"

// broadcaster fans StateChange events out to subscribers. Sends are
// non-blocking; a subscriber that stops draining misses events rather
// than stalling sign-in handling.
type broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan StateChange
	next int
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan StateChange)}
}

func (b *broadcaster) subscribe() (<-chan StateChange, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan StateChange, 8)
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

func (b *broadcaster) publish(change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
}
