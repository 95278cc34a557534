package presence

import "sync"

const subscriberBuffer = 16

// Subscription delivers a State on every change until Close is called.
// Slow consumers miss updates rather than stalling the write path.
type Subscription struct {
	C      <-chan State
	cancel func()
}

func (s *Subscription) Close() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel()
}

type hub struct {
	mu   sync.Mutex
	subs map[chan State]struct{}
}

func newHub() *hub {
	return &hub{subs: map[chan State]struct{}{}}
}

func (h *hub) subscribe() *Subscription {
	ch := make(chan State, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	var once sync.Once
	return &Subscription{
		C: ch,
		cancel: func() {
			once.Do(func() {
				h.mu.Lock()
				delete(h.subs, ch)
				h.mu.Unlock()
				close(ch)
			})
		},
	}
}

func (h *hub) broadcast(st State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- st:
		default:
		}
	}
}
