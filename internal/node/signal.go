package node

// Signal is a fire-and-forget notification with ordered subscribers. It is
// not safe for concurrent use; graphs are mutated from one goroutine.
type Signal[T any] struct {
	next int
	subs []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it.
func (s *Signal[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.next++
	id := s.next
	s.subs = append(s.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit calls every subscriber in subscription order.
func (s *Signal[T]) Emit(v T) {
	subs := append([]subscriber[T](nil), s.subs...)
	for _, sub := range subs {
		sub.fn(v)
	}
}

// Len returns the number of subscribers.
func (s *Signal[T]) Len() int {
	return len(s.subs)
}
