package viewstate

import "sync"

// Store owns one State and notifies observers after every dispatch.
// Construct one per application session and pass it where needed.
type Store struct {
	// dispatch serializes Dispatch so observers see states in order.
	dispatch sync.Mutex

	mu        sync.RWMutex
	state     State
	observers map[int]func(State)
	nextID    int
}

func New() *Store {
	return &Store{observers: make(map[int]func(State))}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch reduces a into the state, notifies observers, and returns the
// new state. Observers run on the caller's goroutine and must not
// dispatch.
func (s *Store) Dispatch(a Action) State {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	fns := make([]func(State), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
	return next
}

// Subscribe registers fn for every future state. The returned func
// removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}
