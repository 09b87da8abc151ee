package ui

import (
	"sync"
)

// Store holds the current State and notifies subscribers after every
// Dispatch. It is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	state  State
	subs   map[int]func(State)
	nextID int

	// states reduced but not yet delivered, oldest first
	queue      []State
	delivering bool
}

func NewStore(initial State) *Store {
	return &Store{state: initial, subs: make(map[int]func(State))}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces a into the current state and delivers the result to every
// subscriber. Subscribers see states in the order they were reduced, one at a
// time. Whichever Dispatch finds no delivery in progress delivers the queue;
// the others return once their state is queued. Subscribers may Dispatch.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	s.queue = append(s.queue, s.state)
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true

	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		subs := make([]func(State), 0, len(s.subs))
		for _, fn := range s.subs {
			subs = append(subs, fn)
		}
		s.mu.Unlock()
		for _, fn := range subs {
			fn(next)
		}
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

// Subscribe registers fn to run after every Dispatch. The returned function
// removes it; calling it more than once is a no-op.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// WatchSession dispatches SessionChanged for every value received from
// sessions, which moves the page between login and dashboard. A nil value
// means signed out. stop ends the watch and waits for it to exit.
func (s *Store) WatchSession(sessions <-chan *Session) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		for {
			select {
			case <-done:
				return
			case sess, ok := <-sessions:
				if !ok {
					return
				}
				s.Dispatch(SessionChanged{Session: sess})
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-exited
	}
}
