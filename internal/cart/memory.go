package cart

import (
	"context"
	"fmt"
	"sync"
)

type MemoryStore struct {
	mu    sync.RWMutex
	carts map[Key][]string

	locksMu sync.Mutex
	locks   map[Key]*keyLock
}

// keyLock is a one slot semaphore so waiting can be cancelled. refs counts
// holders and waiters; the entry is dropped when it reaches zero.
type keyLock struct {
	sem  chan struct{}
	refs int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[Key][]string),
		locks: make(map[Key]*keyLock),
	}
}

func (s *MemoryStore) Read(_ context.Context, key Key) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := s.carts[key]
	out := make([]string, len(names))
	copy(out, names)

	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, key Key, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[key] = append(s.carts[key], name)

	return nil
}

func (s *MemoryStore) PopLast(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := s.carts[key]
	switch len(names) {
	case 0:
	case 1:
		delete(s.carts, key)
	default:
		s.carts[key] = names[:len(names)-1]
	}

	return nil
}

func (s *MemoryStore) Clear(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, key)

	return nil
}

func (s *MemoryStore) TrimFront(_ context.Context, key Key, n int) error {
	if n <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	names := s.carts[key]
	if n >= len(names) {
		delete(s.carts, key)
		return nil
	}
	s.carts[key] = append([]string(nil), names[n:]...)

	return nil
}

func (s *MemoryStore) Lock(ctx context.Context, key Key) (func(), error) {
	s.locksMu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &keyLock{sem: make(chan struct{}, 1)}
		s.locks[key] = l
	}
	l.refs++
	s.locksMu.Unlock()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		s.release(key, l)
		return nil, fmt.Errorf("%w: %v", ErrBusy, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.sem
			s.release(key, l)
		})
	}, nil
}

func (s *MemoryStore) release(key Key, l *keyLock) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(s.locks, key)
	}
}
