package lock

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// LocalLocker serializes keys within one process. Each key holds a
// one-slot semaphore that is dropped once nobody holds or waits on it.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	sem     *semaphore.Weighted
	waiters int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

// Lock waits for the key or for ctx to end.
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{sem: semaphore.NewWeighted(1)}
		l.slots[key] = s
	}
	s.waiters++
	l.mu.Unlock()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		l.release(key, s, false)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, s, true) })
	}, nil
}

func (l *LocalLocker) release(key string, s *slot, held bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if held {
		s.sem.Release(1)
	}
	s.waiters--
	if s.waiters == 0 {
		delete(l.slots, key)
	}
}

// size reports the number of tracked keys.
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
