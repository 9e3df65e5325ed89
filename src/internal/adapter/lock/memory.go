package lock

import (
	"context"
	"sync"

	"github.com/api-sage/ledger-loan-service/src/internal/domain"
)

var _ domain.Locker = (*MemoryLocker)(nil)

// MemoryLocker serialises operations within one process. Idle keys are released
// so the table only holds keys that are locked or awaited.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	sem  chan struct{}
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]*slot)}
}

func (l *MemoryLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	ordered := orderedKeys(keys)
	held := make([]string, 0, len(ordered))

	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.release(held[i])
		}
	}

	for _, key := range ordered {
		s := l.acquireSlot(key)
		select {
		case s.sem <- struct{}{}:
			held = append(held, key)
		case <-ctx.Done():
			l.dropSlot(key)
			release()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

func (l *MemoryLocker) acquireSlot(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = &slot{sem: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *MemoryLocker) release(key string) {
	l.mu.Lock()
	s := l.slots[key]
	l.mu.Unlock()

	<-s.sem
	l.dropSlot(key)
}

func (l *MemoryLocker) dropSlot(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := l.slots[key]
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
