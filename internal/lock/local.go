package lock

import (
	"context"
	"sync"
	"time"
)

// Local is the single-process Locker used when no Redis is configured.
type Local struct {
	mu   sync.Mutex
	held map[string]localToken
	seq  uint64
	now  func() time.Time
}

type localToken struct {
	seq     uint64
	expires time.Time
}

func NewLocal() *Local {
	return &Local{
		held: make(map[string]localToken),
		now:  time.Now,
	}
}

func (l *Local) Acquire(_ context.Context, key string, ttl time.Duration) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if t, ok := l.held[key]; ok && now.Before(t.expires) {
		return nil, false, nil
	}

	l.seq++
	seq := l.seq

	l.held[key] = localToken{seq: seq, expires: now.Add(ttl)}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if t, ok := l.held[key]; ok && t.seq == seq {
				delete(l.held, key)
			}
		})
	}
	return release, true, nil
}
