package middleware

import (
	"sync"
	"time"
)

// memoryWindow is the in-process fixed-window counter used when no Redis
// client is configured.  Counters live only in this process, so limits reset
// on restart and fragment across instances; the Redis window is preferred
// whenever available.
type memoryWindow struct {
	mu      sync.Mutex
	buckets map[string]windowBucket
	lastGC  time.Time
}

type windowBucket struct {
	count int
	start time.Time
}

func newMemoryWindow() *memoryWindow {
	return &memoryWindow{buckets: map[string]windowBucket{}, lastGC: time.Now().UTC()}
}

// Allow counts a hit against key and reports whether it fits in the window,
// how many requests remain, and how long until the window resets when the
// limit is hit.  Stale buckets are swept opportunistically.
func (l *memoryWindow) Allow(key string, limit int, window time.Duration) (bool, int, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	if now.Sub(l.lastGC) > time.Minute {
		for k, b := range l.buckets {
			if now.Sub(b.start) > 3*window {
				delete(l.buckets, k)
			}
		}
		l.lastGC = now
	}
	b, ok := l.buckets[key]
	if !ok || now.Sub(b.start) >= window {
		l.buckets[key] = windowBucket{count: 1, start: now}
		return true, limit - 1, 0
	}
	if b.count >= limit {
		return false, 0, window - now.Sub(b.start)
	}
	b.count++
	l.buckets[key] = b
	return true, limit - b.count, 0
}
