package generator

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// minIdle is the shortest time a viewer's bucket is kept after last use
const minIdle = 10 * time.Minute

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// keyedLimiter hands out one token bucket per viewer. Buckets idle for
// longer than it takes them to refill are dropped, so a returning viewer
// gets a fresh bucket equal to the one it would have had.
type keyedLimiter struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func newKeyedLimiter(rps float64, burst int) *keyedLimiter {
	if burst < 1 {
		burst = 1
	}
	idle := minIdle
	if rps > 0 {
		if refill := time.Duration(float64(burst) / rps * float64(time.Second)); refill > idle {
			idle = refill
		}
	}
	return &keyedLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(rps),
		burst:   burst,
		idle:    idle,
		now:     time.Now,
	}
}

func (k *keyedLimiter) allow(key string) bool {
	if k.limit <= 0 {
		return true
	}
	now := k.now()
	return k.get(key, now).AllowN(now, 1)
}

func (k *keyedLimiter) get(key string, now time.Time) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	if now.Sub(k.lastSweep) >= k.idle {
		k.sweep(now)
	}
	e, ok := k.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = e
	}
	e.seen = now
	return e.lim
}

// sweep drops idle buckets; callers hold mu
func (k *keyedLimiter) sweep(now time.Time) {
	for key, e := range k.entries {
		if now.Sub(e.seen) >= k.idle {
			delete(k.entries, key)
		}
	}
	k.lastSweep = now
}

func (k *keyedLimiter) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
