package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether a caller identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a per-key token bucket kept in process memory.
// Counters are not shared between instances.
type MemoryLimiter struct {
	mu       sync.Mutex
	items    map[string]*limiterItem
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	stopOnce sync.Once
	stop     chan struct{}
}

type limiterItem struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter creates a limiter allowing rps requests per second with the given burst
func NewMemoryLimiter(rps float64, burst int) *MemoryLimiter {
	ml := &MemoryLimiter{
		items:   make(map[string]*limiterItem),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: time.Hour,
		stop:    make(chan struct{}),
	}

	// Start cleanup goroutine to drop idle callers
	go ml.cleanupIdle(5 * time.Minute)

	return ml
}

// Allow consumes one token for key
func (ml *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	item, exists := ml.items[key]
	if !exists {
		item = &limiterItem{limiter: rate.NewLimiter(ml.limit, ml.burst)}
		ml.items[key] = item
	}
	item.lastSeen = time.Now()

	return item.limiter.Allow(), nil
}

// Close stops the cleanup goroutine
func (ml *MemoryLimiter) Close() {
	ml.stopOnce.Do(func() { close(ml.stop) })
}

// cleanupIdle periodically removes callers not seen for idleTTL
func (ml *MemoryLimiter) cleanupIdle(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ml.stop:
			return
		case <-ticker.C:
			ml.evictIdle(time.Now())
		}
	}
}

func (ml *MemoryLimiter) evictIdle(now time.Time) {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	for key, item := range ml.items {
		if now.Sub(item.lastSeen) > ml.idleTTL {
			delete(ml.items, key)
		}
	}
}
