package ratelimiter

import (
	"sync"
	"time"
)

type Config struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
}

type window struct {
	start time.Time
	count int
}

// FixedWindowRateLimiter counts requests per client IP in fixed time frames.
// Windows reset lazily on the next request after the frame elapses; a pruner
// drops clients that have gone quiet.
type FixedWindowRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	frame   time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

func NewFixedWindowLimiter(limit int, frame time.Duration) *FixedWindowRateLimiter {
	rl := &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		frame:   frame,
		done:    make(chan struct{}),
	}
	go rl.prune()
	return rl
}

// Stop terminates the pruner goroutine. Allow keeps working; idle clients
// just stop being collected. Safe to call twice.
func (rl *FixedWindowRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// Allow reports whether the client may proceed; when denied it also returns
// how long until the current window rolls over.
func (rl *FixedWindowRateLimiter) Allow(ip string) (bool, time.Duration) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[ip]
	if !ok || now.Sub(w.start) >= rl.frame {
		rl.clients[ip] = &window{start: now, count: 1}
		return true, 0
	}

	if w.count < rl.limit {
		w.count++
		return true, 0
	}

	return false, w.start.Add(rl.frame).Sub(now)
}

func (rl *FixedWindowRateLimiter) prune() {
	ticker := time.NewTicker(rl.frame)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-2 * rl.frame)
			rl.mu.Lock()
			for ip, w := range rl.clients {
				if w.start.Before(cutoff) {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}
