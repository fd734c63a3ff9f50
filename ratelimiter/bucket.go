package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrWaitExceeded is returned when capacity would not be available within maxWait.
var ErrWaitExceeded = errors.New("rate limit wait exceeds max wait")

// Bucket is a token bucket refilled continuously over interval up to capacity.
type Bucket struct {
	mu         sync.Mutex
	capacity   int
	tokens     float64
	interval   time.Duration
	lastRefill time.Time
	now        func() time.Time
}

// NewBucket creates a bucket holding initial tokens.
func NewBucket(capacity, initial int, interval time.Duration) *Bucket {
	return &Bucket{
		capacity:   capacity,
		tokens:     float64(initial),
		interval:   interval,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// refill must be called with mu held.
func (b *Bucket) refill() {
	now := b.now()
	elapsed := now.Sub(b.lastRefill)
	if elapsed <= 0 {
		return
	}
	b.tokens += float64(b.capacity) * float64(elapsed) / float64(b.interval)
	if b.tokens > float64(b.capacity) {
		b.tokens = float64(b.capacity)
	}
	b.lastRefill = now
}

// TryConsume takes n tokens if they are available.
func (b *Bucket) TryConsume(n int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	if float64(n) > b.tokens {
		return false
	}
	b.tokens -= float64(n)
	return true
}

// Remaining returns the whole tokens currently available.
func (b *Bucket) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	return int(b.tokens)
}

// TimeUntilAvailable returns how long until n tokens are available.
func (b *Bucket) TimeUntilAvailable(n int) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refill()
	missing := float64(n) - b.tokens
	if missing <= 0 || b.capacity <= 0 {
		return 0
	}
	return time.Duration(missing * float64(b.interval) / float64(b.capacity))
}

// RateLimiter combines a token budget and a request budget per minute.
type RateLimiter struct {
	Tokens   *Bucket
	Requests *Bucket
}

// Ensure RateLimiter implements Limiter.
var _ Limiter = (*RateLimiter)(nil)

// New creates a RateLimiter with full buckets. A zero limit disables that budget.
func New(tokensPerMinute, requestsPerMinute int) *RateLimiter {
	rl := &RateLimiter{}
	if tokensPerMinute > 0 {
		rl.Tokens = NewBucket(tokensPerMinute, tokensPerMinute, time.Minute)
	}
	if requestsPerMinute > 0 {
		rl.Requests = NewBucket(requestsPerMinute, requestsPerMinute, time.Minute)
	}
	return rl
}

// TryConsume takes tokens and one request, or nothing.
func (rl *RateLimiter) TryConsume(tokens int) bool {
	if rl.Tokens != nil && !rl.Tokens.TryConsume(tokens) {
		return false
	}
	if rl.Requests != nil && !rl.Requests.TryConsume(1) {
		if rl.Tokens != nil {
			rl.Tokens.give(tokens)
		}
		return false
	}
	return true
}

// TimeUntilAvailable returns the longer of the token and request waits.
func (rl *RateLimiter) TimeUntilAvailable(tokens int) time.Duration {
	var wait time.Duration
	if rl.Tokens != nil {
		wait = rl.Tokens.TimeUntilAvailable(tokens)
	}
	if rl.Requests != nil {
		wait = max(wait, rl.Requests.TimeUntilAvailable(1))
	}
	return wait
}

// WaitAndConsume blocks until capacity is available, up to maxWait (zero means no limit).
func (rl *RateLimiter) WaitAndConsume(ctx context.Context, tokens int, maxWait time.Duration) error {
	for {
		if rl.TryConsume(tokens) {
			return nil
		}

		wait := rl.TimeUntilAvailable(tokens)
		if wait <= 0 {
			wait = 10 * time.Millisecond
		}
		if maxWait > 0 && wait > maxWait {
			return fmt.Errorf("%w: need %v, max %v", ErrWaitExceeded, wait, maxWait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (b *Bucket) give(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = min(b.tokens+float64(n), float64(b.capacity))
}
