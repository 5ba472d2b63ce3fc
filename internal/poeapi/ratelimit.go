package poeapi

import (
	"context"
	"sync"
	"time"
)

// tokenBucket paces outgoing requests. Capacity bounds the burst; tokens
// refill continuously at refillPerSec.
type tokenBucket struct {
	mu           sync.Mutex
	tokens       float64
	capacity     float64
	refillPerSec float64
	lastRefill   time.Time
}

func newTokenBucket(capacity, refillPerSec float64) *tokenBucket {
	return &tokenBucket{
		tokens:       capacity,
		capacity:     capacity,
		refillPerSec: refillPerSec,
		lastRefill:   time.Now(),
	}
}

func (b *tokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens += elapsed * b.refillPerSec
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now
}

// tryAcquire takes a token if one is available.
func (b *tokenBucket) tryAcquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// timeUntilAvailable reports how long until the next token exists.
func (b *tokenBucket) timeUntilAvailable() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	if b.tokens >= 1 {
		return 0
	}
	missing := 1 - b.tokens
	return time.Duration(missing / b.refillPerSec * float64(time.Second))
}

// Wait blocks until a token is acquired or the context ends.
func (b *tokenBucket) Wait(ctx context.Context) error {
	for {
		if b.tryAcquire() {
			return nil
		}
		wait := b.timeUntilAvailable()
		if wait <= 0 {
			continue
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
