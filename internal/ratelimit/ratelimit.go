// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit enforces a minimum spacing between calls to each
// external API. Each API identity gets its own bucket; waiting on one
// identity never blocks another.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Well-known API identities.
const (
	Generation = "generation"
	Search     = "search"
)

// Limiter spaces out calls per API identity. Concurrent callers on the same
// identity serialize through the identity's token bucket, so the emitted
// call stream honors the spacing between every consecutive pair.
type Limiter struct {
	mu       sync.Mutex
	spacing  map[string]time.Duration
	buckets  map[string]*rate.Limiter
	lastCall map[string]time.Time
}

// New creates a Limiter with the given per-identity minimum spacing.
// Identities not present in the map are never delayed.
func New(spacing map[string]time.Duration) *Limiter {
	s := make(map[string]time.Duration, len(spacing))
	for id, d := range spacing {
		s[id] = d
	}
	return &Limiter{
		spacing:  s,
		buckets:  make(map[string]*rate.Limiter),
		lastCall: make(map[string]time.Time),
	}
}

// Wait blocks until a call on the given identity is permitted, then records
// the call time. A zero or unconfigured spacing returns immediately. The
// context cancels a pending wait.
func (l *Limiter) Wait(ctx context.Context, identity string) error {
	bucket := l.bucket(identity)
	if bucket != nil {
		if err := bucket.Wait(ctx); err != nil {
			return err
		}
	}

	l.mu.Lock()
	l.lastCall[identity] = time.Now()
	l.mu.Unlock()
	return nil
}

// bucket returns the identity's token bucket, creating it on first use.
// Returns nil for identities with no configured spacing.
func (l *Limiter) bucket(identity string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets[identity]; ok {
		return b
	}
	d := l.spacing[identity]
	if d <= 0 {
		return nil
	}
	// Burst 1 makes the bucket a pure spacing gate: one permit, refilled
	// every d.
	b := rate.NewLimiter(rate.Every(d), 1)
	l.buckets[identity] = b
	return b
}

// LastCall returns the time of the most recent permitted call on identity,
// or the zero time if the identity has never been used.
func (l *Limiter) LastCall(identity string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastCall[identity]
}
