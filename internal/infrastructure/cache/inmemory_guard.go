// Package cache provides the in-flight guards that stop a console operation
// from running concurrently with itself.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/britrip/hotelier/internal/domain/shared"
)

// InMemoryGuard implements shared.InFlightGuard with a map of expiring keys.
// It only protects a single process.
type InMemoryGuard struct {
	mu        sync.Mutex
	held      map[string]time.Time
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryGuard creates a guard and starts its expiry sweep
func NewInMemoryGuard() *InMemoryGuard {
	g := &InMemoryGuard{
		held:     make(map[string]time.Time),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	g.wg.Add(1)
	go g.sweepLoop(time.Minute)
	return g
}

// Acquire implements shared.InFlightGuard
func (g *InMemoryGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if exp, ok := g.held[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.held[key] = now.Add(ttl)
	return true, nil
}

// Release implements shared.InFlightGuard
func (g *InMemoryGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	return nil
}

// Held implements shared.InFlightGuard
func (g *InMemoryGuard) Held(ctx context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	exp, ok := g.held[key]
	return ok && g.now().Before(exp), nil
}

// Close stops the sweep. Safe to call more than once.
func (g *InMemoryGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

// Size returns the number of tracked keys, expired ones included until the next sweep
func (g *InMemoryGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.held)
}

func (g *InMemoryGuard) sweepLoop(every time.Duration) {
	defer g.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

func (g *InMemoryGuard) sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	for k, exp := range g.held {
		if !now.Before(exp) {
			delete(g.held, k)
		}
	}
}

var _ shared.InFlightGuard = (*InMemoryGuard)(nil)
