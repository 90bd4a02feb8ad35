// Package clock abstracts time access so polling loops can be driven
// deterministically in tests.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock supplies the current time and a cancellable sleep. The confirmation
// poller only ever touches time through this interface.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// System is the production clock backed by the runtime timer.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Sleep blocks for d or until ctx is done, returning the context error in
// the latter case.
func (System) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Manual is a test clock: Sleep never blocks, it just advances the reading.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	sleeps int
}

// NewManual creates a manual clock starting at the given instant.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	m.sleeps++
	return nil
}

// Advance moves the clock forward without counting as a sleep.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Sleeps reports how many times Sleep completed.
func (m *Manual) Sleeps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sleeps
}
