// Package engine provides the simulation step and the loop that drives it.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Engine drives a Simulation forward and guards it for concurrent readers.
// Steps always run to completion under the write lock.
type Engine struct {
	Interval time.Duration // Base step interval at speed 1

	mu  sync.RWMutex
	sim *Simulation

	speedMu sync.Mutex
	speed   float64 // Multiplier: 1.0 = one step per Interval, 0 = paused

	running  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once

	onStep []func(StepSummary)
}

// NewEngine creates an engine for sim with default settings.
func NewEngine(sim *Simulation) *Engine {
	return &Engine{
		Interval: time.Second,
		sim:      sim,
		speed:    1.0,
		stop:     make(chan struct{}),
	}
}

// OnStep registers a callback run after every step, outside the lock.
// Register callbacks before calling Run.
func (e *Engine) OnStep(fn func(StepSummary)) {
	e.onStep = append(e.onStep, fn)
}

// Step advances the simulation by one tick.
func (e *Engine) Step() StepSummary {
	e.mu.Lock()
	summary := e.sim.Step()
	e.mu.Unlock()

	for _, fn := range e.onStep {
		fn(summary)
	}
	return summary
}

// View runs fn with read access to the simulation.
func (e *Engine) View(fn func(*Simulation)) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn(e.sim)
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.speedMu.Lock()
	defer e.speedMu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. Zero pauses the loop.
func (e *Engine) SetSpeed(v float64) error {
	if v < 0 {
		return fmt.Errorf("speed must be >= 0, got %v", v)
	}
	e.speedMu.Lock()
	e.speed = v
	e.speedMu.Unlock()
	return nil
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Run steps the simulation until ctx is cancelled or Stop is called.
// Returns ctx.Err() on cancellation and nil after Stop.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return fmt.Errorf("engine already running")
	}
	defer e.running.Store(false)

	slog.Info("simulation engine started", "speed", e.Speed(), "interval", e.Interval)
	defer slog.Info("simulation engine stopped")

	for {
		wait := 100 * time.Millisecond // paused poll
		if speed := e.Speed(); speed > 0 {
			start := time.Now()
			e.Step()
			target := time.Duration(float64(e.Interval) / speed)
			wait = target - time.Since(start)
		}

		if wait <= 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-e.stop:
				return nil
			default:
			}
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-e.stop:
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// Stop halts the loop started by Run. Safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
}
