// Package engine provides the settlement economy core and the frame loop
// that drives it.
package engine

import (
	"context"
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// DefaultFrameInterval is the host frame period (30 frames per second).
const DefaultFrameInterval = time.Second / 30

// Command mutates the simulation on the engine goroutine.
type Command func(*Simulation) error

type request struct {
	ctx  context.Context
	cmd  Command
	done chan error
}

// Engine drives the simulation forward one frame at a time. It is the only
// goroutine that touches the Simulation; other goroutines submit commands
// and read published snapshots.
type Engine struct {
	Sim           *Simulation
	FrameInterval time.Duration

	speed    atomic.Uint64 // float64 bits; 1.0 = real-time, 0 = paused
	queue    chan request
	snapshot atomic.Pointer[Snapshot]
	frames   atomic.Uint64
	running  atomic.Bool
}

// NewEngine creates an engine for sim and publishes its initial snapshot.
func NewEngine(sim *Simulation, frameInterval time.Duration) *Engine {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	e := &Engine{
		Sim:           sim,
		FrameInterval: frameInterval,
		queue:         make(chan request, 64),
	}
	e.SetSpeed(1)
	e.publish()
	return e
}

// Speed returns the time multiplier.
func (e *Engine) Speed() float64 {
	return math.Float64frombits(e.speed.Load())
}

// SetSpeed sets the time multiplier. Negative values pause.
func (e *Engine) SetSpeed(v float64) {
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	e.speed.Store(math.Float64bits(v))
}

// Running reports whether Run is active.
func (e *Engine) Running() bool { return e.running.Load() }

// Frames returns the number of frames stepped.
func (e *Engine) Frames() uint64 { return e.frames.Load() }

// Snapshot returns the last published state. Never nil.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Run steps a frame every FrameInterval until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	defer e.running.Store(false)

	slog.Info("simulation engine started",
		"frame_interval", e.FrameInterval,
		"check_interval", e.Sim.opts.Scheduler.CheckInterval,
		"speed", e.Speed(),
	)

	ticker := time.NewTicker(e.FrameInterval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			e.reject(ctx.Err())
			slog.Info("simulation engine stopped", "cycle", e.Sim.sched.Cycle(), "frames", e.Frames())
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			e.Frame(dt)
		}
	}
}

// Frame applies queued commands, then advances the scheduler by dt scaled by
// the speed multiplier. A new snapshot is published when a command ran or a
// cycle completed.
func (e *Engine) Frame(dt time.Duration) *Report {
	applied := e.drain()

	var report *Report
	if scaled := time.Duration(float64(dt) * e.Speed()); scaled > 0 {
		report = e.Sim.Step(scaled)
	}
	e.frames.Add(1)

	if applied || report != nil {
		e.publish()
	}
	return report
}

// Submit queues cmd for the next frame and waits for its result. A command
// whose ctx is done before the frame reaches it is dropped unapplied.
func (e *Engine) Submit(ctx context.Context, cmd Command) error {
	req := request{ctx: ctx, cmd: cmd, done: make(chan error, 1)}
	select {
	case e.queue <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) drain() bool {
	applied := false
	for n := cap(e.queue); n > 0; n-- {
		select {
		case req := <-e.queue:
			if err := req.ctx.Err(); err != nil {
				req.done <- err
				continue
			}
			req.done <- req.cmd(e.Sim)
			applied = true
		default:
			return applied
		}
	}
	return applied
}

// reject fails every queued command.
func (e *Engine) reject(err error) {
	for {
		select {
		case req := <-e.queue:
			req.done <- err
		default:
			return
		}
	}
}

func (e *Engine) publish() {
	e.snapshot.Store(e.Sim.Snapshot())
}
