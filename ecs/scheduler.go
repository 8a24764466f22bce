package ecs

import (
	"context"
	"reflect"
	"time"
)

// MaxDeltaTime caps the simulated time of a single frame, in seconds.
// Long pauses (a backgrounded window, a debugger stop) advance the simulation
// by at most this much so entities never jump.
const MaxDeltaTime = 1.0

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Frames          uint64
	LastFrame       time.Duration
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// Hooks bracket every frame. Either function may be nil.
type Hooks struct {
	Begin func(frame *UpdateFrame)
	End   func(frame *UpdateFrame)
}

// Scheduler is the frame driver: it manages and executes systems in order.
type Scheduler struct {
	clock       Clock
	despawner   Despawner
	systems     []System
	systemStats []*systemStatsInternal
	hooks       Hooks
	commands    *Commands

	lastNow   time.Duration
	started   bool
	frames    uint64
	lastFrame time.Duration
}

// NewScheduler creates a scheduler reading time from clock. Deferred despawns
// queued by systems are applied to despawner, which may be nil.
func NewScheduler(clock Clock, despawner Despawner) *Scheduler {
	if clock == nil {
		panic("scheduler requires a clock")
	}
	return &Scheduler{
		clock:     clock,
		despawner: despawner,
		systems:   make([]System, 0),
		commands:  newCommands(),
	}
}

// Register adds a system to the end of the execution order.
func (s *Scheduler) Register(system System) {
	s.systems = append(s.systems, system)

	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}

	s.systemStats = append(s.systemStats, &systemStatsInternal{
		name:        systemType.Name(),
		minDuration: time.Duration(1<<63 - 1),
	})
}

// SetHooks installs frame begin/end instrumentation.
func (s *Scheduler) SetHooks(hooks Hooks) {
	s.hooks = hooks
}

// Clock returns the scheduler's time source.
func (s *Scheduler) Clock() Clock {
	return s.clock
}

// ClampDelta converts the time between two frames into seconds, clamped to [0, MaxDeltaTime].
func ClampDelta(last, now time.Duration) float64 {
	dt := (now - last).Seconds()
	if dt < 0 {
		return 0
	}
	if dt > MaxDeltaTime {
		return MaxDeltaTime
	}
	return dt
}

// Once executes all registered systems for one frame started at now.
// The first frame always has a zero delta.
func (s *Scheduler) Once(now time.Duration) {
	dt := 0.0
	if s.started {
		dt = ClampDelta(s.lastNow, now)
	}
	if !s.started || now > s.lastNow {
		s.lastNow = now
	}
	s.started = true
	s.frames++

	frameStart := time.Now()
	frame := newUpdateFrame(now, dt, s.frames, s.commands)

	if s.hooks.Begin != nil {
		s.hooks.Begin(frame)
	}

	for i, system := range s.systems {
		start := time.Now()
		system.Execute(frame)
		duration := time.Since(start)

		stats := s.systemStats[i]
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}

	frame.Commands.Flush(s.despawner)

	if s.hooks.End != nil {
		s.hooks.End(frame)
	}

	s.lastFrame = time.Since(frameStart)
}

// Step runs one frame at the clock's current time.
func (s *Scheduler) Step() {
	s.Once(s.clock.Now())
}

// Run executes frames at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Step()
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Frames:      s.frames,
		LastFrame:   s.lastFrame,
		Systems:     make([]SystemStats, len(s.systemStats)),
	}

	var totalExecs int64
	for i, internal := range s.systemStats {
		avgDuration := time.Duration(0)
		minDuration := internal.minDuration
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		} else {
			minDuration = 0
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
