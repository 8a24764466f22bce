package ecs

import "time"

type UpdateFrame struct {
	// Now is the clock reading this frame was started with.
	Now time.Duration
	// DeltaTime is the clamped time since the previous frame, in seconds.
	DeltaTime float64
	// Number counts frames from 1.
	Number   uint64
	Commands *Commands
}

func newUpdateFrame(now time.Duration, dt float64, number uint64, commands *Commands) *UpdateFrame {
	return &UpdateFrame{
		Now:       now,
		DeltaTime: dt,
		Number:    number,
		Commands:  commands,
	}
}
