package ecs

// System represents a behavior that runs once per frame.
// Systems hold whatever state they need between frames; the scheduler only
// calls Execute, in registration order.
type System interface {
	Execute(frame *UpdateFrame)
}

// SystemFunc adapts a plain function to the System interface.
type SystemFunc func(frame *UpdateFrame)

func (f SystemFunc) Execute(frame *UpdateFrame) {
	f(frame)
}
