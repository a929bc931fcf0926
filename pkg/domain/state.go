package domain

// Status defines the lifecycle phase of a runtime unit.
type Status string

const (
	StatusCreated      Status = "created"      // Constructed, loop not started
	StatusInitializing Status = "initializing" // Running the one-shot setup
	StatusRunning      Status = "running"      // Driven by the state machine
	StatusInterrupting Status = "interrupting" // Stop observed, mailbox closed, draining
	StatusFinalizing   Status = "finalizing"   // Producing the output
	StatusTerminated   Status = "terminated"   // Loop exited
)

// IsFinal reports whether no further transitions can happen.
func (s Status) IsFinal() bool {
	return s == StatusTerminated
}
