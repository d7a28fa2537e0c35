package bot

// RunGuard is a single-slot, channel-based guard around cycle execution.
// A trigger that cannot acquire the slot is dropped, never queued.
type RunGuard struct {
	ch chan struct{}
}

func NewRunGuard() *RunGuard {
	return &RunGuard{ch: make(chan struct{}, 1)}
}

// TryAcquire attempts to take the slot without blocking.
// Returns true if the slot was taken.
func (g *RunGuard) TryAcquire() bool {
	select {
	case g.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release frees the slot. Must only be called after a successful TryAcquire.
func (g *RunGuard) Release() {
	<-g.ch
}

// InProgress reports whether a cycle currently holds the slot. Consumed by
// the health endpoint.
func (g *RunGuard) InProgress() bool {
	return len(g.ch) > 0
}
