package kernel

// ClearPending exposes the compare-and-clear of a settled record to tests.
func ClearPending(g *Guard, pending *Pending) bool {
	return g.clear(pending)
}
