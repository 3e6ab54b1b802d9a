package kernel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Scusemua/go-utils/promise"
)

// Pending is the in-flight result of a kernel operation.
//
// A Pending settles once the operation has finished, successfully or not. It carries no error:
// failures have already been shown to the user by the time it settles.
type Pending struct {
	kernelID   string
	op         Operation
	generation uint64

	promise    *promise.ChannelPromise
	settled    chan struct{} // Closed once the operation has settled.
	settleOnce sync.Once
}

func newPending(kernelID string, op Operation, generation uint64) *Pending {
	return &Pending{
		kernelID:   kernelID,
		op:         op,
		generation: generation,
		promise:    promise.NewChannelPromise(),
		settled:    make(chan struct{}),
	}
}

// KernelID returns the ID of the kernel the operation targets.
func (p *Pending) KernelID() string {
	return p.kernelID
}

// Operation returns the operation that is actually running, which is the one requested first.
func (p *Pending) Operation() Operation {
	return p.op
}

// Wait blocks until the operation has settled.
func (p *Pending) Wait() {
	p.promise.Wait()
}

// WaitTimeout waits at most d for the operation to settle and reports whether it did.
func (p *Pending) WaitTimeout(d time.Duration) bool {
	if p.promise.IsResolved() {
		return true
	}
	if d <= 0 {
		return false
	}
	return p.promise.Timeout(d) == nil
}

// WaitContext waits for the operation to settle or for ctx to be done, whichever happens first.
// Giving up on the wait does not cancel the operation.
func (p *Pending) WaitContext(ctx context.Context) error {
	if p.Settled() {
		return nil
	}

	select {
	case <-p.settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pending) Settled() bool {
	return p.promise.IsResolved()
}

func (p *Pending) String() string {
	return fmt.Sprintf("Pending[Kernel=%s, Op=%s, Gen=%d, Settled=%v]", p.kernelID, p.op, p.generation, p.Settled())
}

func (p *Pending) settle() {
	p.settleOnce.Do(func() {
		_, _ = p.promise.Resolve(nil)
		close(p.settled)
	})
}
