package kernel

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"

	"github.com/scusemua/notebook-commands/common/metrics"
	"github.com/scusemua/notebook-commands/common/notebook"
	"github.com/scusemua/notebook-commands/common/telemetry"
	"github.com/scusemua/notebook-commands/common/utils/hashmap"
)

var (
	ErrNoControllerAssociated = errors.New("no controller associated with the notebook")
)

// Guard ensures that at most one interrupt or restart runs at a time for each kernel.
//
// Requests made while an operation is in flight for the same kernel are coalesced into it,
// whatever operation they asked for.
type Guard struct {
	log logger.Logger

	kernels     Provider
	controllers ControllerRegistry
	connector   Connector
	display     ErrorDisplay
	metrics     *metrics.CommandMetrics

	// pending maps kernel IDs to the in-flight operation of that kernel.
	pending    *hashmap.ConcurrentMap[string, *Pending]
	generation atomic.Uint64
}

func NewGuard(kernels Provider, controllers ControllerRegistry, connector Connector, display ErrorDisplay) *Guard {
	guard := &Guard{
		kernels:     kernels,
		controllers: controllers,
		connector:   connector,
		display:     display,
		pending:     hashmap.NewConcurrentMap[*Pending](0),
	}
	config.InitLogger(&guard.log, guard)

	return guard
}

// SetMetrics makes the guard record started, coalesced and finished operations.
func (g *Guard) SetMetrics(m *metrics.CommandMetrics) {
	g.metrics = m
}

// Request starts op on the kernel, or returns the operation already in flight for it.
//
// The operation runs in the background and is not cancelled when ctx is. Its failure is displayed
// in the cell that was executing when the request was made or, if there was none, as a
// notification.
func (g *Guard) Request(ctx context.Context, kernel Kernel, op Operation) *Pending {
	candidate := newPending(kernel.ID(), op, g.generation.Add(1))

	current, loaded := g.pending.LoadOrStore(kernel.ID(), candidate)
	if loaded {
		g.log.Debug("Kernel %s already has a pending %s. Coalescing requested %s into it.",
			kernel.ID(), current.Operation(), op)
		g.metrics.KernelOperationCoalesced(current.Operation().String())
		return current
	}

	var executing *notebook.Cell
	if execution := g.kernels.Execution(kernel); execution != nil {
		if cells := execution.PendingCells(); len(cells) > 0 {
			executing = cells[0]
		}
	}

	g.log.Debug("Starting %s of kernel %s (language=%s).", op, kernel.ID(), telemetry.SafeLanguage(kernel.Language()))
	g.metrics.KernelOperationStarted(op.String())

	go g.run(context.WithoutCancel(ctx), kernel, candidate, executing)

	return candidate
}

// InFlight returns the operation currently in flight for the kernel with the given ID.
func (g *Guard) InFlight(kernelID string) (*Pending, bool) {
	return g.pending.Load(kernelID)
}

func (g *Guard) run(ctx context.Context, kernel Kernel, pending *Pending, executing *notebook.Cell) {
	defer func() {
		g.clear(pending)
		pending.settle()
	}()

	st := time.Now()
	err := g.perform(ctx, kernel, pending.Operation())
	g.metrics.KernelOperationFinished(pending.Operation().String(), time.Since(st), err)
	if err == nil {
		g.log.Debug("Finished %s of kernel %s.", pending.Operation(), kernel.ID())
		return
	}

	g.log.Warn("Failed to %s kernel %s: %v", pending.Operation(), kernel.ID(), err)

	if executing != nil {
		if displayErr := g.display.DisplayErrorInCell(ctx, kernel, executing, pending.Operation(), err); displayErr != nil {
			g.log.Error("Could not display %s failure of kernel %s in cell: %v", pending.Operation(), kernel.ID(), displayErr)
		}
		return
	}

	g.display.ShowErrorMessage(ctx, FailureMessage(pending.Operation(), err))
}

func (g *Guard) perform(ctx context.Context, kernel Kernel, op Operation) error {
	controller, ok := g.controllers.Selected(kernel.Notebook())
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoControllerAssociated, kernel.Notebook().URI())
	}

	return g.connector.Run(ctx, controller, kernel, op, DisplayOptions{Disable: false})
}

// clear removes the record of the kernel's in-flight operation, provided it is still the given one.
func (g *Guard) clear(pending *Pending) bool {
	return g.pending.RemoveIf(pending.KernelID(), func(current *Pending) bool {
		return current.generation == pending.generation
	})
}
