package host

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Scusemua/go-utils/config"
	"github.com/Scusemua/go-utils/logger"

	"github.com/scusemua/notebook-commands/common/kernel"
	"github.com/scusemua/notebook-commands/common/notebook"
	"github.com/scusemua/notebook-commands/common/utils/hashmap"
	"github.com/scusemua/notebook-commands/extension/internal/jupyterapi"
)

// jupyterKernel is the kernel of a notebook's Jupyter session.
type jupyterKernel struct {
	id             string
	kernelSpecName string
	language       string
	doc            *notebook.Document
}

func (k *jupyterKernel) ID() string {
	return k.id
}

func (k *jupyterKernel) Notebook() *notebook.Document {
	return k.doc
}

func (k *jupyterKernel) Language() string {
	return k.language
}

func (k *jupyterKernel) String() string {
	return fmt.Sprintf("Kernel[ID=%s, Spec=%s, Notebook=%s]", k.id, k.kernelSpecName, k.doc.URI())
}

// CellExecution tracks the cells queued on a kernel. The first pending cell is the one executing.
type CellExecution struct {
	log logger.Logger

	kernelID string

	mu      sync.Mutex
	pending []*notebook.Cell
	// cancelRun cancels the cell run holding running, if any.
	cancelRun context.CancelFunc

	// running serializes the cell runs on the kernel.
	running sync.Mutex
}

func newCellExecution(kernelID string) *CellExecution {
	return &CellExecution{
		log:      config.GetLogger(fmt.Sprintf("CellExecution %s ", kernelID)),
		kernelID: kernelID,
	}
}

func (e *CellExecution) PendingCells() []*notebook.Cell {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.pending)
}

// EndCell removes the cell from the queue. Ending a cell that is not pending has no effect.
func (e *CellExecution) EndCell(cell *notebook.Cell, success bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	index := slices.Index(e.pending, cell)
	if index < 0 {
		return
	}
	e.pending = slices.Delete(e.pending, index, index+1)

	e.log.Debug("Ended execution of cell %d of \"%s\" (success=%v). %d cell(s) remain queued.",
		cell.Document().IndexOf(cell), cell.Document().URI(), success, len(e.pending))
}

// IsPending returns true if the cell is queued or executing.
func (e *CellExecution) IsPending(cell *notebook.Cell) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Contains(e.pending, cell)
}

// enqueue queues the cells that are not already pending and returns them.
func (e *CellExecution) enqueue(cells ...*notebook.Cell) []*notebook.Cell {
	e.mu.Lock()
	defer e.mu.Unlock()

	queued := make([]*notebook.Cell, 0, len(cells))
	for _, cell := range cells {
		if slices.Contains(e.pending, cell) {
			continue
		}
		e.pending = append(e.pending, cell)
		queued = append(queued, cell)
	}
	return queued
}

// startRun returns the context of a cell run, which endAll cancels. The returned function must
// be called once the run is over.
func (e *CellExecution) startRun(ctx context.Context) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	e.cancelRun = cancel
	e.mu.Unlock()

	return runCtx, func() {
		e.mu.Lock()
		e.cancelRun = nil
		e.mu.Unlock()
		cancel()
	}
}

// endAll ends every pending cell unsuccessfully and cancels the run in progress.
func (e *CellExecution) endAll() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancelRun != nil {
		e.cancelRun()
	}

	ended := len(e.pending)
	e.pending = nil
	return ended
}

// KernelProvider resolves the kernel of a notebook through the sessions of the Jupyter Server.
type KernelProvider struct {
	log logger.Logger

	client      *jupyterapi.Client
	controllers *ControllerRegistry
	timeout     time.Duration

	kernels    *hashmap.ConcurrentMap[string, *jupyterKernel]
	executions *hashmap.ConcurrentMap[string, *CellExecution]
}

func NewKernelProvider(client *jupyterapi.Client, controllers *ControllerRegistry, timeout time.Duration) *KernelProvider {
	provider := &KernelProvider{
		client:      client,
		controllers: controllers,
		timeout:     timeout,
		kernels:     hashmap.NewConcurrentMap[*jupyterKernel](0),
		executions:  hashmap.NewConcurrentMap[*CellExecution](0),
	}
	config.InitLogger(&provider.log, provider)

	return provider
}

func (p *KernelProvider) Get(doc *notebook.Document) (kernel.Kernel, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	session, ok, err := p.client.SessionForPath(ctx, doc.URI())
	if err != nil {
		p.log.Error("Failed to look up the session of \"%s\": %v", doc.URI(), err)
		return nil, false
	}
	if !ok || session.Kernel == nil {
		return nil, false
	}

	if existing, loaded := p.kernels.Load(session.Kernel.ID); loaded && existing.doc == doc {
		return existing, true
	}

	language := notebook.PreferredLanguage(doc.Metadata())
	if controller, ok := p.controllers.Lookup(session.Kernel.Name); ok && controller.Language != "" {
		language = controller.Language
	}

	k := &jupyterKernel{
		id:             session.Kernel.ID,
		kernelSpecName: session.Kernel.Name,
		language:       language,
		doc:            doc,
	}
	p.kernels.Store(k.id, k)

	p.log.Debug("Resolved %s.", k)
	return k, true
}

func (p *KernelProvider) Execution(k kernel.Kernel) kernel.Execution {
	return p.execution(k.ID())
}

func (p *KernelProvider) execution(kernelID string) *CellExecution {
	if execution, loaded := p.executions.Load(kernelID); loaded {
		return execution
	}

	execution, _ := p.executions.LoadOrStore(kernelID, newCellExecution(kernelID))
	return execution
}
